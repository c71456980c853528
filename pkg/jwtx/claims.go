package jwtx

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds. Every token carries exactly one of these in its "kind"
// claim; a token of one kind is never accepted where the other is expected.
const (
	// KindAuthorization marks the short-lived bearer token presented on
	// every protected request. Not individually revocable, so keep it short.
	KindAuthorization = "authorization"

	// KindSession marks the long-lived cookie token. Revocable per token
	// instance through the revocation store.
	KindSession = "session"
)

// Default token lifetimes.
const (
	// AuthorizationTokenTTL bounds the exposure window of a token that
	// cannot itself be revoked.
	AuthorizationTokenTTL = 60 * time.Minute

	// SessionTokenTTL is the natural lifetime of a login session.
	SessionTokenTTL = 720 * time.Hour
)

// Claims is the fixed payload shape for both token kinds. The custom fields
// mirror what the rest of the service knows about a user; everything else
// (jti, sub, exp, iat) lives in the registered claims.
type Claims struct {
	jwt.RegisteredClaims

	// Admin grants access to administrative routes.
	Admin bool `json:"admin"`

	// Active gates every protected route; deactivated users keep their
	// record but lose access.
	Active bool `json:"is_active"`

	// Name is the user's display name.
	Name string `json:"name,omitempty"`

	// Kind is either KindAuthorization or KindSession.
	Kind string `json:"kind"`
}

// UnmarshalJSON decodes the payload strictly. The claim set is fixed; a
// signed payload carrying fields outside it is not one of ours and is
// rejected as malformed by the parser.
func (c *Claims) UnmarshalJSON(data []byte) error {
	var wire struct {
		Subject   string           `json:"sub"`
		IssuedAt  *jwt.NumericDate `json:"iat"`
		ExpiresAt *jwt.NumericDate `json:"exp"`
		ID        string           `json:"jti"`
		Admin     bool             `json:"admin"`
		Active    bool             `json:"is_active"`
		Name      string           `json:"name"`
		Kind      string           `json:"kind"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return err
	}

	*c = Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   wire.Subject,
			IssuedAt:  wire.IssuedAt,
			ExpiresAt: wire.ExpiresAt,
			ID:        wire.ID,
		},
		Admin:  wire.Admin,
		Active: wire.Active,
		Name:   wire.Name,
		Kind:   wire.Kind,
	}
	return nil
}

// TokenID returns the per-instance identifier (jti). Two tokens issued to
// the same subject in the same instant still carry distinct TokenIDs.
func (c *Claims) TokenID() string { return c.ID }

// NewClaims builds claims for one token of the given kind with a fresh jti.
func NewClaims(subject, name string, admin, active bool, kind string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Admin:  admin,
		Active: active,
		Name:   name,
		Kind:   kind,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
// 160 bits of entropy makes collisions a non-concern.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
