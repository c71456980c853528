package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrBadSignature = errors.New("jwtx: bad signature")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrInvalidKind  = errors.New("jwtx: wrong token kind")
)

// Codec signs and verifies token payloads with a single process-wide HS256
// secret. It is pure: no store access, no revocation knowledge. The secret
// is immutable after construction and the codec is safe for concurrent use.
type Codec struct {
	secret []byte
	now    func() time.Time
}

// NewCodec builds a codec around the shared signing secret.
func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: time.Now}
}

// NewCodecAt is NewCodec with an injected clock. Issuance and expiry checks
// share the clock, so tests can cross the expiry boundary deterministically.
func NewCodecAt(secret []byte, now func() time.Time) *Codec {
	return &Codec{secret: secret, now: now}
}

// Now returns the codec's current time in UTC.
func (c *Codec) Now() time.Time { return c.now().UTC() }

// Encode signs the claims and returns the compact token string.
func (c *Codec) Encode(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode parses and verifies a token string. Checks run in a fixed order:
// structural well-formedness, signature, expiry, subject presence. Expiry is
// an exclusive boundary: a token presented exactly at its exp is expired.
// Revocation is deliberately not checked here; the codec has no store.
func (c *Codec) Decode(tokenStr string) (Claims, error) {
	// Claims validation is done by hand below so the expiry check uses the
	// codec clock rather than the parser's.
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Claims{}, ErrMalformed
		}
		return Claims{}, ErrBadSignature
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrBadSignature
	}

	if claims.ExpiresAt == nil {
		return Claims{}, ErrMalformed
	}
	if !c.Now().Before(claims.ExpiresAt.Time) {
		return Claims{}, ErrExpired
	}

	// A signed payload without a subject is still unusable.
	if claims.Subject == "" {
		return Claims{}, ErrMalformed
	}

	return *claims, nil
}
