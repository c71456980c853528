package domain

import "time"

// TokenPair is what a successful login produces: the short-lived bearer
// token returned in the response body and the long-lived session token set
// as an HTTP-only cookie.
type TokenPair struct {
	AuthorizationToken string        `json:"token"`
	SessionToken       string        `json:"-"`
	ExpiresIn          time.Duration `json:"expires_in"`
}

// RevocationMarker is the record written to the expiring side-store when a
// session token is revoked before its natural expiry. Key is the token's
// instance id; the subject and active flag travel along for diagnostics only.
type RevocationMarker struct {
	TokenID string
	Subject string
	Active  bool
	TTL     time.Duration
}
