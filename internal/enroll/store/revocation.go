package store

import (
	"context"
	"errors"

	"github.com/campusware/enroll/internal/enroll/domain"
)

// ErrRevocationUnavailable wraps any transport failure talking to the
// revocation side-store. The session guard treats it as "revoked"
// (fail-closed); the login-time sweep swallows it (best-effort).
var ErrRevocationUnavailable = errors.New("store: revocation store unavailable")

// RevocationStore is the expiring key-value side-store holding revocation
// markers, addressed by session token instance id. Markers self-expire: a
// marker's TTL equals the token's remaining lifetime at revocation time, so
// the store never needs unbounded retention. All operations touch single
// keys (plus the per-subject index); the store's own atomicity is relied
// upon, no client-side locking.
type RevocationStore interface {
	// IsRevoked reports whether a marker exists for the token instance.
	// Absence means "not revoked".
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// Revoke writes the marker with the given TTL. Once written a marker is
	// never extended or renewed.
	Revoke(ctx context.Context, m domain.RevocationMarker) error

	// DeleteBySubject removes every marker referencing the subject, using
	// the per-subject index rather than a full-store scan. Returns the
	// number of markers removed.
	DeleteBySubject(ctx context.Context, subject string) (int, error)

	// Sweep prunes index entries whose markers have lapsed. Marker keys
	// themselves expire on their own; only the index needs housekeeping.
	Sweep(ctx context.Context) error

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying client.
	Close() error
}

// Cache is a tiny expiring byte cache for hot read paths (applicant name
// lookups). Backed by the same store technology as revocation markers.
type Cache interface {
	// GetCache returns the cached value or ErrNotFound.
	GetCache(ctx context.Context, key string) ([]byte, error)

	// SetCache stores value under key for ttlSeconds seconds.
	SetCache(ctx context.Context, key string, ttlSeconds int, value []byte) error
}
