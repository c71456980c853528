package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store"
)

// Key layout. Markers self-expire via SETEX; the per-subject index makes the
// login-time sweep O(markers for that subject) instead of a full-store SCAN.
const (
	markerPrefix = "revoked:"
	indexPrefix  = "revoked-by-subject:"
	cachePrefix  = "cache:"
)

// Store implements store.RevocationStore and store.Cache on a Redis client.
type Store struct {
	client *redis.Client
}

// New wraps an existing client. Ownership transfers: Close closes it.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

// Open connects to a Redis server and returns the store.
func Open(addr, password string, db int) *Store {
	return New(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

func (s *Store) Close() error { return s.client.Close() }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
	}
	return nil
}

// IsRevoked reports marker presence. Any transport failure surfaces as
// ErrRevocationUnavailable so the guard can fail closed.
func (s *Store) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	err := s.client.Get(ctx, markerPrefix+tokenID).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
	}
}

// Revoke writes the marker and records it in the subject index. The index
// key's expiry is bumped so it never outlives its longest-lived member.
func (s *Store) Revoke(ctx context.Context, m domain.RevocationMarker) error {
	if m.TTL <= 0 {
		return nil
	}

	markerKey := markerPrefix + m.TokenID
	indexKey := indexPrefix + m.Subject
	value := fmt.Sprintf("%s:%t", m.Subject, m.Active)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetEx(ctx, markerKey, value, m.TTL)
		pipe.SAdd(ctx, indexKey, m.TokenID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
	}

	// Bump the index expiry if this marker lives longer than the index
	// currently would. A concurrent bump losing this race is benign: the
	// winner's TTL is at least as long.
	cur, err := s.client.TTL(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
	}
	if cur < m.TTL {
		if err := s.client.Expire(ctx, indexKey, m.TTL).Err(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
		}
	}

	return nil
}

// DeleteBySubject removes all markers referencing the subject plus the index
// itself. Used by the login-time sweep.
func (s *Store) DeleteBySubject(ctx context.Context, subject string) (int, error) {
	indexKey := indexPrefix + subject

	tokenIDs, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
	}

	keys := make([]string, 0, len(tokenIDs)+1)
	for _, id := range tokenIDs {
		keys = append(keys, markerPrefix+id)
	}
	keys = append(keys, indexKey)

	removed, err := s.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
	}

	// Don't count the index key itself.
	if removed > 0 {
		removed--
	}
	return int(removed), nil
}

// Sweep walks the subject indexes and drops members whose marker has already
// lapsed. Markers expire on their own; only index sets need this.
func (s *Store) Sweep(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, indexPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		indexKey := iter.Val()

		tokenIDs, err := s.client.SMembers(ctx, indexKey).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
		}

		for _, id := range tokenIDs {
			exists, err := s.client.Exists(ctx, markerPrefix+id).Result()
			if err != nil {
				return fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
			}
			if exists == 0 {
				if err := s.client.SRem(ctx, indexKey, id).Err(); err != nil {
					return fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
				}
			}
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
	}
	return nil
}

// GetCache returns a cached value or store.ErrNotFound.
func (s *Store) GetCache(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, cachePrefix+key).Bytes()
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, redis.Nil):
		return nil, store.ErrNotFound
	default:
		return nil, fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
	}
}

// SetCache stores a value with a TTL in whole seconds.
func (s *Store) SetCache(ctx context.Context, key string, ttlSeconds int, value []byte) error {
	err := s.client.SetEx(ctx, cachePrefix+key, value, time.Duration(ttlSeconds)*time.Second).Err()
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrRevocationUnavailable, err)
	}
	return nil
}

// MarkerValue parses the diagnostic "subject:is_active" payload of a marker.
func MarkerValue(v string) (subject string, active bool) {
	i := strings.LastIndex(v, ":")
	if i < 0 {
		return v, false
	}
	return v[:i], v[i+1:] == "true"
}
