package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// RevocationStore is an in-process implementation of store.RevocationStore
// and store.Cache for tests and single-node development. Expiry is checked
// lazily against an injectable clock so tests can cross TTL boundaries
// without sleeping.
type RevocationStore struct {
	mu        sync.Mutex
	markers   map[string]entry           // tokenID -> marker
	bySubject map[string]map[string]bool // subject -> set of tokenIDs
	cache     map[string]entry

	now func() time.Time

	// failing simulates store unavailability for fail-closed tests.
	failing bool
}

// NewRevocationStore returns a store using the wall clock.
func NewRevocationStore() *RevocationStore {
	return NewRevocationStoreAt(time.Now)
}

// NewRevocationStoreAt returns a store using the provided clock.
func NewRevocationStoreAt(now func() time.Time) *RevocationStore {
	return &RevocationStore{
		markers:   make(map[string]entry),
		bySubject: make(map[string]map[string]bool),
		cache:     make(map[string]entry),
		now:       now,
	}
}

// SetFailing toggles simulated unavailability: every operation returns
// store.ErrRevocationUnavailable while enabled.
func (s *RevocationStore) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

func (s *RevocationStore) errIfFailing() error {
	if s.failing {
		return fmt.Errorf("%w: simulated outage", store.ErrRevocationUnavailable)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfFailing(); err != nil {
		return false, err
	}

	e, ok := s.markers[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.markers, tokenID)
		return false, nil
	}
	return true, nil
}

func (s *RevocationStore) Revoke(_ context.Context, m domain.RevocationMarker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfFailing(); err != nil {
		return err
	}
	if m.TTL <= 0 {
		return nil
	}

	s.markers[m.TokenID] = entry{
		value:     fmt.Sprintf("%s:%t", m.Subject, m.Active),
		expiresAt: s.now().Add(m.TTL),
	}
	if s.bySubject[m.Subject] == nil {
		s.bySubject[m.Subject] = make(map[string]bool)
	}
	s.bySubject[m.Subject][m.TokenID] = true
	return nil
}

func (s *RevocationStore) DeleteBySubject(_ context.Context, subject string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfFailing(); err != nil {
		return 0, err
	}

	var removed int
	for tokenID := range s.bySubject[subject] {
		if _, ok := s.markers[tokenID]; ok {
			delete(s.markers, tokenID)
			removed++
		}
	}
	delete(s.bySubject, subject)
	return removed, nil
}

func (s *RevocationStore) Sweep(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfFailing(); err != nil {
		return err
	}

	now := s.now()
	for tokenID, e := range s.markers {
		if !now.Before(e.expiresAt) {
			delete(s.markers, tokenID)
		}
	}
	for subject, ids := range s.bySubject {
		for tokenID := range ids {
			if _, ok := s.markers[tokenID]; !ok {
				delete(ids, tokenID)
			}
		}
		if len(ids) == 0 {
			delete(s.bySubject, subject)
		}
	}
	return nil
}

func (s *RevocationStore) Ping(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errIfFailing()
}

func (s *RevocationStore) Close() error { return nil }

// MarkerCount reports live (non-expired) markers. Test helper.
func (s *RevocationStore) MarkerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int
	for _, e := range s.markers {
		if now.Before(e.expiresAt) {
			n++
		}
	}
	return n
}

func (s *RevocationStore) GetCache(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfFailing(); err != nil {
		return nil, err
	}

	e, ok := s.cache[key]
	if !ok || !s.now().Before(e.expiresAt) {
		delete(s.cache, key)
		return nil, store.ErrNotFound
	}
	return []byte(e.value), nil
}

func (s *RevocationStore) SetCache(_ context.Context, key string, ttlSeconds int, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.errIfFailing(); err != nil {
		return err
	}

	s.cache[key] = entry{
		value:     string(value),
		expiresAt: s.now().Add(time.Duration(ttlSeconds) * time.Second),
	}
	return nil
}
