package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestMigrationsAreIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.ApplyMigrations())

	empty, err := s.Users().IsEmpty(context.Background())
	require.NoError(t, err)
	require.True(t, empty)
}

func TestUserConflictAndNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := domain.User{
		ID:           "01J8Z0USERAAAAAAAAAAAAAAAA",
		Name:         "alice",
		PasswordHash: "hash",
		Active:       true,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	dup := u
	dup.ID = "01J8Z0USERBBBBBBBBBBBBBBBB"
	err := s.Users().CreateUser(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.Users().GetUserByName(ctx, "nobody")
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Users().GetUserByName(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Nil(t, got.OTPSecret)
}

func TestOTPSecretRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := domain.User{
		ID:           "01J8Z0USERCCCCCCCCCCCCCCCC",
		Name:         "bob",
		PasswordHash: "hash",
		Active:       true,
	}
	require.NoError(t, s.Users().CreateUser(ctx, u))
	require.NoError(t, s.Users().UpdateOTPSecret(ctx, u.ID, "JBSWY3DPEHPK3PXP"))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OTPSecret)
	require.Equal(t, "JBSWY3DPEHPK3PXP", *got.OTPSecret)
}

func TestClassUniquePerSemester(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := domain.Class{ID: "01J8Z0CLASSAAAAAAAAAAAAAAA", Name: "A1", Semester: "2025.1", Active: true}
	require.NoError(t, s.Classes().CreateClass(ctx, c))

	// Same name in another semester is fine.
	c2 := domain.Class{ID: "01J8Z0CLASSBBBBBBBBBBBBBBB", Name: "A1", Semester: "2025.2", Active: true}
	require.NoError(t, s.Classes().CreateClass(ctx, c2))

	dup := domain.Class{ID: "01J8Z0CLASSCCCCCCCCCCCCCCC", Name: "A1", Semester: "2025.1", Active: true}
	err := s.Classes().CreateClass(ctx, dup)
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		u := domain.User{
			ID:           "01J8Z0USERDDDDDDDDDDDDDDDD",
			Name:         "carol",
			PasswordHash: "hash",
			Active:       true,
		}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByName(ctx, "carol")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTxCommits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().CreateUser(ctx, domain.User{
			ID:           "01J8Z0USEREEEEEEEEEEEEEEEE",
			Name:         "dave",
			PasswordHash: "hash",
			Active:       true,
		})
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByName(ctx, "dave")
	require.NoError(t, err)
}

func TestSettingsSingleRowUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Settings().GetSettings(ctx)
	require.ErrorIs(t, err, store.ErrNotFound)

	start := time.Date(2025, 2, 1, 8, 0, 0, 0, time.UTC)
	first := domain.Settings{
		ActiveSemester:     "2025.1",
		EnrollmentStart:    start,
		EnrollmentEnd:      start.Add(30 * 24 * time.Hour),
		Intercept:          1.0,
		LanguageWeight:     0.4,
		EssayWeight:        0.35,
		ExemptionThreshold: 6.75,
	}
	require.NoError(t, s.Settings().UpsertSettings(ctx, first))

	second := first
	second.ActiveSemester = "2025.2"
	require.NoError(t, s.Settings().UpsertSettings(ctx, second))

	got, err := s.Settings().GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025.2", got.ActiveSemester)
	require.Equal(t, 6.75, got.ExemptionThreshold)
}

func TestEnrollmentPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, id := range []string{
		"01J8Z0ENRAAAAAAAAAAAAAAAAA",
		"01J8Z0ENRBBBBBBBBBBBBBBBBB",
		"01J8Z0ENRCCCCCCCCCCCCCCCCC",
	} {
		require.NoError(t, s.Enrollments().CreateEnrollment(ctx, domain.Enrollment{
			ID:        id,
			Applicant: "Maria Silva",
			CPFDigits: "456789",
			Course:    "Engineering",
			Choice:    domain.ChoiceEnroll,
			ClassName: []string{"A1", "A2", "A1"}[i],
			Semester:  "2025.1",
			Active:    true,
		}))
	}

	items, total, err := s.Enrollments().ListEnrollments(ctx, domain.EnrollmentFilter{
		Semester: "2025.1",
		Active:   true,
		Page:     1,
		PageSize: 2,
	})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, items, 2)

	items, total, err = s.Enrollments().ListEnrollments(ctx, domain.EnrollmentFilter{
		Semester: "2025.1",
		Active:   true,
		Page:     2,
		PageSize: 2,
	})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, items, 1)

	// Class filter narrows the count, not just the page.
	_, total, err = s.Enrollments().ListEnrollments(ctx, domain.EnrollmentFilter{
		Semester:  "2025.1",
		ClassName: "A1",
		Active:    true,
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	require.Equal(t, 2, total)
}
