package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusware/enroll/internal/enroll/domain"
)

func TestValidSemester(t *testing.T) {
	for _, ok := range []string{"2025.1", "2025.2", "1999.1"} {
		require.True(t, ValidSemester(ok), ok)
	}
	for _, bad := range []string{"", "2025", "2025.3", "2025.0", "25.1", "2025-1", "2025.12"} {
		require.False(t, ValidSemester(bad), bad)
	}
}

func TestClassLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := &ClassService{Store: newTestStore(t)}

	created, err := svc.Create(ctx, "A1", "2025.1")
	require.NoError(t, err)
	require.True(t, created.Active)

	_, err = svc.Create(ctx, "A1", "2025.1")
	require.ErrorIs(t, err, ErrClassExists)

	// Same name in another semester is a different section.
	_, err = svc.Create(ctx, "A1", "2025.2")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "B1", "bogus")
	require.ErrorIs(t, err, ErrInvalidSemester)

	semesters, err := svc.Semesters(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"2025.1", "2025.2"}, semesters)

	classes, err := svc.List(ctx, "", "2025.1", true)
	require.NoError(t, err)
	require.Len(t, classes, 1)

	require.NoError(t, svc.Update(ctx, "A1", "2025.1", "A2", "2025.1"))
	_, err = svc.Get(ctx, "A1", "2025.1")
	require.ErrorIs(t, err, ErrClassNotFound)
	_, err = svc.Get(ctx, "A2", "2025.1")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, "A2", "2025.1"))
	classes, err = svc.List(ctx, "", "2025.1", true)
	require.NoError(t, err)
	require.Empty(t, classes)
}

func TestSettingsValidation(t *testing.T) {
	ctx := context.Background()
	svc := &SettingsService{Store: newTestStore(t)}

	_, err := svc.Get(ctx)
	require.ErrorIs(t, err, ErrSettingsNotFound)

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	valid := domain.Settings{
		ActiveSemester:     "2025.1",
		EnrollmentStart:    start,
		EnrollmentEnd:      start.Add(7 * 24 * time.Hour),
		Intercept:          1.0,
		LanguageWeight:     0.4,
		EssayWeight:        0.35,
		ExemptionThreshold: 6.75,
	}
	require.NoError(t, svc.Update(ctx, valid))

	got, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025.1", got.ActiveSemester)
	require.InDelta(t, 6.75, got.ExemptionThreshold, 0.001)

	bad := valid
	bad.ActiveSemester = "2025.9"
	require.ErrorIs(t, svc.Update(ctx, bad), ErrInvalidSemester)

	bad = valid
	bad.EnrollmentEnd = start.Add(-time.Hour)
	require.ErrorIs(t, svc.Update(ctx, bad), ErrInvalidWindow)

	// The window must span at least an hour.
	bad = valid
	bad.EnrollmentEnd = start.Add(30 * time.Minute)
	require.ErrorIs(t, svc.Update(ctx, bad), ErrInvalidWindow)

	bad = valid
	bad.ExemptionThreshold = 42
	require.ErrorIs(t, svc.Update(ctx, bad), ErrInvalidCoefficient)
}
