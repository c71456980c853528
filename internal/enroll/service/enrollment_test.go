package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store/memory"
)

type enrollmentFixture struct {
	enrollments *EnrollmentService
	classes     *ClassService
	settings    *SettingsService
	clock       time.Time
}

func newEnrollmentFixture(t *testing.T) *enrollmentFixture {
	t.Helper()
	st := newTestStore(t)

	f := &enrollmentFixture{
		classes:  &ClassService{Store: st},
		settings: &SettingsService{Store: st},
		clock:    time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC),
	}
	f.enrollments = &EnrollmentService{
		Store: st,
		Cache: memory.NewRevocationStore(),
		Now:   func() time.Time { return f.clock },
	}

	require.NoError(t, f.settings.Update(context.Background(), domain.Settings{
		ActiveSemester:     "2025.1",
		EnrollmentStart:    f.clock.Add(-24 * time.Hour),
		EnrollmentEnd:      f.clock.Add(24 * time.Hour),
		Intercept:          1.0,
		LanguageWeight:     0.4,
		EssayWeight:        0.35,
		ExemptionThreshold: 6.75,
	}))

	_, err := f.classes.Create(context.Background(), "A1", "2025.1")
	require.NoError(t, err)

	require.NoError(t, f.enrollments.ImportAdmission(context.Background(),
		"Maria Silva", "123.456.789-09", "Engineering", 8.0, 9.0, 2024))
	require.NoError(t, f.enrollments.ImportAdmission(context.Background(),
		"Joao Souza", "987.654.321-00", "Law", 4.0, 3.0, 2024))

	return f
}

func TestCPFDigits(t *testing.T) {
	digits, err := CPFDigits("123.456.789-09")
	require.NoError(t, err)
	require.Equal(t, "456789", digits)

	for _, bad := range []string{"", "12345678909", "123.456.789-0", "abc.def.ghi-jk", "123.456.789-091"} {
		_, err := CPFDigits(bad)
		require.ErrorIs(t, err, ErrInvalidCPF, "input %q", bad)
	}
}

func TestApplicantLookups(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)

	names, err := f.enrollments.Applicants(ctx, "")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"Maria Silva", "Joao Souza"}, names)

	// Second unfiltered call is served from cache and must agree.
	again, err := f.enrollments.Applicants(ctx, "")
	require.NoError(t, err)
	require.Equal(t, names, again)

	filtered, err := f.enrollments.Applicants(ctx, "Maria")
	require.NoError(t, err)
	require.Equal(t, []string{"Maria Silva"}, filtered)

	ok, err := f.enrollments.VerifyCPF(ctx, "Maria Silva", "123.456.789-09")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.enrollments.VerifyCPF(ctx, "Maria Silva", "999.999.999-99")
	require.NoError(t, err)
	require.False(t, ok)

	courses, err := f.enrollments.Courses(ctx, "Maria Silva", "123.456.789-09")
	require.NoError(t, err)
	require.Equal(t, []string{"Engineering"}, courses)

	_, err = f.enrollments.Courses(ctx, "Nobody", "123.456.789-09")
	require.ErrorIs(t, err, ErrApplicantNotFound)
}

func TestEntryInfo(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)

	// 1.0 + 0.4*8.0 + 0.35*9.0 = 7.35, above the 6.75 threshold.
	info, err := f.enrollments.EntryInfo(ctx, "Maria Silva", "123.456.789-09", "Engineering")
	require.NoError(t, err)
	require.Equal(t, 2024, info.EntryYear)
	require.InDelta(t, 7.35, info.PredictedScore, 0.001)
	require.Equal(t, []string{domain.ChoiceEnroll, domain.ChoiceExemption}, info.Options)

	// 1.0 + 0.4*4.0 + 0.35*3.0 = 3.65, enroll only.
	info, err = f.enrollments.EntryInfo(ctx, "Joao Souza", "987.654.321-00", "Law")
	require.NoError(t, err)
	require.Equal(t, []string{domain.ChoiceEnroll}, info.Options)
}

func TestEnroll(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)

	enrollment, err := f.enrollments.Enroll(ctx, EnrollRequest{
		Applicant: "Maria Silva",
		CPF:       "123.456.789-09",
		Course:    "Engineering",
		Choice:    domain.ChoiceEnroll,
		ClassName: "A1",
	})
	require.NoError(t, err)
	require.Equal(t, "2025.1", enrollment.Semester)
	require.Equal(t, "A1", enrollment.ClassName)
	require.True(t, enrollment.Active)

	// One active enrollment per applicant, course and semester.
	_, err = f.enrollments.Enroll(ctx, EnrollRequest{
		Applicant: "Maria Silva",
		CPF:       "123.456.789-09",
		Course:    "Engineering",
		Choice:    domain.ChoiceEnroll,
		ClassName: "A1",
	})
	require.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestEnrollExemption(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)

	// Maria's predicted score clears the threshold; no class needed.
	enrollment, err := f.enrollments.Enroll(ctx, EnrollRequest{
		Applicant: "Maria Silva",
		CPF:       "123.456.789-09",
		Course:    "Engineering",
		Choice:    domain.ChoiceExemption,
	})
	require.NoError(t, err)
	require.Empty(t, enrollment.ClassName)

	// Joao's does not.
	_, err = f.enrollments.Enroll(ctx, EnrollRequest{
		Applicant: "Joao Souza",
		CPF:       "987.654.321-00",
		Course:    "Law",
		Choice:    domain.ChoiceExemption,
	})
	require.ErrorIs(t, err, ErrNotExemptible)
}

func TestEnrollOutsideWindow(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)

	f.clock = f.clock.Add(48 * time.Hour)

	_, err := f.enrollments.Enroll(ctx, EnrollRequest{
		Applicant: "Maria Silva",
		CPF:       "123.456.789-09",
		Course:    "Engineering",
		Choice:    domain.ChoiceEnroll,
		ClassName: "A1",
	})
	require.ErrorIs(t, err, ErrWindowClosed)
}

func TestEnrollUnknownClass(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)

	_, err := f.enrollments.Enroll(ctx, EnrollRequest{
		Applicant: "Maria Silva",
		CPF:       "123.456.789-09",
		Course:    "Engineering",
		Choice:    domain.ChoiceEnroll,
		ClassName: "Z9",
	})
	require.ErrorIs(t, err, ErrClassNotFound)
}

func TestListEnrollments(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)

	_, err := f.enrollments.Enroll(ctx, EnrollRequest{
		Applicant: "Maria Silva", CPF: "123.456.789-09", Course: "Engineering",
		Choice: domain.ChoiceEnroll, ClassName: "A1",
	})
	require.NoError(t, err)
	_, err = f.enrollments.Enroll(ctx, EnrollRequest{
		Applicant: "Joao Souza", CPF: "987.654.321-00", Course: "Law",
		Choice: domain.ChoiceEnroll, ClassName: "A1",
	})
	require.NoError(t, err)

	items, page, err := f.enrollments.List(ctx, domain.EnrollmentFilter{
		Semester: "2025.1", Active: true, Page: 1, PageSize: 1,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 2, page.TotalDocuments)
	require.Equal(t, 2, page.TotalPages)
	require.True(t, page.HasNextPage)
	require.False(t, page.HasPrevPage)

	items, page, err = f.enrollments.List(ctx, domain.EnrollmentFilter{
		Semester: "2025.1", Active: true, Page: 2, PageSize: 1,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.False(t, page.HasNextPage)
	require.True(t, page.HasPrevPage)

	items, _, err = f.enrollments.List(ctx, domain.EnrollmentFilter{
		Applicant: "Maria", Active: true, Page: 1, PageSize: 20,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Maria Silva", items[0].Applicant)
}

func TestUpdateAndDeactivateEnrollment(t *testing.T) {
	ctx := context.Background()
	f := newEnrollmentFixture(t)

	_, err := f.enrollments.Enroll(ctx, EnrollRequest{
		Applicant: "Maria Silva", CPF: "123.456.789-09", Course: "Engineering",
		Choice: domain.ChoiceEnroll, ClassName: "A1",
	})
	require.NoError(t, err)

	updated, err := f.enrollments.Update(ctx,
		"Maria Silva", "123.456.789-09", "Engineering", "2025.1",
		"", "2025.1", domain.ChoiceExemption)
	require.NoError(t, err)
	require.Equal(t, domain.ChoiceExemption, updated.Choice)
	require.Empty(t, updated.ClassName)

	require.NoError(t, f.enrollments.Deactivate(ctx,
		"Maria Silva", "123.456.789-09", "Engineering", "2025.1"))

	err = f.enrollments.Deactivate(ctx,
		"Maria Silva", "123.456.789-09", "Engineering", "2025.1")
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}
