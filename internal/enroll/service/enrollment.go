package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store"
	"github.com/campusware/enroll/pkg/idx"
	"github.com/campusware/enroll/pkg/slogx"
)

var (
	ErrInvalidCPF         = errors.New("invalid_cpf")
	ErrInvalidChoice      = errors.New("invalid_choice")
	ErrApplicantNotFound  = errors.New("applicant_not_found")
	ErrAlreadyEnrolled    = errors.New("already_enrolled")
	ErrEnrollmentNotFound = errors.New("enrollment_not_found")
	ErrWindowClosed       = errors.New("enrollment_window_closed")
	ErrNotExemptible      = errors.New("score_below_exemption_threshold")
)

// cpfPattern matches the formatted document number XXX.XXX.XXX-XX.
var cpfPattern = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)

// applicantsCacheKey caches the unfiltered applicant name listing.
const (
	applicantsCacheKey = "applicants:all"
	applicantsCacheTTL = 3600 // seconds
	applicantsLimit    = 500
)

// CPFDigits reduces a formatted CPF to the six middle digits that the
// admission records store. The full document number never reaches disk.
func CPFDigits(cpf string) (string, error) {
	cpf = strings.TrimSpace(cpf)
	if !cpfPattern.MatchString(cpf) {
		return "", ErrInvalidCPF
	}
	raw := strings.NewReplacer(".", "", "-", "").Replace(cpf)
	return raw[3:9], nil
}

// EnrollmentService answers placement questions from the imported admission
// records and manages the enrollment lifecycle.
type EnrollmentService struct {
	Store store.Store

	// Cache holds the hot applicant-name listing; nil disables caching.
	Cache store.Cache

	Now func() time.Time
}

func (s *EnrollmentService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Applicants lists admission-record applicant names. The unfiltered listing
// is served from cache when possible; a cache miss or failure falls through
// to the database.
func (s *EnrollmentService) Applicants(ctx context.Context, nameFilter string) ([]string, error) {
	nameFilter = strings.TrimSpace(nameFilter)

	if nameFilter == "" && s.Cache != nil {
		if raw, err := s.Cache.GetCache(ctx, applicantsCacheKey); err == nil {
			var names []string
			if json.Unmarshal(raw, &names) == nil {
				return names, nil
			}
		}
	}

	names, err := s.Store.Admissions().ListApplicants(ctx, nameFilter, applicantsLimit)
	if err != nil {
		return nil, err
	}

	if nameFilter == "" && s.Cache != nil {
		if raw, err := json.Marshal(names); err == nil {
			if err := s.Cache.SetCache(ctx, applicantsCacheKey, applicantsCacheTTL, raw); err != nil {
				slogx.FromContext(ctx).Warn("applicant cache write failed", "err", err)
			}
		}
	}
	return names, nil
}

// VerifyCPF reports whether the formatted CPF belongs to the applicant's
// admission records.
func (s *EnrollmentService) VerifyCPF(ctx context.Context, applicant, cpf string) (bool, error) {
	digits, err := CPFDigits(cpf)
	if err != nil {
		return false, err
	}
	known, err := s.Store.Admissions().ListCPFDigits(ctx, applicant)
	if err != nil {
		return false, err
	}
	return slices.Contains(known, digits), nil
}

// Courses lists the courses found in the applicant's admission records.
func (s *EnrollmentService) Courses(ctx context.Context, applicant, cpf string) ([]string, error) {
	digits, err := CPFDigits(cpf)
	if err != nil {
		return nil, err
	}
	courses, err := s.Store.Admissions().ListCourses(ctx, applicant, digits)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, ErrApplicantNotFound
	}
	return courses, nil
}

// EntryInfo derives the placement picture for one applicant and course from
// their most recent admission record: the predicted score from the
// configured regression and the placement options it unlocks.
func (s *EnrollmentService) EntryInfo(ctx context.Context, applicant, cpf, course string) (domain.EntryInfo, error) {
	digits, err := CPFDigits(cpf)
	if err != nil {
		return domain.EntryInfo{}, err
	}

	admission, err := s.Store.Admissions().LatestAdmission(ctx, applicant, digits, course)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.EntryInfo{}, ErrApplicantNotFound
		}
		return domain.EntryInfo{}, err
	}

	settings, err := s.Store.Settings().GetSettings(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.EntryInfo{}, ErrSettingsNotFound
		}
		return domain.EntryInfo{}, err
	}

	predicted := settings.Intercept +
		settings.LanguageWeight*admission.LanguageScore +
		settings.EssayWeight*admission.EssayScore
	predicted = math.Round(predicted*100) / 100

	options := []string{domain.ChoiceEnroll}
	if predicted >= settings.ExemptionThreshold {
		options = append(options, domain.ChoiceExemption)
	}

	return domain.EntryInfo{
		LanguageScore:  admission.LanguageScore,
		EssayScore:     admission.EssayScore,
		EntryYear:      admission.Year,
		PredictedScore: predicted,
		Options:        options,
	}, nil
}

// ImportAdmission records one historical entry-exam result. CPF arrives
// formatted and only its middle digits are stored.
func (s *EnrollmentService) ImportAdmission(ctx context.Context, applicant, cpf, course string, languageScore, essayScore float64, year int) error {
	digits, err := CPFDigits(cpf)
	if err != nil {
		return err
	}
	applicant = strings.TrimSpace(applicant)
	course = strings.TrimSpace(course)
	if applicant == "" || course == "" {
		return ErrApplicantNotFound
	}
	return s.Store.Admissions().CreateAdmission(ctx, domain.Admission{
		ID:            idx.New().String(),
		Applicant:     applicant,
		CPFDigits:     digits,
		Course:        course,
		LanguageScore: languageScore,
		EssayScore:    essayScore,
		Year:          year,
	})
}

// EnrollRequest is what an applicant submits during the enrollment window.
type EnrollRequest struct {
	Applicant string
	CPF       string
	Course    string
	Choice    string
	ClassName string
}

// Enroll creates an enrollment for the active semester. The full chain of
// checks: window open, choice recognized, admission record exists, choice
// actually offered to this applicant, target class active in the active
// semester (enroll choice only), no active duplicate.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (domain.Enrollment, error) {
	digits, err := CPFDigits(req.CPF)
	if err != nil {
		return domain.Enrollment{}, err
	}

	if req.Choice != domain.ChoiceEnroll && req.Choice != domain.ChoiceExemption {
		return domain.Enrollment{}, ErrInvalidChoice
	}

	settings, err := s.Store.Settings().GetSettings(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Enrollment{}, ErrSettingsNotFound
		}
		return domain.Enrollment{}, err
	}

	now := s.now()
	if now.Before(settings.EnrollmentStart) || now.After(settings.EnrollmentEnd) {
		return domain.Enrollment{}, ErrWindowClosed
	}

	info, err := s.EntryInfo(ctx, req.Applicant, req.CPF, req.Course)
	if err != nil {
		return domain.Enrollment{}, err
	}
	if req.Choice == domain.ChoiceExemption && !slices.Contains(info.Options, domain.ChoiceExemption) {
		return domain.Enrollment{}, ErrNotExemptible
	}

	enrollment := domain.Enrollment{
		ID:        idx.New().String(),
		Applicant: req.Applicant,
		CPFDigits: digits,
		Course:    req.Course,
		Choice:    req.Choice,
		Semester:  settings.ActiveSemester,
		Active:    true,
	}

	if req.Choice == domain.ChoiceEnroll {
		class, err := s.Store.Classes().GetClass(ctx, req.ClassName, settings.ActiveSemester)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Enrollment{}, ErrClassNotFound
			}
			return domain.Enrollment{}, err
		}
		if !class.Active {
			return domain.Enrollment{}, ErrClassNotFound
		}
		enrollment.ClassName = class.Name
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Enrollments().GetActiveEnrollment(ctx, req.Applicant, digits, req.Course, settings.ActiveSemester)
		if err == nil {
			return ErrAlreadyEnrolled
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		return tx.Enrollments().CreateEnrollment(ctx, enrollment)
	})
	if err != nil {
		return domain.Enrollment{}, err
	}

	return enrollment, nil
}

// List returns one page of enrollments plus pagination bookkeeping.
func (s *EnrollmentService) List(ctx context.Context, f domain.EnrollmentFilter) ([]domain.Enrollment, domain.Page, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}

	items, total, err := s.Store.Enrollments().ListEnrollments(ctx, f)
	if err != nil {
		return nil, domain.Page{}, err
	}

	totalPages := (total + f.PageSize - 1) / f.PageSize
	page := domain.Page{
		TotalDocuments: total,
		TotalPages:     totalPages,
		CurrentPage:    f.Page,
		PageSize:       f.PageSize,
		HasNextPage:    f.Page < totalPages,
		HasPrevPage:    f.Page > 1 && total > 0,
	}
	return items, page, nil
}

// Update moves an active enrollment to another class, semester or choice.
func (s *EnrollmentService) Update(ctx context.Context, applicant, cpf, course, semester, newClassName, newSemester, newChoice string) (domain.Enrollment, error) {
	digits, err := CPFDigits(cpf)
	if err != nil {
		return domain.Enrollment{}, err
	}
	if newChoice != domain.ChoiceEnroll && newChoice != domain.ChoiceExemption {
		return domain.Enrollment{}, ErrInvalidChoice
	}
	if !ValidSemester(newSemester) {
		return domain.Enrollment{}, ErrInvalidSemester
	}

	enrollment, err := s.Store.Enrollments().GetActiveEnrollment(ctx, applicant, digits, course, semester)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Enrollment{}, ErrEnrollmentNotFound
		}
		return domain.Enrollment{}, err
	}

	if newChoice == domain.ChoiceEnroll {
		class, err := s.Store.Classes().GetClass(ctx, newClassName, newSemester)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.Enrollment{}, ErrClassNotFound
			}
			return domain.Enrollment{}, err
		}
		if !class.Active {
			return domain.Enrollment{}, ErrClassNotFound
		}
		newClassName = class.Name
	} else {
		newClassName = ""
	}

	if err := s.Store.Enrollments().UpdateEnrollment(ctx, enrollment.ID, newClassName, newSemester, newChoice); err != nil {
		return domain.Enrollment{}, err
	}

	enrollment.ClassName = newClassName
	enrollment.Semester = newSemester
	enrollment.Choice = newChoice
	return enrollment, nil
}

// Deactivate soft-deletes an active enrollment.
func (s *EnrollmentService) Deactivate(ctx context.Context, applicant, cpf, course, semester string) error {
	digits, err := CPFDigits(cpf)
	if err != nil {
		return err
	}
	enrollment, err := s.Store.Enrollments().GetActiveEnrollment(ctx, applicant, digits, course, semester)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEnrollmentNotFound
		}
		return err
	}
	return s.Store.Enrollments().SetActive(ctx, enrollment.ID, false)
}
