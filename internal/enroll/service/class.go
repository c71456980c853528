package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store"
	"github.com/campusware/enroll/pkg/idx"
)

var (
	ErrInvalidSemester = errors.New("invalid_semester")
	ErrClassExists     = errors.New("class_exists")
	ErrClassNotFound   = errors.New("class_not_found")
)

// Semesters look like "2025.1": four-digit year, dot, term 1 or 2.
var semesterPattern = regexp.MustCompile(`^\d{4}\.[12]$`)

// ValidSemester reports whether s is a well-formed semester label.
func ValidSemester(s string) bool { return semesterPattern.MatchString(s) }

// ClassService manages course sections. Sections are soft-deleted so old
// enrollments keep a valid reference.
type ClassService struct {
	Store store.Store
}

// Get fetches one class by name and semester.
func (s *ClassService) Get(ctx context.Context, name, semester string) (domain.Class, error) {
	c, err := s.Store.Classes().GetClass(ctx, name, semester)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Class{}, ErrClassNotFound
	}
	return c, err
}

// List returns active or inactive classes, optionally narrowed by a name
// prefix and a semester.
func (s *ClassService) List(ctx context.Context, namePrefix, semester string, active bool) ([]domain.Class, error) {
	if semester != "" && !ValidSemester(semester) {
		return nil, ErrInvalidSemester
	}
	return s.Store.Classes().ListClasses(ctx, strings.TrimSpace(namePrefix), semester, active)
}

// Semesters returns every semester that has at least one class.
func (s *ClassService) Semesters(ctx context.Context) ([]string, error) {
	return s.Store.Classes().ListSemesters(ctx)
}

// Create adds a class section for a semester.
func (s *ClassService) Create(ctx context.Context, name, semester string) (domain.Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Class{}, ErrClassNotFound
	}
	if !ValidSemester(semester) {
		return domain.Class{}, ErrInvalidSemester
	}

	class := domain.Class{
		ID:       idx.New().String(),
		Name:     name,
		Semester: semester,
		Active:   true,
	}
	if err := s.Store.Classes().CreateClass(ctx, class); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Class{}, ErrClassExists
		}
		return domain.Class{}, err
	}
	return class, nil
}

// Update renames a class and/or moves it to another semester.
func (s *ClassService) Update(ctx context.Context, name, semester, newName, newSemester string) error {
	if !ValidSemester(newSemester) {
		return ErrInvalidSemester
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrClassNotFound
	}

	class, err := s.Store.Classes().GetClass(ctx, name, semester)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrClassNotFound
		}
		return err
	}

	if err := s.Store.Classes().UpdateClass(ctx, class.ID, newName, newSemester); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrClassExists
		}
		return err
	}
	return nil
}

// Deactivate soft-deletes a class section.
func (s *ClassService) Deactivate(ctx context.Context, name, semester string) error {
	class, err := s.Store.Classes().GetClass(ctx, name, semester)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrClassNotFound
		}
		return err
	}
	return s.Store.Classes().SetActive(ctx, class.ID, false)
}
