package service

import (
	"context"
	"errors"
	"time"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store"
)

var (
	ErrInvalidWindow      = errors.New("invalid_enrollment_window")
	ErrSettingsNotFound   = errors.New("settings_not_found")
	ErrInvalidCoefficient = errors.New("invalid_coefficient")
)

// minEnrollmentWindow is the shortest acceptable enrollment window.
const minEnrollmentWindow = time.Hour

// SettingsService manages the single-row service configuration.
type SettingsService struct {
	Store store.Store
}

// Get returns the current settings.
func (s *SettingsService) Get(ctx context.Context) (domain.Settings, error) {
	settings, err := s.Store.Settings().GetSettings(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Settings{}, ErrSettingsNotFound
	}
	return settings, err
}

// Update validates and replaces the settings row.
func (s *SettingsService) Update(ctx context.Context, settings domain.Settings) error {
	if !ValidSemester(settings.ActiveSemester) {
		return ErrInvalidSemester
	}
	if !settings.EnrollmentEnd.After(settings.EnrollmentStart) {
		return ErrInvalidWindow
	}
	if settings.EnrollmentEnd.Sub(settings.EnrollmentStart) < minEnrollmentWindow {
		return ErrInvalidWindow
	}
	if settings.ExemptionThreshold < 0 || settings.ExemptionThreshold > 10 {
		return ErrInvalidCoefficient
	}
	return s.Store.Settings().UpsertSettings(ctx, settings)
}
