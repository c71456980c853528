package sqlite

import (
	"context"

	"github.com/campusware/enroll/internal/enroll/domain"
)

type settingsRepo struct {
	db dbtx
}

func (r *settingsRepo) GetSettings(ctx context.Context) (domain.Settings, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT active_semester, enrollment_start, enrollment_end,
		        intercept, language_weight, essay_weight, exemption_threshold,
		        created_at, updated_at
		 FROM settings WHERE id = 1`)

	var s domain.Settings
	err := row.Scan(&s.ActiveSemester, &s.EnrollmentStart, &s.EnrollmentEnd,
		&s.Intercept, &s.LanguageWeight, &s.EssayWeight, &s.ExemptionThreshold,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return domain.Settings{}, mapNotFound(err)
	}
	return s, nil
}

func (r *settingsRepo) UpsertSettings(ctx context.Context, s domain.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, active_semester, enrollment_start, enrollment_end,
		                       intercept, language_weight, essay_weight, exemption_threshold)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		     active_semester = excluded.active_semester,
		     enrollment_start = excluded.enrollment_start,
		     enrollment_end = excluded.enrollment_end,
		     intercept = excluded.intercept,
		     language_weight = excluded.language_weight,
		     essay_weight = excluded.essay_weight,
		     exemption_threshold = excluded.exemption_threshold,
		     updated_at = CURRENT_TIMESTAMP`,
		s.ActiveSemester, s.EnrollmentStart, s.EnrollmentEnd,
		s.Intercept, s.LanguageWeight, s.EssayWeight, s.ExemptionThreshold)
	return err
}
