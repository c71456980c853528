package sqlite

import (
	"context"

	"github.com/campusware/enroll/internal/enroll/domain"
)

type enrollmentsRepo struct {
	db dbtx
}

const enrollmentColumns = `id, applicant, cpf_digits, course, choice, class_name, semester, is_active, created_at, updated_at`

func scanEnrollment(row interface{ Scan(dest ...any) error }) (domain.Enrollment, error) {
	var e domain.Enrollment
	err := row.Scan(&e.ID, &e.Applicant, &e.CPFDigits, &e.Course, &e.Choice,
		&e.ClassName, &e.Semester, &e.Active, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *enrollmentsRepo) GetActiveEnrollment(ctx context.Context, applicant, cpfDigits, course, semester string) (domain.Enrollment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments
		 WHERE applicant = ? AND cpf_digits = ? AND course = ? AND semester = ? AND is_active = 1`,
		applicant, cpfDigits, course, semester)
	e, err := scanEnrollment(row)
	if err != nil {
		return domain.Enrollment{}, mapNotFound(err)
	}
	return e, nil
}

const enrollmentFilterWhere = `
	WHERE is_active = ?
	  AND (? = '' OR semester = ?)
	  AND (? = '' OR course = ?)
	  AND (? = '' OR applicant LIKE '%' || ? || '%')
	  AND (? = '' OR class_name = ?)
	  AND (? = '' OR choice = ?)`

func filterArgs(f domain.EnrollmentFilter) []any {
	return []any{
		f.Active,
		f.Semester, f.Semester,
		f.Course, f.Course,
		f.Applicant, f.Applicant,
		f.ClassName, f.ClassName,
		f.Choice, f.Choice,
	}
}

func (r *enrollmentsRepo) ListEnrollments(ctx context.Context, f domain.EnrollmentFilter) ([]domain.Enrollment, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM enrollments`+enrollmentFilterWhere,
		filterArgs(f)...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	args := filterArgs(f)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments`+enrollmentFilterWhere+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *enrollmentsRepo) CreateEnrollment(ctx context.Context, e domain.Enrollment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO enrollments (id, applicant, cpf_digits, course, choice, class_name, semester, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Applicant, e.CPFDigits, e.Course, e.Choice, e.ClassName, e.Semester, e.Active)
	return mapConflict(err)
}

func (r *enrollmentsRepo) UpdateEnrollment(ctx context.Context, enrollmentID, className, semester, choice string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE enrollments
		 SET class_name = ?, semester = ?, choice = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		className, semester, choice, enrollmentID)
	return err
}

func (r *enrollmentsRepo) SetActive(ctx context.Context, enrollmentID string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE enrollments SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, enrollmentID)
	return err
}
