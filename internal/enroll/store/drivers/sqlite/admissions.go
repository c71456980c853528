package sqlite

import (
	"context"

	"github.com/campusware/enroll/internal/enroll/domain"
)

type admissionsRepo struct {
	db dbtx
}

func (r *admissionsRepo) ListApplicants(ctx context.Context, nameFilter string, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT applicant FROM admissions
		 WHERE (? = '' OR applicant LIKE '%' || ? || '%')
		 ORDER BY applicant
		 LIMIT ?`,
		nameFilter, nameFilter, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *admissionsRepo) ListCPFDigits(ctx context.Context, applicant string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT cpf_digits FROM admissions WHERE applicant = ? ORDER BY cpf_digits`,
		applicant)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digits []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		digits = append(digits, d)
	}
	return digits, rows.Err()
}

func (r *admissionsRepo) ListCourses(ctx context.Context, applicant, cpfDigits string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT course FROM admissions
		 WHERE applicant = ? AND cpf_digits = ?
		 ORDER BY course`,
		applicant, cpfDigits)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var courses []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *admissionsRepo) LatestAdmission(ctx context.Context, applicant, cpfDigits, course string) (domain.Admission, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, applicant, cpf_digits, course, language_score, essay_score, year
		 FROM admissions
		 WHERE applicant = ? AND cpf_digits = ? AND course = ?
		 ORDER BY year DESC
		 LIMIT 1`,
		applicant, cpfDigits, course)

	var a domain.Admission
	err := row.Scan(&a.ID, &a.Applicant, &a.CPFDigits, &a.Course, &a.LanguageScore, &a.EssayScore, &a.Year)
	if err != nil {
		return domain.Admission{}, mapNotFound(err)
	}
	return a, nil
}

func (r *admissionsRepo) CreateAdmission(ctx context.Context, a domain.Admission) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admissions (id, applicant, cpf_digits, course, language_score, essay_score, year)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Applicant, a.CPFDigits, a.Course, a.LanguageScore, a.EssayScore, a.Year)
	return mapConflict(err)
}
