package sqlite

import (
	"context"

	"github.com/campusware/enroll/internal/enroll/domain"
)

type classesRepo struct {
	db dbtx
}

const classColumns = `id, name, semester, is_active, created_at, updated_at`

func scanClass(row interface{ Scan(dest ...any) error }) (domain.Class, error) {
	var c domain.Class
	err := row.Scan(&c.ID, &c.Name, &c.Semester, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *classesRepo) GetClass(ctx context.Context, name, semester string) (domain.Class, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE name = ? AND semester = ?`,
		name, semester)
	c, err := scanClass(row)
	if err != nil {
		return domain.Class{}, mapNotFound(err)
	}
	return c, nil
}

func (r *classesRepo) ListClasses(ctx context.Context, namePrefix, semester string, active bool) ([]domain.Class, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes
		 WHERE is_active = ?
		   AND (? = '' OR name LIKE ? || '%')
		   AND (? = '' OR semester = ?)
		 ORDER BY semester, name`,
		active, namePrefix, namePrefix, semester, semester)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var classes []domain.Class
	for rows.Next() {
		c, err := scanClass(rows)
		if err != nil {
			return nil, err
		}
		classes = append(classes, c)
	}
	return classes, rows.Err()
}

func (r *classesRepo) ListSemesters(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT semester FROM classes ORDER BY semester`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var semesters []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		semesters = append(semesters, s)
	}
	return semesters, rows.Err()
}

func (r *classesRepo) CreateClass(ctx context.Context, c domain.Class) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO classes (id, name, semester, is_active) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Semester, c.Active)
	return mapConflict(err)
}

func (r *classesRepo) UpdateClass(ctx context.Context, classID, newName, newSemester string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE classes SET name = ?, semester = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newName, newSemester, classID)
	return mapConflict(err)
}

func (r *classesRepo) SetActive(ctx context.Context, classID string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE classes SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, classID)
	return err
}
