package sqlite

import (
	"context"
	"database/sql"

	"github.com/campusware/enroll/internal/enroll/domain"
)

type usersRepo struct {
	db dbtx
}

const userColumns = `id, name, password_hash, admin, is_active, otp_secret, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (domain.User, error) {
	var (
		u         domain.User
		otpSecret sql.NullString
	)
	err := row.Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Admin, &u.Active, &otpSecret, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}
	u.OTPSecret = mapNullStringPtr(otpSecret)
	return u, nil
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) GetUserByName(ctx context.Context, name string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE name = ?`, name)
	u, err := scanUser(row)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return u, nil
}

func (r *usersRepo) ListUsers(ctx context.Context, nameFilter string, active bool) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE is_active = ? AND (? = '' OR name LIKE '%' || ? || '%')
		 ORDER BY created_at DESC`,
		active, nameFilter, nameFilter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, password_hash, admin, is_active, otp_secret)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.PasswordHash, u.Admin, u.Active, mapOptionalString(u.OTPSecret))
	return mapConflict(err)
}

func (r *usersRepo) UpdateName(ctx context.Context, userID, newName string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newName, userID)
	return mapConflict(err)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		newHash, userID)
	return err
}

func (r *usersRepo) SetActive(ctx context.Context, userID string, active bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		active, userID)
	return err
}

func (r *usersRepo) SetAdmin(ctx context.Context, userID string, admin bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET admin = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		admin, userID)
	return err
}

func (r *usersRepo) UpdateOTPSecret(ctx context.Context, userID string, secret string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET otp_secret = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		secret, userID)
	return err
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
