package store

import (
	"context"
	"errors"

	"github.com/campusware/enroll/internal/enroll/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface for the document data (users,
// classes, admission records, enrollments, settings). Concrete drivers
// implement it; sub-repositories keep concerns tidy and testable.
type Store interface {
	Users() Users
	Classes() Classes
	Admissions() Admissions
	Enrollments() Enrollments
	Settings() Settings

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction; commit on nil, rollback on
	// error. Preferred over Tx for multi-step operations.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByName is used during password login.
	GetUserByName(ctx context.Context, name string) (domain.User, error)

	// ListUsers returns users matching the optional name substring filter
	// and the active flag, newest first.
	ListUsers(ctx context.Context, nameFilter string, active bool) ([]domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateName renames a user and bumps updated_at.
	UpdateName(ctx context.Context, userID, newName string) error

	// UpdatePasswordHash sets the password_hash (argon2) and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID, newHash string) error

	// SetActive flips the is_active flag.
	SetActive(ctx context.Context, userID string, active bool) error

	// SetAdmin flips the admin flag.
	SetAdmin(ctx context.Context, userID string, admin bool) error

	// UpdateOTPSecret sets the TOTP secret for a user.
	UpdateOTPSecret(ctx context.Context, userID string, secret string) error

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}

type Classes interface {
	// GetClass fetches a class by name and semester.
	GetClass(ctx context.Context, name, semester string) (domain.Class, error)

	// ListClasses returns classes matching the optional name-prefix and
	// semester filters plus the active flag.
	ListClasses(ctx context.Context, namePrefix, semester string, active bool) ([]domain.Class, error)

	// ListSemesters returns the distinct semesters sorted ascending.
	ListSemesters(ctx context.Context) ([]string, error)

	// CreateClass inserts a new class (id is ULID).
	CreateClass(ctx context.Context, c domain.Class) error

	// UpdateClass renames a class and/or moves it to another semester.
	UpdateClass(ctx context.Context, classID, newName, newSemester string) error

	// SetActive flips the is_active flag.
	SetActive(ctx context.Context, classID string, active bool) error
}

type Admissions interface {
	// ListApplicants returns up to limit distinct applicant names,
	// optionally filtered by a case-insensitive substring.
	ListApplicants(ctx context.Context, nameFilter string, limit int) ([]string, error)

	// ListCPFDigits returns the stored CPF fragments for an applicant name.
	ListCPFDigits(ctx context.Context, applicant string) ([]string, error)

	// ListCourses returns the courses found for an applicant and CPF fragment.
	ListCourses(ctx context.Context, applicant, cpfDigits string) ([]string, error)

	// LatestAdmission returns the most recent admission record for the
	// applicant, CPF fragment and course.
	LatestAdmission(ctx context.Context, applicant, cpfDigits, course string) (domain.Admission, error)

	// CreateAdmission inserts an imported admission record.
	CreateAdmission(ctx context.Context, a domain.Admission) error
}

type Enrollments interface {
	// GetActiveEnrollment fetches the active enrollment identified by
	// applicant, CPF fragment, course and semester.
	GetActiveEnrollment(ctx context.Context, applicant, cpfDigits, course, semester string) (domain.Enrollment, error)

	// ListEnrollments returns one page of enrollments plus the unpaged count.
	ListEnrollments(ctx context.Context, f domain.EnrollmentFilter) ([]domain.Enrollment, int, error)

	// CreateEnrollment inserts a new enrollment record.
	CreateEnrollment(ctx context.Context, e domain.Enrollment) error

	// UpdateEnrollment changes class/semester/choice for an enrollment.
	UpdateEnrollment(ctx context.Context, enrollmentID, className, semester, choice string) error

	// SetActive flips the is_active flag (soft delete).
	SetActive(ctx context.Context, enrollmentID string, active bool) error
}

type Settings interface {
	// GetSettings returns the single settings row.
	GetSettings(ctx context.Context) (domain.Settings, error)

	// UpsertSettings creates or replaces the settings row.
	UpsertSettings(ctx context.Context, s domain.Settings) error
}
