package service

import (
	"context"
	"errors"
	"strings"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store"
	"github.com/campusware/enroll/pkg/cryptox"
	"github.com/campusware/enroll/pkg/idx"
	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrAlreadyInitialized = errors.New("already_initialized")
	ErrUserExists         = errors.New("user_exists")
	ErrUserNotFound       = errors.New("user_not_found")
	ErrWeakPassword       = errors.New("weak_password")
	ErrInvalidName        = errors.New("invalid_name")
)

const minPasswordLength = 8

// UserService owns the user directory and the password login flow. Tokens
// themselves are the TokenService's business; this service only decides
// whether a login attempt deserves them.
type UserService struct {
	Store  store.Store
	Tokens *TokenService

	// Issuer names this deployment in TOTP provisioning URIs.
	Issuer string
}

// Login verifies name, password and, when the user has one enrolled, the
// TOTP code, then issues a fresh token pair. Every failure mode reports the
// same ErrInvalidCredentials so responses cannot be used to probe the
// directory.
func (s *UserService) Login(ctx context.Context, name, password, otpCode string) (domain.TokenPair, error) {
	user, err := s.Store.Users().GetUserByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
		return domain.TokenPair{}, err
	}

	if !user.Active {
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	if cryptox.VerifyPassword(password, user.PasswordHash) != nil {
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	if user.OTPSecret != nil {
		if otpCode == "" || !totp.Validate(otpCode, *user.OTPSecret) {
			return domain.TokenPair{}, ErrInvalidCredentials
		}
	}

	return s.Tokens.IssuePair(ctx, user)
}

// Setup bootstraps an empty directory with its first administrator. Once
// any user exists the route is permanently closed.
func (s *UserService) Setup(ctx context.Context, name, password string) (domain.User, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if !empty {
		return domain.User{}, ErrAlreadyInitialized
	}
	user, _, err := s.Register(ctx, name, password, true, false)
	return user, err
}

// Register creates a user. When withOTP is set a TOTP secret is minted and
// the otpauth:// provisioning URI is returned exactly once; the secret is
// never readable again through the API.
func (s *UserService) Register(ctx context.Context, name, password string, admin, withOTP bool) (domain.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, "", ErrInvalidName
	}
	if len(password) < minPasswordLength {
		return domain.User{}, "", ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, "", err
	}

	user := domain.User{
		ID:           idx.New().String(),
		Name:         name,
		PasswordHash: hash,
		Admin:        admin,
		Active:       true,
	}

	var provisioningURI string
	if withOTP {
		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      s.Issuer,
			AccountName: name,
		})
		if err != nil {
			return domain.User{}, "", err
		}
		secret := key.Secret()
		user.OTPSecret = &secret
		provisioningURI = key.URL()
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, "", ErrUserExists
		}
		return domain.User{}, "", err
	}

	return user, provisioningURI, nil
}

// List returns users matching the optional name substring, newest first.
func (s *UserService) List(ctx context.Context, nameFilter string, active bool) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx, strings.TrimSpace(nameFilter), active)
}

// Get returns one user by id.
func (s *UserService) Get(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return user, err
}

// UpdateName renames a user.
func (s *UserService) UpdateName(ctx context.Context, userID, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrInvalidName
	}
	if err := s.Store.Users().UpdateName(ctx, userID, newName); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// UpdatePassword verifies the current password before accepting a new one.
func (s *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if cryptox.VerifyPassword(currentPassword, user.PasswordHash) != nil {
		return ErrInvalidCredentials
	}
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.Store.Users().UpdatePasswordHash(ctx, userID, hash)
}

// SetActive flips a user's active flag. Existing tokens keep their old
// snapshot until they expire or are refreshed; revocation handles forcing
// a deactivated user out sooner.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) error {
	return s.Store.Users().SetActive(ctx, userID, active)
}

// SetAdmin flips a user's admin flag.
func (s *UserService) SetAdmin(ctx context.Context, userID string, admin bool) error {
	return s.Store.Users().SetAdmin(ctx, userID, admin)
}
