package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusware/enroll/internal/enroll/store"
	"github.com/campusware/enroll/internal/enroll/store/drivers/sqlite"
	"github.com/campusware/enroll/pkg/cryptox"
	"github.com/pquerna/otp/totp"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "enroll-service-test-")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())
	return st
}

func newUserFixture(t *testing.T) *UserService {
	t.Helper()
	tokens, _, _ := newTokenFixture(t)
	return &UserService{
		Store:  newTestStore(t),
		Tokens: tokens,
		Issuer: "enroll",
	}
}

func TestSetup(t *testing.T) {
	ctx := context.Background()
	svc := newUserFixture(t)

	admin, err := svc.Setup(ctx, "admin", "correct horse battery")
	require.NoError(t, err)
	require.True(t, admin.Admin)
	require.True(t, admin.Active)

	// The bootstrap route closes permanently after the first user.
	_, err = svc.Setup(ctx, "admin2", "correct horse battery")
	require.ErrorIs(t, err, ErrAlreadyInitialized)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc := newUserFixture(t)

	_, _, err := svc.Register(ctx, "alice", "s3cret-passw0rd", false, false)
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "alice", "s3cret-passw0rd", "")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AuthorizationToken)
	require.NotEmpty(t, pair.SessionToken)

	_, err = svc.Login(ctx, "alice", "wrong-password", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret-passw0rd", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDeactivatedUser(t *testing.T) {
	ctx := context.Background()
	svc := newUserFixture(t)

	user, _, err := svc.Register(ctx, "alice", "s3cret-passw0rd", false, false)
	require.NoError(t, err)
	require.NoError(t, svc.SetActive(ctx, user.ID, false))

	_, err = svc.Login(ctx, "alice", "s3cret-passw0rd", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithOTP(t *testing.T) {
	ctx := context.Background()
	svc := newUserFixture(t)

	user, uri, err := svc.Register(ctx, "alice", "s3cret-passw0rd", false, true)
	require.NoError(t, err)
	require.NotNil(t, user.OTPSecret)
	require.Contains(t, uri, "otpauth://totp/")

	// Missing and bogus codes are both just invalid credentials.
	_, err = svc.Login(ctx, "alice", "s3cret-passw0rd", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice", "s3cret-passw0rd", "000000")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	code, err := totp.GenerateCode(*user.OTPSecret, time.Now())
	require.NoError(t, err)
	_, err = svc.Login(ctx, "alice", "s3cret-passw0rd", code)
	require.NoError(t, err)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc := newUserFixture(t)

	_, _, err := svc.Register(ctx, "  ", "s3cret-passw0rd", false, false)
	require.ErrorIs(t, err, ErrInvalidName)

	_, _, err = svc.Register(ctx, "alice", "short", false, false)
	require.ErrorIs(t, err, ErrWeakPassword)

	_, _, err = svc.Register(ctx, "alice", "s3cret-passw0rd", false, false)
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, "alice", "another-passw0rd", false, false)
	require.ErrorIs(t, err, ErrUserExists)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	svc := newUserFixture(t)

	user, _, err := svc.Register(ctx, "alice", "s3cret-passw0rd", false, false)
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, user.ID, "wrong-password", "new-passw0rd!")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.UpdatePassword(ctx, user.ID, "s3cret-passw0rd", "new-passw0rd!")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice", "new-passw0rd!", "")
	require.NoError(t, err)
	_, err = svc.Login(ctx, "alice", "s3cret-passw0rd", "")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
