package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store/memory"
	"github.com/campusware/enroll/pkg/jwtx"
)

var testSecret = []byte("test-secret-0123456789abcdef0123")

func testUser() domain.User {
	return domain.User{
		ID:     "01J8Z0TESTUSER0000000000AA",
		Name:   "alice",
		Admin:  false,
		Active: true,
	}
}

func newTokenFixture(t *testing.T) (*TokenService, *memory.RevocationStore, *time.Time) {
	t.Helper()
	clock := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	revocations := memory.NewRevocationStoreAt(now)
	svc := &TokenService{
		Codec:       jwtx.NewCodecAt(testSecret, now),
		Revocations: revocations,
	}
	return svc, revocations, &clock
}

func TestIssuePair(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTokenFixture(t)

	pair, err := svc.IssuePair(ctx, testUser())
	require.NoError(t, err)
	require.NotEmpty(t, pair.AuthorizationToken)
	require.NotEmpty(t, pair.SessionToken)
	require.Equal(t, jwtx.AuthorizationTokenTTL, pair.ExpiresIn)

	auth, err := svc.DecodeAuthorization(pair.AuthorizationToken)
	require.NoError(t, err)
	require.Equal(t, jwtx.KindAuthorization, auth.Kind)
	require.Equal(t, "01J8Z0TESTUSER0000000000AA", auth.Subject)
	require.Equal(t, "alice", auth.Name)
	require.True(t, auth.Active)
	require.False(t, auth.Admin)

	session, err := svc.DecodeSession(pair.SessionToken)
	require.NoError(t, err)
	require.Equal(t, jwtx.KindSession, session.Kind)
	require.Equal(t, auth.Subject, session.Subject)

	// Each token carries its own instance id.
	require.NotEmpty(t, auth.TokenID())
	require.NotEmpty(t, session.TokenID())
	require.NotEqual(t, auth.TokenID(), session.TokenID())
}

func TestKindIsEnforced(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTokenFixture(t)

	pair, err := svc.IssuePair(ctx, testUser())
	require.NoError(t, err)

	_, err = svc.DecodeAuthorization(pair.SessionToken)
	require.ErrorIs(t, err, jwtx.ErrInvalidKind)

	_, err = svc.DecodeSession(pair.AuthorizationToken)
	require.ErrorIs(t, err, jwtx.ErrInvalidKind)
}

func TestIssuePairSweepsOldMarkers(t *testing.T) {
	ctx := context.Background()
	svc, revocations, _ := newTokenFixture(t)
	user := testUser()

	require.NoError(t, revocations.Revoke(ctx, domain.RevocationMarker{
		TokenID: "stale-session", Subject: user.ID, TTL: time.Hour,
	}))
	require.Equal(t, 1, revocations.MarkerCount())

	_, err := svc.IssuePair(ctx, user)
	require.NoError(t, err)
	require.Zero(t, revocations.MarkerCount(), "login must clear the subject's old markers")
}

func TestIssuePairSweepIsBestEffort(t *testing.T) {
	ctx := context.Background()
	svc, revocations, _ := newTokenFixture(t)

	revocations.SetFailing(true)

	pair, err := svc.IssuePair(ctx, testUser())
	require.NoError(t, err, "a dead revocation store must not block logins")
	require.NotEmpty(t, pair.AuthorizationToken)
	require.NotEmpty(t, pair.SessionToken)
}

func TestIssueAuthorizationFromSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, revocations, _ := newTokenFixture(t)

	pair, err := svc.IssuePair(ctx, testUser())
	require.NoError(t, err)
	session, err := svc.DecodeSession(pair.SessionToken)
	require.NoError(t, err)

	// No store involvement at all.
	revocations.SetFailing(true)

	token, err := svc.IssueAuthorization(session)
	require.NoError(t, err)

	claims, err := svc.DecodeAuthorization(token)
	require.NoError(t, err)
	require.Equal(t, session.Subject, claims.Subject)
	require.NotEqual(t, session.TokenID(), claims.TokenID())
}

func TestDecodeRejectsExpiredAuthorization(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTokenFixture(t)

	pair, err := svc.IssuePair(ctx, testUser())
	require.NoError(t, err)

	*clock = clock.Add(jwtx.AuthorizationTokenTTL)
	_, err = svc.DecodeAuthorization(pair.AuthorizationToken)
	require.ErrorIs(t, err, jwtx.ErrExpired)

	// The session token outlives the authorization token.
	_, err = svc.DecodeSession(pair.SessionToken)
	require.NoError(t, err)
}
