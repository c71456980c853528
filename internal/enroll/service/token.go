package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store"
	"github.com/campusware/enroll/pkg/jwtx"
	"github.com/campusware/enroll/pkg/slogx"
)

// TokenService mints and decodes the two token kinds. Issuance is pure
// except for the login-time sweep: a fresh login clears the subject's old
// revocation markers so the side-store only ever holds markers for sessions
// that matter.
type TokenService struct {
	Codec       *jwtx.Codec
	Revocations store.RevocationStore
}

// IssuePair mints a new authorization/session token pair for the user.
//
// Before minting it sweeps the subject's existing revocation markers. The
// sweep is best-effort: the new pair carries fresh jtis that no old marker
// can match, so a failed sweep costs nothing but leftover keys that expire
// on their own.
func (s *TokenService) IssuePair(ctx context.Context, user domain.User) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	if removed, err := s.Revocations.DeleteBySubject(ctx, user.ID); err != nil {
		l.Warn("login-time revocation sweep failed", "err", err, slog.String("subject", user.ID))
	} else if removed > 0 {
		l.Info("swept stale revocation markers", slog.Int("count", removed), slog.String("subject", user.ID))
	}

	now := s.Codec.Now()

	authorization, err := s.Codec.Encode(jwtx.NewClaims(
		user.ID, user.Name, user.Admin, user.Active,
		jwtx.KindAuthorization, jwtx.AuthorizationTokenTTL, now,
	))
	if err != nil {
		return domain.TokenPair{}, err
	}

	session, err := s.Codec.Encode(jwtx.NewClaims(
		user.ID, user.Name, user.Admin, user.Active,
		jwtx.KindSession, jwtx.SessionTokenTTL, now,
	))
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AuthorizationToken: authorization,
		SessionToken:       session,
		ExpiresIn:          jwtx.AuthorizationTokenTTL,
	}, nil
}

// IssueAuthorization mints a single short-lived authorization token from a
// claims snapshot. No store access; used by the refresh flow once the
// session has been re-validated.
func (s *TokenService) IssueAuthorization(snapshot jwtx.Claims) (string, error) {
	return s.Codec.Encode(jwtx.NewClaims(
		snapshot.Subject, snapshot.Name, snapshot.Admin, snapshot.Active,
		jwtx.KindAuthorization, jwtx.AuthorizationTokenTTL, s.Codec.Now(),
	))
}

// DecodeAuthorization decodes a token and insists it is an authorization token.
func (s *TokenService) DecodeAuthorization(token string) (jwtx.Claims, error) {
	return s.decodeKind(token, jwtx.KindAuthorization)
}

// DecodeSession decodes a token and insists it is a session token.
func (s *TokenService) DecodeSession(token string) (jwtx.Claims, error) {
	return s.decodeKind(token, jwtx.KindSession)
}

func (s *TokenService) decodeKind(token, kind string) (jwtx.Claims, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return jwtx.Claims{}, err
	}
	if claims.Kind != kind {
		return jwtx.Claims{}, jwtx.ErrInvalidKind
	}
	if claims.TokenID() == "" {
		return jwtx.Claims{}, jwtx.ErrMalformed
	}
	return claims, nil
}

// sentinel guard for callers that only care whether a decode failure is a
// token problem as opposed to an infrastructure one
func isTokenError(err error) bool {
	return errors.Is(err, jwtx.ErrMalformed) ||
		errors.Is(err, jwtx.ErrBadSignature) ||
		errors.Is(err, jwtx.ErrExpired) ||
		errors.Is(err, jwtx.ErrInvalidKind)
}
