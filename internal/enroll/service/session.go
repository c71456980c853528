package service

import (
	"context"
	"errors"
	"time"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/store"
	"github.com/campusware/enroll/pkg/jwtx"
	"github.com/campusware/enroll/pkg/slogx"
)

var (
	ErrNoToken      = errors.New("no_token")
	ErrInvalidToken = errors.New("invalid_token")
	ErrRevoked      = errors.New("revoked")
)

// defaultRevocationTimeout caps how long a request waits on the revocation
// store before failing closed.
const defaultRevocationTimeout = 2 * time.Second

// SessionService is the request-time gate in front of every protected
// route. A request is admitted only when its session cookie decodes, is not
// revoked, and its bearer token decodes as an authorization token for the
// same subject. Any doubt about revocation state counts as revoked.
type SessionService struct {
	Tokens      *TokenService
	Revocations store.RevocationStore

	// RevocationTimeout bounds the IsRevoked round trip. Zero means the
	// default.
	RevocationTimeout time.Duration
}

// Authenticate runs the admission checks in a fixed order and returns the
// authorization token's claims as the request principal. The error
// distinguishes the rejection reason for logging; the HTTP layer collapses
// them all into one 401.
func (s *SessionService) Authenticate(ctx context.Context, sessionToken, bearerToken string) (jwtx.Claims, error) {
	if sessionToken == "" {
		return jwtx.Claims{}, ErrNoToken
	}

	session, err := s.Tokens.DecodeSession(sessionToken)
	if err != nil {
		if isTokenError(err) {
			return jwtx.Claims{}, errors.Join(ErrInvalidToken, err)
		}
		return jwtx.Claims{}, err
	}

	revoked, err := s.isRevoked(ctx, session.TokenID())
	if err != nil {
		// Store trouble means revocation state is unknowable. Unknowable
		// is treated as revoked.
		slogx.FromContext(ctx).Error("revocation check failed, failing closed", "err", err)
		return jwtx.Claims{}, errors.Join(ErrRevoked, err)
	}
	if revoked {
		return jwtx.Claims{}, ErrRevoked
	}

	if bearerToken == "" {
		return jwtx.Claims{}, ErrNoToken
	}

	authorization, err := s.Tokens.DecodeAuthorization(bearerToken)
	if err != nil {
		if isTokenError(err) {
			return jwtx.Claims{}, errors.Join(ErrInvalidToken, err)
		}
		return jwtx.Claims{}, err
	}

	// Both credentials must belong to the same subject.
	if authorization.Subject != session.Subject {
		return jwtx.Claims{}, ErrInvalidToken
	}

	return authorization, nil
}

// Refresh re-validates the session token and, when it still stands, mints a
// fresh authorization token from the session's claims snapshot. The session
// token itself is never reissued or extended.
func (s *SessionService) Refresh(ctx context.Context, sessionToken string) (domain.TokenPair, error) {
	if sessionToken == "" {
		return domain.TokenPair{}, ErrNoToken
	}

	session, err := s.Tokens.DecodeSession(sessionToken)
	if err != nil {
		if isTokenError(err) {
			return domain.TokenPair{}, errors.Join(ErrInvalidToken, err)
		}
		return domain.TokenPair{}, err
	}

	revoked, err := s.isRevoked(ctx, session.TokenID())
	if err != nil {
		slogx.FromContext(ctx).Error("revocation check failed, failing closed", "err", err)
		return domain.TokenPair{}, errors.Join(ErrRevoked, err)
	}
	if revoked {
		return domain.TokenPair{}, ErrRevoked
	}

	token, err := s.Tokens.IssueAuthorization(session)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{
		AuthorizationToken: token,
		ExpiresIn:          jwtx.AuthorizationTokenTTL,
	}, nil
}

// Logout revokes the presented session token for the remainder of its
// lifetime and returns the subject it belonged to. An already-expired
// session needs no marker: logout is then an idempotent success. A store
// write failure is returned so the caller can keep the cookie in place
// rather than pretend the session died.
func (s *SessionService) Logout(ctx context.Context, sessionToken string) (string, error) {
	if sessionToken == "" {
		return "", ErrNoToken
	}

	session, err := s.Tokens.DecodeSession(sessionToken)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			// Nothing to revoke; the token can never be presented again.
			return "", nil
		}
		if isTokenError(err) {
			return "", errors.Join(ErrInvalidToken, err)
		}
		return "", err
	}

	remaining := session.ExpiresAt.Time.Sub(s.Tokens.Codec.Now())
	if remaining <= 0 {
		return session.Subject, nil
	}

	err = s.Revocations.Revoke(ctx, domain.RevocationMarker{
		TokenID: session.TokenID(),
		Subject: session.Subject,
		Active:  session.Active,
		TTL:     remaining,
	})
	if err != nil {
		return "", err
	}

	return session.Subject, nil
}

func (s *SessionService) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	timeout := s.RevocationTimeout
	if timeout <= 0 {
		timeout = defaultRevocationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return s.Revocations.IsRevoked(ctx, tokenID)
}
