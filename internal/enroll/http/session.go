package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campusware/enroll/internal/enroll/service"
	"github.com/campusware/enroll/pkg/enrollsdk"
	"github.com/campusware/enroll/pkg/httpx"
	"github.com/campusware/enroll/pkg/jwtx"
	"github.com/campusware/enroll/pkg/slogx"
)

// SessionHandler owns the login, refresh and logout endpoints. The session
// token only ever travels in the HTTP-only cookie; response bodies carry
// the authorization token alone.
type SessionHandler struct {
	Sessions *service.SessionService
	Users    *service.UserService
}

// HandleLogin handles POST /v1/users/login.
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req enrollsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}
	if req.Name == "" || req.Password == "" {
		writeBadRequest(w, "name and password are required")
		return
	}

	pair, err := h.Users.Login(ctx, req.Name, req.Password, req.OTPCode)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			log.Info("login rejected", "name", req.Name)
		}
		writeServiceError(w, r, err)
		return
	}

	setSessionCookie(w, r, pair.SessionToken)
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, enrollsdk.TokenResponse{
		Token:     pair.AuthorizationToken,
		ExpiresIn: int64(pair.ExpiresIn.Seconds()),
	})
}

// HandleRefresh handles PATCH /v1/users/login. It re-validates the session
// cookie and mints a fresh authorization token; the cookie is left as-is.
func (h *SessionHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pair, err := h.Sessions.Refresh(ctx, httpx.CookieToken(r))
	if err != nil {
		slogx.FromContext(ctx).Warn("refresh rejected", "err", err)
		httpx.WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, enrollsdk.TokenResponse{
		Token:     pair.AuthorizationToken,
		ExpiresIn: int64(pair.ExpiresIn.Seconds()),
	})
}

// HandleLogout handles POST /v1/users/logout. The cookie is cleared only
// after the revocation marker is safely written: if the store write fails
// the client keeps its cookie and can try again.
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := httpx.CookieToken(r)
	if token == "" {
		httpx.WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	subject, err := h.Sessions.Logout(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			// Garbage cookie, nothing revocable. Clear it.
			clearSessionCookie(w, r)
			httpx.WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		log.Error("logout could not be recorded", "err", err)
		httpx.WriteDetail(w, http.StatusServiceUnavailable, "logout failed, try again")
		return
	}

	log.Info("session revoked", "subject", subject)
	clearSessionCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(jwtx.SessionTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     httpx.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}
