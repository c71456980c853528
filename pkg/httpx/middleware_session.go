package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusware/enroll/pkg/jwtx"
	"github.com/campusware/enroll/pkg/slogx"
)

// SessionCookie is the name of the HTTP-only cookie carrying the session token.
const SessionCookie = "session-token"

// SessionAuthenticator is the request-time gate. Implementations must be safe
// for unbounded concurrent use. The returned claims are the authorization
// token's claims, which become the request principal.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, sessionToken, bearerToken string) (jwtx.Claims, error)
}

// SessionMiddleware admits a request only when it carries a valid, non-revoked
// session cookie and a valid authorization bearer token. Every rejection
// reason maps to the same 401 response; the distinction is logged only, so
// the response never hints at why a guess failed.
func SessionMiddleware(guard SessionAuthenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			claims, err := guard.Authenticate(ctx, CookieToken(r), BearerToken(r))
			if err != nil {
				log.Warn("session guard rejected request", "err", err)
				writeUnauthorized(w)
				return
			}

			ctx = context.WithValue(ctx, CtxKeyUserID, claims.Subject)
			ctx = context.WithValue(ctx, CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActive rejects principals whose is_active claim is false.
func RequireActive() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !claims.Active {
				WriteDetail(w, http.StatusForbidden, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects principals that are not active administrators.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !claims.Active || !claims.Admin {
				WriteDetail(w, http.StatusForbidden, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CookieToken extracts the raw session token from the request cookie.
// Returns "" when the cookie is absent.
func CookieToken(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// BearerToken extracts the raw token from the Authorization header.
// Returns "" when the header is absent or not a bearer credential.
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}

// RFC 6750-style response for all guard rejections.
func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
}
