package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/campusware/enroll/internal/enroll/service"
	"github.com/campusware/enroll/internal/enroll/store"
	"github.com/campusware/enroll/pkg/httpx"
	"github.com/campusware/enroll/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store       store.Store
	revocations store.RevocationStore

	SessionService    *service.SessionService
	UserService       *service.UserService
	ClassService      *service.ClassService
	EnrollmentService *service.EnrollmentService
	SettingsService   *service.SettingsService
}

func NewRouter(
	buildVersion string,
	st store.Store,
	revocations store.RevocationStore,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		revocations:  revocations,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerUsers()
	r.registerClasses()
	r.registerEnrollments()
	r.registerSettings()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// guarded wraps h with the session guard plus any extra middleware.
func (r *Router) guarded(h http.Handler, extra ...httpx.Middleware) http.Handler {
	mw := append([]httpx.Middleware{httpx.SessionMiddleware(r.SessionService)}, extra...)
	return httpx.Chain(h, mw...)
}

func (r *Router) registerSessions() {
	h := &SessionHandler{Sessions: r.SessionService, Users: r.UserService}

	// Authentication attempts get the strict profile.
	r.Mux.Handle("POST /v1/users/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Refresh trades a valid session cookie for a new bearer token.
	r.Mux.Handle("PATCH /v1/users/login",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/users/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Users: r.UserService}

	// One-time bootstrap; closed once any user exists.
	r.Mux.Handle("POST /v1/users/setup",
		httpx.Chain(http.HandlerFunc(h.HandleSetup),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("GET /v1/users/me",
		r.guarded(http.HandlerFunc(h.HandleMe), httpx.RequireActive()))
	r.Mux.Handle("PATCH /v1/users/me/name",
		r.guarded(http.HandlerFunc(h.HandleUpdateName), httpx.RequireActive()))
	r.Mux.Handle("PATCH /v1/users/me/password",
		r.guarded(http.HandlerFunc(h.HandleUpdatePassword), httpx.RequireActive()))

	r.Mux.Handle("GET /v1/users",
		r.guarded(http.HandlerFunc(h.HandleList), httpx.RequireAdmin()))
	r.Mux.Handle("POST /v1/users",
		r.guarded(http.HandlerFunc(h.HandleRegister), httpx.RequireAdmin()))
	r.Mux.Handle("PATCH /v1/users/{id}/active",
		r.guarded(http.HandlerFunc(h.HandleSetActive), httpx.RequireAdmin()))
	r.Mux.Handle("PATCH /v1/users/{id}/admin",
		r.guarded(http.HandlerFunc(h.HandleSetAdmin), httpx.RequireAdmin()))
}

func (r *Router) registerClasses() {
	h := &ClassesHandler{Classes: r.ClassService, Settings: r.SettingsService}

	r.Mux.Handle("GET /v1/classes",
		r.guarded(http.HandlerFunc(h.HandleList), httpx.RequireActive()))
	r.Mux.Handle("GET /v1/classes/semesters",
		r.guarded(http.HandlerFunc(h.HandleSemesters), httpx.RequireActive()))

	// The active-semester listing backs the public enrollment form.
	r.Mux.Handle("GET /v1/classes/active",
		httpx.Chain(http.HandlerFunc(h.HandleListActive),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /v1/classes",
		r.guarded(http.HandlerFunc(h.HandleCreate), httpx.RequireAdmin()))
	r.Mux.Handle("PATCH /v1/classes",
		r.guarded(http.HandlerFunc(h.HandleUpdate), httpx.RequireAdmin()))
	r.Mux.Handle("DELETE /v1/classes",
		r.guarded(http.HandlerFunc(h.HandleDeactivate), httpx.RequireAdmin()))
}

func (r *Router) registerEnrollments() {
	h := &EnrollmentsHandler{Enrollments: r.EnrollmentService}

	// Applicant-facing lookups are public; applicants are not users.
	r.Mux.Handle("GET /v1/enrollments/applicants",
		httpx.Chain(http.HandlerFunc(h.HandleApplicants),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("POST /v1/enrollments/verify-cpf",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyCPF),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/enrollments/courses",
		httpx.Chain(http.HandlerFunc(h.HandleCourses),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/enrollments/entry-info",
		httpx.Chain(http.HandlerFunc(h.HandleEntryInfo),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/enrollments",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/enrollments",
		r.guarded(http.HandlerFunc(h.HandleList), httpx.RequireActive()))
	r.Mux.Handle("PATCH /v1/enrollments",
		r.guarded(http.HandlerFunc(h.HandleUpdate), httpx.RequireAdmin()))
	r.Mux.Handle("DELETE /v1/enrollments",
		r.guarded(http.HandlerFunc(h.HandleDeactivate), httpx.RequireAdmin()))

	r.Mux.Handle("POST /v1/admissions",
		r.guarded(http.HandlerFunc(h.HandleImportAdmission), httpx.RequireAdmin()))
}

func (r *Router) registerSettings() {
	h := &SettingsHandler{Settings: r.SettingsService}

	r.Mux.Handle("GET /v1/settings",
		r.guarded(http.HandlerFunc(h.HandleGet), httpx.RequireActive()))
	r.Mux.Handle("PUT /v1/settings",
		r.guarded(http.HandlerFunc(h.HandleUpdate), httpx.RequireAdmin()))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store, r.revocations))
}
