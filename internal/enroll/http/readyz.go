package http

import (
	"net/http"
	"time"

	"github.com/campusware/enroll/internal/enroll/store"
	"github.com/campusware/enroll/pkg/enrollsdk"
	"github.com/campusware/enroll/pkg/httpx"
)

// ReadyzHandler answers the readiness probe. Both the document store and
// the revocation store must respond: with the revocation store down the
// session guard fails closed and the service cannot usefully serve.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	revocations store.RevocationStore,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &enrollsdk.HealthChecks{
			Database:   "ok",
			Revocation: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := revocations.Ping(r.Context()); err != nil {
			checks.Revocation = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, enrollsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
