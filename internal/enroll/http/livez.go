package http

import (
	"net/http"
	"time"

	"github.com/campusware/enroll/pkg/enrollsdk"
	"github.com/campusware/enroll/pkg/httpx"
)

// LivezHandler answers the liveness probe: 200 whenever the process is up.
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, enrollsdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}
