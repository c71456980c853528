package http

import (
	"errors"
	"net/http"

	"github.com/campusware/enroll/internal/enroll/service"
	"github.com/campusware/enroll/pkg/httpx"
	"github.com/campusware/enroll/pkg/slogx"
)

// statusByErr maps service sentinels to HTTP statuses. Anything unmapped is
// a 500 with a generic body; the real error goes to the log only.
var statusByErr = map[error]int{
	service.ErrInvalidCredentials: http.StatusUnauthorized,
	service.ErrNoToken:            http.StatusUnauthorized,
	service.ErrInvalidToken:       http.StatusUnauthorized,
	service.ErrRevoked:            http.StatusUnauthorized,

	service.ErrAlreadyInitialized: http.StatusConflict,
	service.ErrUserExists:         http.StatusConflict,
	service.ErrClassExists:        http.StatusConflict,
	service.ErrAlreadyEnrolled:    http.StatusConflict,

	service.ErrUserNotFound:       http.StatusNotFound,
	service.ErrClassNotFound:      http.StatusNotFound,
	service.ErrApplicantNotFound:  http.StatusNotFound,
	service.ErrEnrollmentNotFound: http.StatusNotFound,
	service.ErrSettingsNotFound:   http.StatusNotFound,

	service.ErrWeakPassword:       http.StatusBadRequest,
	service.ErrInvalidName:        http.StatusBadRequest,
	service.ErrInvalidSemester:    http.StatusBadRequest,
	service.ErrInvalidCPF:         http.StatusBadRequest,
	service.ErrInvalidChoice:      http.StatusBadRequest,
	service.ErrInvalidWindow:      http.StatusBadRequest,
	service.ErrInvalidCoefficient: http.StatusBadRequest,

	service.ErrWindowClosed:  http.StatusForbidden,
	service.ErrNotExemptible: http.StatusForbidden,
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for sentinel, status := range statusByErr {
		if errors.Is(err, sentinel) {
			httpx.WriteDetail(w, status, sentinel.Error())
			return
		}
	}
	slogx.FromContext(r.Context()).Error("unhandled service error", "err", err)
	httpx.WriteDetail(w, http.StatusInternalServerError, "internal error")
}

func writeBadRequest(w http.ResponseWriter, detail string) {
	httpx.WriteDetail(w, http.StatusBadRequest, detail)
}
