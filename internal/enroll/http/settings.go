package http

import (
	"encoding/json"
	"net/http"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/service"
	"github.com/campusware/enroll/pkg/enrollsdk"
	"github.com/campusware/enroll/pkg/httpx"
)

// SettingsHandler owns the service configuration endpoints.
type SettingsHandler struct {
	Settings *service.SettingsService
}

// HandleGet handles GET /v1/settings.
func (h *SettingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, enrollsdk.SettingsResponse{
		SettingsRequest: enrollsdk.SettingsRequest{
			ActiveSemester:     settings.ActiveSemester,
			EnrollmentStart:    settings.EnrollmentStart,
			EnrollmentEnd:      settings.EnrollmentEnd,
			Intercept:          settings.Intercept,
			LanguageWeight:     settings.LanguageWeight,
			EssayWeight:        settings.EssayWeight,
			ExemptionThreshold: settings.ExemptionThreshold,
		},
		CreatedAt: settings.CreatedAt,
		UpdatedAt: settings.UpdatedAt,
	})
}

// HandleUpdate handles PUT /v1/settings.
func (h *SettingsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req enrollsdk.SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	err := h.Settings.Update(r.Context(), domain.Settings{
		ActiveSemester:     req.ActiveSemester,
		EnrollmentStart:    req.EnrollmentStart,
		EnrollmentEnd:      req.EnrollmentEnd,
		Intercept:          req.Intercept,
		LanguageWeight:     req.LanguageWeight,
		EssayWeight:        req.EssayWeight,
		ExemptionThreshold: req.ExemptionThreshold,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
