package http

import (
	"encoding/json"
	"net/http"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/service"
	"github.com/campusware/enroll/pkg/enrollsdk"
	"github.com/campusware/enroll/pkg/httpx"
)

// ClassesHandler owns the class section endpoints.
type ClassesHandler struct {
	Classes  *service.ClassService
	Settings *service.SettingsService
}

func toClassResponse(c domain.Class) enrollsdk.ClassResponse {
	return enrollsdk.ClassResponse{
		ID:        c.ID,
		Name:      c.Name,
		Semester:  c.Semester,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func writeClassList(w http.ResponseWriter, classes []domain.Class) {
	out := make([]enrollsdk.ClassResponse, 0, len(classes))
	for _, c := range classes {
		out = append(out, toClassResponse(c))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleList handles GET /v1/classes.
func (h *ClassesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	active := q.Get("active") != "false"

	classes, err := h.Classes.List(r.Context(), q.Get("name"), q.Get("semester"), active)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeClassList(w, classes)
}

// HandleListActive handles GET /v1/classes/active: the sections open for
// enrollment in the configured active semester.
func (h *ClassesHandler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Get(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	classes, err := h.Classes.List(r.Context(), "", settings.ActiveSemester, true)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeClassList(w, classes)
}

// HandleSemesters handles GET /v1/classes/semesters.
func (h *ClassesHandler) HandleSemesters(w http.ResponseWriter, r *http.Request) {
	semesters, err := h.Classes.Semesters(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if semesters == nil {
		semesters = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, semesters)
}

// HandleCreate handles POST /v1/classes.
func (h *ClassesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req enrollsdk.ClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	class, err := h.Classes.Create(r.Context(), req.Name, req.Semester)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toClassResponse(class))
}

// HandleUpdate handles PATCH /v1/classes. The query names the class and the
// body carries the new values.
func (h *ClassesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, semester := q.Get("name"), q.Get("semester")
	if name == "" || semester == "" {
		writeBadRequest(w, "name and semester query parameters are required")
		return
	}

	var req enrollsdk.ClassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	if err := h.Classes.Update(r.Context(), name, semester, req.Name, req.Semester); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeactivate handles DELETE /v1/classes.
func (h *ClassesHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	name, semester := q.Get("name"), q.Get("semester")
	if name == "" || semester == "" {
		writeBadRequest(w, "name and semester query parameters are required")
		return
	}

	if err := h.Classes.Deactivate(r.Context(), name, semester); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
