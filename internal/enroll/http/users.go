package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/service"
	"github.com/campusware/enroll/pkg/enrollsdk"
	"github.com/campusware/enroll/pkg/httpx"
)

// UsersHandler owns the user directory endpoints.
type UsersHandler struct {
	Users *service.UserService
}

func toUserResponse(u domain.User) enrollsdk.UserResponse {
	return enrollsdk.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Admin:     u.Admin,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// HandleSetup handles POST /v1/users/setup.
func (h *UsersHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	var req enrollsdk.SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	admin, err := h.Users.Setup(r.Context(), req.Name, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(admin))
}

// HandleRegister handles POST /v1/users.
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req enrollsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	user, provisioningURI, err := h.Users.Register(r.Context(), req.Name, req.Password, req.Admin, req.WithOTP)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// The provisioning URI is shown exactly once.
	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, enrollsdk.RegisterResponse{
		User:            toUserResponse(user),
		ProvisioningURI: provisioningURI,
	})
}

// HandleList handles GET /v1/users.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	active := r.URL.Query().Get("active") != "false"

	users, err := h.Users.List(r.Context(), r.URL.Query().Get("name"), active)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := make([]enrollsdk.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleMe handles GET /v1/users/me.
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.Users.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleUpdateName handles PATCH /v1/users/me/name.
func (h *UsersHandler) HandleUpdateName(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req enrollsdk.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	if err := h.Users.UpdateName(r.Context(), userID, req.Name); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpdatePassword handles PATCH /v1/users/me/password.
func (h *UsersHandler) HandleUpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpx.UserIDFromContext(r.Context())
	if !ok {
		httpx.WriteDetail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req enrollsdk.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	if err := h.Users.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSetActive handles PATCH /v1/users/{id}/active.
func (h *UsersHandler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.Users.SetActive)
}

// HandleSetAdmin handles PATCH /v1/users/{id}/admin.
func (h *UsersHandler) HandleSetAdmin(w http.ResponseWriter, r *http.Request) {
	h.setFlag(w, r, h.Users.SetAdmin)
}

func (h *UsersHandler) setFlag(
	w http.ResponseWriter,
	r *http.Request,
	set func(ctx context.Context, userID string, value bool) error,
) {
	targetID := r.PathValue("id")
	if targetID == "" {
		writeBadRequest(w, "user id is required")
		return
	}

	var req enrollsdk.SetFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	// Confirm the target exists so a typo'd id logs 404, not silent success.
	if _, err := h.Users.Get(r.Context(), targetID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := set(r.Context(), targetID, req.Value); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
