package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/campusware/enroll/internal/enroll/domain"
	"github.com/campusware/enroll/internal/enroll/service"
	"github.com/campusware/enroll/pkg/enrollsdk"
	"github.com/campusware/enroll/pkg/httpx"
)

// EnrollmentsHandler owns the applicant-facing enrollment flow and the
// administrative record management behind it.
type EnrollmentsHandler struct {
	Enrollments *service.EnrollmentService
}

func toEnrollmentResponse(e domain.Enrollment) enrollsdk.EnrollmentResponse {
	return enrollsdk.EnrollmentResponse{
		ID:        e.ID,
		Applicant: e.Applicant,
		Course:    e.Course,
		Choice:    e.Choice,
		ClassName: e.ClassName,
		Semester:  e.Semester,
		Active:    e.Active,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// applicantRef identifies an applicant in lookup requests. The full CPF is
// accepted on the wire but never stored or echoed back.
type applicantRef struct {
	Applicant string `json:"applicant"`
	CPF       string `json:"cpf"`
	Course    string `json:"course,omitempty"`
}

// HandleApplicants handles GET /v1/enrollments/applicants.
func (h *EnrollmentsHandler) HandleApplicants(w http.ResponseWriter, r *http.Request) {
	names, err := h.Enrollments.Applicants(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	httpx.WriteJSON(w, http.StatusOK, names)
}

// HandleVerifyCPF handles POST /v1/enrollments/verify-cpf.
func (h *EnrollmentsHandler) HandleVerifyCPF(w http.ResponseWriter, r *http.Request) {
	var req applicantRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	ok, err := h.Enrollments.VerifyCPF(r.Context(), req.Applicant, req.CPF)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]bool{"valid": ok})
}

// HandleCourses handles POST /v1/enrollments/courses.
func (h *EnrollmentsHandler) HandleCourses(w http.ResponseWriter, r *http.Request) {
	var req applicantRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	courses, err := h.Enrollments.Courses(r.Context(), req.Applicant, req.CPF)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, courses)
}

// HandleEntryInfo handles POST /v1/enrollments/entry-info.
func (h *EnrollmentsHandler) HandleEntryInfo(w http.ResponseWriter, r *http.Request) {
	var req applicantRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	info, err := h.Enrollments.EntryInfo(r.Context(), req.Applicant, req.CPF, req.Course)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, enrollsdk.EntryInfoResponse{
		LanguageScore:  info.LanguageScore,
		EssayScore:     info.EssayScore,
		EntryYear:      info.EntryYear,
		PredictedScore: info.PredictedScore,
		Options:        info.Options,
	})
}

// HandleEnroll handles POST /v1/enrollments.
func (h *EnrollmentsHandler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	var req enrollsdk.EnrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	enrollment, err := h.Enrollments.Enroll(r.Context(), service.EnrollRequest{
		Applicant: req.Applicant,
		CPF:       req.CPF,
		Course:    req.Course,
		Choice:    req.Choice,
		ClassName: req.ClassName,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toEnrollmentResponse(enrollment))
}

// HandleList handles GET /v1/enrollments.
func (h *EnrollmentsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	items, pageInfo, err := h.Enrollments.List(r.Context(), domain.EnrollmentFilter{
		Semester:  q.Get("semester"),
		Course:    q.Get("course"),
		Applicant: q.Get("applicant"),
		ClassName: q.Get("class_name"),
		Choice:    q.Get("choice"),
		Active:    q.Get("active") != "false",
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := enrollsdk.EnrollmentListResponse{
		Enrollments:    make([]enrollsdk.EnrollmentResponse, 0, len(items)),
		TotalDocuments: pageInfo.TotalDocuments,
		TotalPages:     pageInfo.TotalPages,
		CurrentPage:    pageInfo.CurrentPage,
		PageSize:       pageInfo.PageSize,
		HasNextPage:    pageInfo.HasNextPage,
		HasPrevPage:    pageInfo.HasPrevPage,
	}
	for _, e := range items {
		out.Enrollments = append(out.Enrollments, toEnrollmentResponse(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdate handles PATCH /v1/enrollments.
func (h *EnrollmentsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req enrollsdk.UpdateEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	updated, err := h.Enrollments.Update(r.Context(),
		req.Applicant, req.CPF, req.Course, req.Semester,
		req.NewClassName, req.NewSemester, req.NewChoice)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toEnrollmentResponse(updated))
}

// HandleDeactivate handles DELETE /v1/enrollments.
func (h *EnrollmentsHandler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	var req applicantRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}
	semester := r.URL.Query().Get("semester")
	if semester == "" {
		writeBadRequest(w, "semester query parameter is required")
		return
	}

	if err := h.Enrollments.Deactivate(r.Context(), req.Applicant, req.CPF, req.Course, semester); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleImportAdmission handles POST /v1/admissions.
func (h *EnrollmentsHandler) HandleImportAdmission(w http.ResponseWriter, r *http.Request) {
	var req enrollsdk.AdmissionImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON in request body")
		return
	}

	err := h.Enrollments.ImportAdmission(r.Context(),
		req.Applicant, req.CPF, req.Course, req.LanguageScore, req.EssayScore, req.Year)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}
