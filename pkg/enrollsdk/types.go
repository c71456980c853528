// Package enrollsdk holds the wire types of the enrollment service API and
// a small Go client for them. Handlers and consumers share these structs so
// the two sides cannot drift apart.
package enrollsdk

import "time"

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// LoginRequest authenticates a user by name and password. OTPCode is
// required only for users with TOTP enrolled.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	OTPCode  string `json:"otp_code,omitempty"`
}

// TokenResponse carries the short-lived authorization token. The session
// token travels only in the HTTP-only cookie, never in a body.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// SetupRequest bootstraps the first administrator account.
type SetupRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RegisterRequest creates a user account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
	Admin    bool   `json:"admin"`
	WithOTP  bool   `json:"with_otp"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Admin     bool      `json:"admin"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RegisterResponse returns the created user plus, when OTP was requested,
// the one-time otpauth:// provisioning URI.
type RegisterResponse struct {
	User            UserResponse `json:"user"`
	ProvisioningURI string       `json:"provisioning_uri,omitempty"`
}

// UpdateUserRequest renames a user.
type UpdateUserRequest struct {
	Name string `json:"name"`
}

// UpdatePasswordRequest rotates a user's password.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// SetFlagRequest flips a boolean user flag.
type SetFlagRequest struct {
	Value bool `json:"value"`
}

// ClassRequest creates or updates a class section.
type ClassRequest struct {
	Name     string `json:"name"`
	Semester string `json:"semester"`
}

// ClassResponse is the public view of a class section.
type ClassResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Semester  string    `json:"semester"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AdmissionImportRequest records one historical entry-exam result.
type AdmissionImportRequest struct {
	Applicant     string  `json:"applicant"`
	CPF           string  `json:"cpf"`
	Course        string  `json:"course"`
	LanguageScore float64 `json:"language_score"`
	EssayScore    float64 `json:"essay_score"`
	Year          int     `json:"year"`
}

// EnrollRequest submits an enrollment during the open window.
type EnrollRequest struct {
	Applicant string `json:"applicant"`
	CPF       string `json:"cpf"`
	Course    string `json:"course"`
	Choice    string `json:"choice"`
	ClassName string `json:"class_name,omitempty"`
}

// EnrollmentResponse is the public view of an enrollment.
type EnrollmentResponse struct {
	ID        string    `json:"id"`
	Applicant string    `json:"applicant"`
	Course    string    `json:"course"`
	Choice    string    `json:"choice"`
	ClassName string    `json:"class_name,omitempty"`
	Semester  string    `json:"semester"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnrollmentListResponse is one page of enrollments.
type EnrollmentListResponse struct {
	Enrollments    []EnrollmentResponse `json:"enrollments"`
	TotalDocuments int                  `json:"total_documents"`
	TotalPages     int                  `json:"total_pages"`
	CurrentPage    int                  `json:"current_page"`
	PageSize       int                  `json:"page_size"`
	HasNextPage    bool                 `json:"has_next_page"`
	HasPrevPage    bool                 `json:"has_prev_page"`
}

// UpdateEnrollmentRequest moves an enrollment to another class, semester or
// choice. The identifying fields say which enrollment.
type UpdateEnrollmentRequest struct {
	Applicant string `json:"applicant"`
	CPF       string `json:"cpf"`
	Course    string `json:"course"`
	Semester  string `json:"semester"`

	NewClassName string `json:"new_class_name,omitempty"`
	NewSemester  string `json:"new_semester"`
	NewChoice    string `json:"new_choice"`
}

// EntryInfoResponse is the derived placement picture for an applicant.
type EntryInfoResponse struct {
	LanguageScore  float64  `json:"language_score"`
	EssayScore     float64  `json:"essay_score"`
	EntryYear      int      `json:"entry_year"`
	PredictedScore float64  `json:"predicted_score"`
	Options        []string `json:"options"`
}

// SettingsRequest replaces the service configuration.
type SettingsRequest struct {
	ActiveSemester     string    `json:"active_semester"`
	EnrollmentStart    time.Time `json:"enrollment_start"`
	EnrollmentEnd      time.Time `json:"enrollment_end"`
	Intercept          float64   `json:"intercept"`
	LanguageWeight     float64   `json:"language_weight"`
	EssayWeight        float64   `json:"essay_weight"`
	ExemptionThreshold float64   `json:"exemption_threshold"`
}

// SettingsResponse is the current service configuration.
type SettingsResponse struct {
	SettingsRequest
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthChecks reports per-dependency health in readiness probes.
type HealthChecks struct {
	Database   string `json:"database,omitempty"`
	Revocation string `json:"revocation,omitempty"`
}

// HealthResponse is the body of /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
