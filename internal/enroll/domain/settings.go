package domain

import "time"

// Settings is the single-row service configuration: which semester is open
// for enrollment, the enrollment window, and the placement regression
// parameters.
type Settings struct {
	ActiveSemester  string    `json:"active_semester"`
	EnrollmentStart time.Time `json:"enrollment_start"`
	EnrollmentEnd   time.Time `json:"enrollment_end"`

	// Predicted score = Intercept + LanguageWeight*language + EssayWeight*essay.
	Intercept          float64 `json:"intercept"`
	LanguageWeight     float64 `json:"language_weight"`
	EssayWeight        float64 `json:"essay_weight"`
	ExemptionThreshold float64 `json:"exemption_threshold"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
