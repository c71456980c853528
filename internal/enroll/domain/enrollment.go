package domain

import "time"

// Placement choices offered to an applicant based on their predicted score.
const (
	ChoiceEnroll    = "enroll"
	ChoiceExemption = "exemption"
)

// Admission is a historical entry-exam record imported from the admission
// system. CPFDigits holds only digits 4-9 of the applicant's CPF, so the
// full document number is never stored.
type Admission struct {
	ID            string
	Applicant     string
	CPFDigits     string
	Course        string
	LanguageScore float64
	EssayScore    float64
	Year          int
}

// EntryInfo is the derived placement picture for one applicant and course.
type EntryInfo struct {
	LanguageScore  float64  `json:"language_score"`
	EssayScore     float64  `json:"essay_score"`
	EntryYear      int      `json:"entry_year"`
	PredictedScore float64  `json:"predicted_score"`
	Options        []string `json:"options"`
}

// Enrollment binds an applicant to a class section for one semester.
// Deactivation is soft: the record stays for auditing.
type Enrollment struct {
	ID        string
	Applicant string
	CPFDigits string
	Course    string
	Choice    string
	ClassName string
	Semester  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EnrollmentFilter narrows enrollment listings.
type EnrollmentFilter struct {
	Semester  string
	Course    string
	Applicant string
	ClassName string
	Choice    string
	Active    bool

	Page     int
	PageSize int
}

// Page carries one page of results plus pagination bookkeeping.
type Page struct {
	TotalDocuments int  `json:"total_documents"`
	TotalPages     int  `json:"total_pages"`
	CurrentPage    int  `json:"current_page"`
	PageSize       int  `json:"page_size"`
	HasNextPage    bool `json:"has_next_page"`
	HasPrevPage    bool `json:"has_prev_page"`
}
