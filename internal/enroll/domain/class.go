package domain

import "time"

// Class is a course section offered during one semester.
type Class struct {
	ID        string
	Name      string
	Semester  string // XXXX.Y, e.g. "2025.1"
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
