package course

import "time"

// Course is a lecturer-owned unit students mark attendance against.
// Active and ActivatedAt together form the session state: ActivatedAt is
// non-nil exactly when Active is true.
type Course struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	LecturerID   string     `json:"lecturer_id"`
	DepartmentID int64      `json:"department_id"`
	Year         int        `json:"year"`
	Active       bool       `json:"active"`
	ActivatedAt  *time.Time `json:"activated_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
