package attendance

import "time"

// Status of an attendance record. The recorder only ever writes present;
// absent exists for reporting layers that backfill missing students.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// Record is one student's presence in one course on one calendar day.
// At most one record exists per (student, course, day).
type Record struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	CourseID  string    `json:"course_id"`
	MarkedAt  time.Time `json:"marked_at"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// DayKey is the local-calendar-day bucket a timestamp falls into,
// formatted YYYY-MM-DD. The day boundary is the server's local midnight.
func DayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
