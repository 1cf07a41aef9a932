package enrollment

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository persists student-course enrollments in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Add records that a student joined a course. A duplicate join is ignored.
func (r *Repository) Add(ctx context.Context, studentID, courseID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (student_id, course_id)
		VALUES ($1, $2)
		ON CONFLICT (student_id, course_id) DO NOTHING
	`, studentID, courseID)
	if err != nil {
		return fmt.Errorf("add enrollment: %w", err)
	}
	return nil
}

// IsEnrolled reports whether the (student, course) pair exists.
func (r *Repository) IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2
		)
	`, studentID, courseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return exists, nil
}
