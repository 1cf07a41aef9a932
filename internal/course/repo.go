package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository persists courses in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const courseColumns = `id, name, lecturer_id, department_id, year, active, activated_at, created_at`

func scanCourse(row interface{ Scan(...any) error }) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.Name, &c.LecturerID, &c.DepartmentID, &c.Year, &c.Active, &c.ActivatedAt, &c.CreatedAt)
	return c, err
}

// Get returns a course by id, or (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Course, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
	c, err := scanCourse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &c, nil
}

// SetStatus flips the session flag atomically and returns the updated course.
// Last write wins for concurrent toggles by the owner.
func (r *Repository) SetStatus(ctx context.Context, id string, active bool, activatedAt *time.Time) (Course, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE courses
		SET active = $2, activated_at = $3
		WHERE id = $1
		RETURNING `+courseColumns+`
	`, id, active, activatedAt)
	c, err := scanCourse(row)
	if err != nil {
		return Course{}, fmt.Errorf("set course status: %w", err)
	}
	return c, nil
}

// ListActive returns every course currently accepting attendance.
func (r *Repository) ListActive(ctx context.Context) ([]Course, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+courseColumns+` FROM courses WHERE active ORDER BY activated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	defer rows.Close()
	var res []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}
