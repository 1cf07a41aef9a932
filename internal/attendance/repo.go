package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"classattend/internal/errs"
)

const uniqueViolation = "23505"

// Repository persists attendance records in Postgres. The attendance_records
// table carries a unique index on (student_id, course_id, marked_on) that
// backs the once-per-day guarantee even if several service instances race.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const recordColumns = `id, student_id, course_id, marked_at, status, created_at`

// GetForDay returns the record for (student, course, day), or (nil, nil)
// when none exists. day is a YYYY-MM-DD key from DayKey.
func (r *Repository) GetForDay(ctx context.Context, studentID, courseID, day string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE student_id = $1 AND course_id = $2 AND marked_on = $3::date
	`, studentID, courseID, day)
	var rec Record
	if err := row.Scan(&rec.ID, &rec.StudentID, &rec.CourseID, &rec.MarkedAt, &rec.Status, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance for day: %w", err)
	}
	return &rec, nil
}

// Insert writes a new record into the given day bucket. A concurrent
// duplicate surfaces as ErrAlreadyMarked via the unique index.
func (r *Repository) Insert(ctx context.Context, rec Record, day string) (Record, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, student_id, course_id, marked_at, marked_on, status)
		VALUES ($1, $2, $3, $4, $5::date, $6)
		RETURNING created_at
	`, rec.ID, rec.StudentID, rec.CourseID, rec.MarkedAt, day, rec.Status)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Record{}, errs.ErrAlreadyMarked
		}
		return Record{}, fmt.Errorf("insert attendance: %w", err)
	}
	return rec, nil
}

// ListByCourse returns records for a course, optionally narrowed to one day,
// newest first.
func (r *Repository) ListByCourse(ctx context.Context, courseID, day string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + recordColumns + ` FROM attendance_records`
	args := []any{}
	clauses := []string{}
	if courseID != "" {
		args = append(args, courseID)
		clauses = append(clauses, fmt.Sprintf("course_id = $%d", len(args)))
	}
	if day != "" {
		args = append(args, day)
		clauses = append(clauses, fmt.Sprintf("marked_on = $%d::date", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY marked_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()
	var res []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.StudentID, &rec.CourseID, &rec.MarkedAt, &rec.Status, &rec.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
