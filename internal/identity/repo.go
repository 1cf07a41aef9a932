package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"classattend/internal/face"
)

// Repository loads and updates principals in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Get returns a principal by id, or (nil, nil) when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Identity, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, role, name, department_id, year, face_descriptor, created_at
		FROM users WHERE id = $1
	`, id)
	var (
		ident   Identity
		roleTag string
	)
	if err := row.Scan(&ident.ID, &roleTag, &ident.Name, &ident.DepartmentID, &ident.Year, &ident.Descriptor, &ident.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	role, err := ParseRole(roleTag)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id, err)
	}
	ident.Role = role
	return &ident, nil
}

// SetDescriptor registers or replaces a student's face descriptor.
func (r *Repository) SetDescriptor(ctx context.Context, userID string, d face.Descriptor) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET face_descriptor = $2, face_enrolled_at = NOW()
		WHERE id = $1
	`, userID, d)
	if err != nil {
		return fmt.Errorf("set descriptor: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("set descriptor: user %s not found", userID)
	}
	return nil
}

// SaveRefreshToken stores a refresh token for rotation checks.
func (r *Repository) SaveRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (user_id, token, expires_at)
		VALUES ($1, $2, $3)
	`, userID, token, expiresAt)
	return err
}

// RevokeRefreshToken marks a token revoked.
func (r *Repository) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}
