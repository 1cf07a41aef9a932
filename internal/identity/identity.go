package identity

import (
	"fmt"
	"time"

	"classattend/internal/face"
)

// Role is the closed set of principal roles.
type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a role tag coming from storage or a token.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleLecturer, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Identity is an already-authenticated principal. DepartmentID, Year and
// Descriptor are set for students only; Descriptor is nil until the student
// enrolls a face.
type Identity struct {
	ID           string          `json:"id"`
	Role         Role            `json:"role"`
	Name         *string         `json:"name,omitempty"`
	DepartmentID *int64          `json:"department_id,omitempty"`
	Year         *int            `json:"year,omitempty"`
	Descriptor   face.Descriptor `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
}
