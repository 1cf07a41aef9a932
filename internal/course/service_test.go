package course

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"classattend/internal/errs"
	"classattend/internal/identity"
)

type mockStore struct {
	courses map[string]*Course
}

func newMockStore(courses ...Course) *mockStore {
	m := &mockStore{courses: make(map[string]*Course)}
	for i := range courses {
		c := courses[i]
		m.courses[c.ID] = &c
	}
	return m
}

func (m *mockStore) Get(_ context.Context, id string) (*Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *mockStore) SetStatus(_ context.Context, id string, active bool, activatedAt *time.Time) (Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return Course{}, errors.New("missing course")
	}
	c.Active = active
	c.ActivatedAt = activatedAt
	return *c, nil
}

func (m *mockStore) ListActive(_ context.Context) ([]Course, error) {
	var res []Course
	for _, c := range m.courses {
		if c.Active {
			res = append(res, *c)
		}
	}
	return res, nil
}

var (
	owner    = identity.Identity{ID: "lect-1", Role: identity.RoleLecturer}
	intruder = identity.Identity{ID: "lect-2", Role: identity.RoleLecturer}
	student  = identity.Identity{ID: "stud-1", Role: identity.RoleStudent}
)

func testCourse() Course {
	return Course{ID: "c1", Name: "Databases", LecturerID: "lect-1", DepartmentID: 5, Year: 2}
}

func TestActivateByOwner(t *testing.T) {
	store := newMockStore(testCourse())
	svc := NewService(store, zap.NewNop())

	updated, err := svc.Activate(context.Background(), owner, "c1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !updated.Active {
		t.Fatal("course must be active after activation")
	}
	if updated.ActivatedAt == nil {
		t.Fatal("activatedAt must be set on activation")
	}
}

func TestDeactivateClearsTimestamp(t *testing.T) {
	store := newMockStore(testCourse())
	svc := NewService(store, zap.NewNop())

	if _, err := svc.Activate(context.Background(), owner, "c1"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	updated, err := svc.Deactivate(context.Background(), owner, "c1")
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if updated.Active {
		t.Fatal("course must be inactive after deactivation")
	}
	if updated.ActivatedAt != nil {
		t.Fatal("activatedAt must be cleared on deactivation")
	}
}

func TestSessionOscillation(t *testing.T) {
	store := newMockStore(testCourse())
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	// the state machine has no terminal state
	for i := 0; i < 3; i++ {
		c, err := svc.Activate(ctx, owner, "c1")
		if err != nil {
			t.Fatalf("activate round %d: %v", i, err)
		}
		if !c.Active || c.ActivatedAt == nil {
			t.Fatalf("round %d: activatedAt must be non-nil exactly when active", i)
		}
		c, err = svc.Deactivate(ctx, owner, "c1")
		if err != nil {
			t.Fatalf("deactivate round %d: %v", i, err)
		}
		if c.Active || c.ActivatedAt != nil {
			t.Fatalf("round %d: activatedAt must be nil when inactive", i)
		}
	}
}

func TestTransitionAuthorization(t *testing.T) {
	tests := []struct {
		name  string
		actor identity.Identity
		id    string
		want  error
	}{
		{"non-owner lecturer", intruder, "c1", errs.ErrForbidden},
		{"student", student, "c1", errs.ErrForbidden},
		{"missing course", owner, "nope", errs.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMockStore(testCourse()), zap.NewNop())
			if _, err := svc.Activate(context.Background(), tt.actor, tt.id); !errors.Is(err, tt.want) {
				t.Errorf("Activate error = %v, want %v", err, tt.want)
			}
			if _, err := svc.Deactivate(context.Background(), tt.actor, tt.id); !errors.Is(err, tt.want) {
				t.Errorf("Deactivate error = %v, want %v", err, tt.want)
			}
		})
	}
}
