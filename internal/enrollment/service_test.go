package enrollment

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"classattend/internal/course"
	"classattend/internal/errs"
	"classattend/internal/identity"
)

type mockStore struct {
	pairs map[[2]string]bool
	adds  int
}

func (m *mockStore) Add(_ context.Context, studentID, courseID string) error {
	key := [2]string{studentID, courseID}
	if !m.pairs[key] {
		m.pairs[key] = true
		m.adds++
	}
	return nil
}

func (m *mockStore) IsEnrolled(_ context.Context, studentID, courseID string) (bool, error) {
	return m.pairs[[2]string{studentID, courseID}], nil
}

type mockCourses struct {
	ids map[string]bool
}

func (m *mockCourses) Get(_ context.Context, id string) (*course.Course, error) {
	if !m.ids[id] {
		return nil, nil
	}
	return &course.Course{ID: id}, nil
}

func TestJoin(t *testing.T) {
	student := identity.Identity{ID: "s1", Role: identity.RoleStudent}
	lecturer := identity.Identity{ID: "l1", Role: identity.RoleLecturer}

	tests := []struct {
		name     string
		actor    identity.Identity
		courseID string
		want     error
	}{
		{"student joins existing course", student, "c1", nil},
		{"lecturer cannot join", lecturer, "c1", errs.ErrForbidden},
		{"missing course", student, "nope", errs.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{pairs: make(map[[2]string]bool)}
			courses := &mockCourses{ids: map[string]bool{"c1": true}}
			svc := NewService(store, courses, zap.NewNop())

			err := svc.Join(context.Background(), tt.actor, tt.courseID)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Join error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestJoinTwiceIsNoOp(t *testing.T) {
	store := &mockStore{pairs: make(map[[2]string]bool)}
	courses := &mockCourses{ids: map[string]bool{"c1": true}}
	svc := NewService(store, courses, zap.NewNop())
	student := identity.Identity{ID: "s1", Role: identity.RoleStudent}

	for i := 0; i < 2; i++ {
		if err := svc.Join(context.Background(), student, "c1"); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}
	if store.adds != 1 {
		t.Fatalf("duplicate join must be ignored, got %d adds", store.adds)
	}
}
