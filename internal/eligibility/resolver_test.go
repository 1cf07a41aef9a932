package eligibility

import (
	"context"
	"testing"

	"classattend/internal/course"
	"classattend/internal/identity"
)

type mockEnrollments struct {
	pairs map[[2]string]bool
}

func (m *mockEnrollments) IsEnrolled(_ context.Context, studentID, courseID string) (bool, error) {
	return m.pairs[[2]string{studentID, courseID}], nil
}

func ptrInt64(v int64) *int64 { return &v }
func ptrInt(v int) *int       { return &v }

func TestIsEligible(t *testing.T) {
	enrollments := &mockEnrollments{pairs: map[[2]string]bool{
		{"s1", "courseA"}: true,
	}}
	r := NewResolver(enrollments)

	courseA := course.Course{ID: "courseA", DepartmentID: 9, Year: 4}
	courseB := course.Course{ID: "courseB", DepartmentID: 5, Year: 2}

	tests := []struct {
		name    string
		student identity.Identity
		course  course.Course
		want    bool
	}{
		{
			name:    "enrolled overrides mismatched department and year",
			student: identity.Identity{ID: "s1", DepartmentID: ptrInt64(1), Year: ptrInt(1)},
			course:  courseA,
			want:    true,
		},
		{
			name:    "same student not eligible for unrelated course",
			student: identity.Identity{ID: "s1", DepartmentID: ptrInt64(1), Year: ptrInt(1)},
			course:  courseB,
			want:    false,
		},
		{
			name:    "department and year match without enrollment",
			student: identity.Identity{ID: "s2", DepartmentID: ptrInt64(5), Year: ptrInt(2)},
			course:  courseB,
			want:    true,
		},
		{
			name:    "department matches but year does not",
			student: identity.Identity{ID: "s3", DepartmentID: ptrInt64(5), Year: ptrInt(3)},
			course:  courseB,
			want:    false,
		},
		{
			name:    "year matches but department does not",
			student: identity.Identity{ID: "s4", DepartmentID: ptrInt64(6), Year: ptrInt(2)},
			course:  courseB,
			want:    false,
		},
		{
			name:    "nil department can only qualify by enrollment",
			student: identity.Identity{ID: "s5", Year: ptrInt(2)},
			course:  courseB,
			want:    false,
		},
		{
			name:    "nil year can only qualify by enrollment",
			student: identity.Identity{ID: "s6", DepartmentID: ptrInt64(5)},
			course:  courseB,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.IsEligible(context.Background(), tt.student, tt.course)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsEligible = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterEligible(t *testing.T) {
	enrollments := &mockEnrollments{pairs: map[[2]string]bool{
		{"s1", "a"}: true,
	}}
	r := NewResolver(enrollments)

	student := identity.Identity{ID: "s1", DepartmentID: ptrInt64(5), Year: ptrInt(2)}
	courses := []course.Course{
		{ID: "a", DepartmentID: 9, Year: 4}, // enrolled
		{ID: "b", DepartmentID: 5, Year: 2}, // dept/year match
		{ID: "c", DepartmentID: 9, Year: 4}, // neither
	}

	eligible, err := r.FilterEligible(context.Background(), student, courses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eligible) != 2 {
		t.Fatalf("got %d eligible courses, want 2", len(eligible))
	}
	if eligible[0].ID != "a" || eligible[1].ID != "b" {
		t.Fatalf("unexpected courses: %v", eligible)
	}
}
