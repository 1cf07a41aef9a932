package eligibility

import (
	"context"

	"classattend/internal/course"
	"classattend/internal/identity"
)

// EnrollmentLookup answers whether a (student, course) enrollment exists.
type EnrollmentLookup interface {
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
}

// Resolver decides whether a student may interact with a course. Enrollment
// is an override that grants access on its own; a department+year match is
// the standing default for students who never explicitly joined. The
// resolver only reads, never mutates.
type Resolver struct {
	enrollments EnrollmentLookup
}

// NewResolver creates a resolver over an enrollment lookup.
func NewResolver(enrollments EnrollmentLookup) *Resolver {
	return &Resolver{enrollments: enrollments}
}

// IsEligible reports enrolled OR (department match AND year match).
// A student with no department or year on record can only qualify by enrollment.
func (r *Resolver) IsEligible(ctx context.Context, student identity.Identity, c course.Course) (bool, error) {
	enrolled, err := r.enrollments.IsEnrolled(ctx, student.ID, c.ID)
	if err != nil {
		return false, err
	}
	if enrolled {
		return true, nil
	}
	if student.DepartmentID == nil || student.Year == nil {
		return false, nil
	}
	return *student.DepartmentID == c.DepartmentID && *student.Year == c.Year, nil
}

// FilterEligible keeps only the courses the student may interact with.
// Used to answer "which active sessions can I mark attendance for".
func (r *Resolver) FilterEligible(ctx context.Context, student identity.Identity, courses []course.Course) ([]course.Course, error) {
	eligible := make([]course.Course, 0, len(courses))
	for _, c := range courses {
		ok, err := r.IsEligible(ctx, student, c)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, c)
		}
	}
	return eligible, nil
}
