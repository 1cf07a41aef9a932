package enrollment

import (
	"context"

	"go.uber.org/zap"

	"classattend/internal/course"
	"classattend/internal/errs"
	"classattend/internal/identity"
)

// Store is the persistence surface the join flow needs.
type Store interface {
	Add(ctx context.Context, studentID, courseID string) error
	IsEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
}

// CourseGetter resolves course ids.
type CourseGetter interface {
	Get(ctx context.Context, id string) (*course.Course, error)
}

// Service handles explicit course joins.
type Service struct {
	store   Store
	courses CourseGetter
	log     *zap.Logger
}

// NewService creates a join service.
func NewService(store Store, courses CourseGetter, log *zap.Logger) *Service {
	return &Service{store: store, courses: courses, log: log}
}

// Join enrolls the acting student into a course. Joining twice is a no-op.
func (s *Service) Join(ctx context.Context, actor identity.Identity, courseID string) error {
	if actor.Role != identity.RoleStudent {
		return errs.ErrForbidden
	}
	c, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return err
	}
	if c == nil {
		return errs.ErrNotFound
	}
	if err := s.store.Add(ctx, actor.ID, courseID); err != nil {
		return err
	}
	s.log.Info("student joined course",
		zap.String("student_id", actor.ID),
		zap.String("course_id", courseID))
	return nil
}
