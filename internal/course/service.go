package course

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"classattend/internal/errs"
	"classattend/internal/identity"
)

var sessionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "classattend_session_toggles_total",
	Help: "Course session activations and deactivations.",
}, []string{"transition"})

// Store is the persistence surface the session service needs.
type Store interface {
	Get(ctx context.Context, id string) (*Course, error)
	SetStatus(ctx context.Context, id string, active bool, activatedAt *time.Time) (Course, error)
	ListActive(ctx context.Context) ([]Course, error)
}

// Service drives the course session state machine. A course oscillates
// between inactive and active for its whole lifetime; only the owning
// lecturer may flip it, and sessions never expire on their own.
type Service struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

// NewService creates a session service.
func NewService(store Store, log *zap.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Activate opens the course for attendance. Only the owning lecturer may call it.
func (s *Service) Activate(ctx context.Context, actor identity.Identity, courseID string) (Course, error) {
	c, err := s.authorize(ctx, actor, courseID)
	if err != nil {
		return Course{}, err
	}
	now := s.now()
	updated, err := s.store.SetStatus(ctx, c.ID, true, &now)
	if err != nil {
		return Course{}, err
	}
	sessionToggles.WithLabelValues("activate").Inc()
	s.log.Info("session activated",
		zap.String("course_id", c.ID),
		zap.String("lecturer_id", actor.ID))
	return updated, nil
}

// Deactivate closes the course. Only the owning lecturer may call it.
func (s *Service) Deactivate(ctx context.Context, actor identity.Identity, courseID string) (Course, error) {
	c, err := s.authorize(ctx, actor, courseID)
	if err != nil {
		return Course{}, err
	}
	updated, err := s.store.SetStatus(ctx, c.ID, false, nil)
	if err != nil {
		return Course{}, err
	}
	sessionToggles.WithLabelValues("deactivate").Inc()
	s.log.Info("session deactivated",
		zap.String("course_id", c.ID),
		zap.String("lecturer_id", actor.ID))
	return updated, nil
}

// Get returns a single course.
func (s *Service) Get(ctx context.Context, id string) (*Course, error) {
	return s.store.Get(ctx, id)
}

// ListActive returns every course with an open session.
func (s *Service) ListActive(ctx context.Context) ([]Course, error) {
	return s.store.ListActive(ctx)
}

func (s *Service) authorize(ctx context.Context, actor identity.Identity, courseID string) (*Course, error) {
	c, err := s.store.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errs.ErrNotFound
	}
	if actor.Role != identity.RoleLecturer || c.LecturerID != actor.ID {
		return nil, errs.ErrForbidden
	}
	return c, nil
}
