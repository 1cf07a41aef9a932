package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"classattend/internal/course"
	"classattend/internal/errs"
	"classattend/internal/face"
	"classattend/internal/identity"
	"classattend/internal/locnet"
)

// Store is the persistence surface the recorder needs.
type Store interface {
	GetForDay(ctx context.Context, studentID, courseID, day string) (*Record, error)
	Insert(ctx context.Context, rec Record, day string) (Record, error)
	ListByCourse(ctx context.Context, courseID, day string, limit, offset int) ([]Record, error)
}

// CourseStore resolves course ids.
type CourseStore interface {
	Get(ctx context.Context, id string) (*course.Course, error)
}

// Eligibility decides whether a student may interact with a course.
type Eligibility interface {
	IsEligible(ctx context.Context, student identity.Identity, c course.Course) (bool, error)
}

// Recorder is the single entry point for marking attendance. It runs a fixed
// chain of checks; the first failing check determines the reported kind, so
// an unverified student always sees ErrFaceVerificationRequired before any
// session or eligibility detail leaks.
type Recorder struct {
	store       Store
	courses     CourseStore
	matcher     face.Matcher
	eligibility Eligibility
	locations   locnet.Verifier
	locks       *keyedMutex
	log         *zap.Logger
	now         func() time.Time
}

// NewRecorder creates a recorder.
func NewRecorder(store Store, courses CourseStore, matcher face.Matcher, eligibility Eligibility, locations locnet.Verifier, log *zap.Logger) *Recorder {
	return &Recorder{
		store:       store,
		courses:     courses,
		matcher:     matcher,
		eligibility: eligibility,
		locations:   locations,
		locks:       newKeyedMutex(),
		log:         log,
		now:         time.Now,
	}
}

// Mark runs the full verification chain and persists exactly one record on
// success. remoteAddr feeds the network-location check.
func (r *Recorder) Mark(ctx context.Context, actor identity.Identity, courseID string, live face.Descriptor, remoteAddr string) (Record, error) {
	rec, err := r.mark(ctx, actor, courseID, live, remoteAddr)
	if err != nil {
		rejectedTotal.WithLabelValues(errs.Kind(err)).Inc()
		return Record{}, err
	}
	markedTotal.Inc()
	r.log.Info("attendance marked",
		zap.String("record_id", rec.ID),
		zap.String("student_id", rec.StudentID),
		zap.String("course_id", rec.CourseID))
	return rec, nil
}

func (r *Recorder) mark(ctx context.Context, actor identity.Identity, courseID string, live face.Descriptor, remoteAddr string) (Record, error) {
	if actor.Role != identity.RoleStudent {
		return Record{}, errs.ErrForbidden
	}
	if len(actor.Descriptor) == 0 {
		return Record{}, errs.ErrFaceVerificationRequired
	}
	if !r.matcher.Matches(live, actor.Descriptor) {
		return Record{}, errs.ErrVerificationFailed
	}
	if err := r.locations.Verify(ctx, actor.ID, remoteAddr); err != nil {
		return Record{}, err
	}

	c, err := r.courses.Get(ctx, courseID)
	if err != nil {
		return Record{}, err
	}
	if c == nil {
		return Record{}, errs.ErrNotFound
	}
	if !c.Active {
		return Record{}, errs.ErrSessionNotActive
	}

	eligible, err := r.eligibility.IsEligible(ctx, actor, *c)
	if err != nil {
		return Record{}, err
	}
	if !eligible {
		return Record{}, errs.ErrNotEligible
	}

	// Dedup check and insert must be atomic per (student, course, day) so a
	// double-submit yields one record and one ErrAlreadyMarked. The unique
	// index in the store backstops races across service instances.
	now := r.now()
	day := DayKey(now)
	release := r.locks.acquire(actor.ID + "|" + courseID + "|" + day)
	defer release()

	existing, err := r.store.GetForDay(ctx, actor.ID, courseID, day)
	if err != nil {
		return Record{}, err
	}
	if existing != nil {
		return Record{}, errs.ErrAlreadyMarked
	}

	rec := Record{
		ID:        uuid.NewString(),
		StudentID: actor.ID,
		CourseID:  courseID,
		MarkedAt:  now,
		Status:    StatusPresent,
	}
	return r.store.Insert(ctx, rec, day)
}

// ListForCourse returns a course's records for its owning lecturer.
// day is optional (empty means all days).
func (r *Recorder) ListForCourse(ctx context.Context, actor identity.Identity, courseID, day string, limit, offset int) ([]Record, error) {
	c, err := r.courses.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errs.ErrNotFound
	}
	if actor.Role != identity.RoleLecturer || c.LecturerID != actor.ID {
		return nil, errs.ErrForbidden
	}
	return r.store.ListByCourse(ctx, courseID, day, limit, offset)
}
