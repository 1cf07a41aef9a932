package errs

import "errors"

// Sentinel failure kinds surfaced by the attendance core. Callers match with
// errors.Is; the HTTP layer maps each kind to a status code.
var (
	// ErrForbidden means the actor's role or ownership does not permit the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means the referenced course or resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrFaceVerificationRequired means the student has no registered face
	// descriptor yet. Recoverable by enrolling a face.
	ErrFaceVerificationRequired = errors.New("face verification required")
	// ErrVerificationFailed means the live descriptor did not match the
	// registered one. Recoverable by retrying the capture.
	ErrVerificationFailed = errors.New("face verification failed")
	// ErrSessionNotActive means the course is not currently accepting attendance.
	ErrSessionNotActive = errors.New("session not active")
	// ErrNotEligible means neither enrollment nor department/year qualify the student.
	ErrNotEligible = errors.New("not eligible for course")
	// ErrAlreadyMarked means attendance for this student, course and day already exists.
	ErrAlreadyMarked = errors.New("attendance already marked today")
)

// Kind returns a stable label for a failure, for metrics and logs.
// Unrecognized errors are labelled "internal".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrFaceVerificationRequired):
		return "face_verification_required"
	case errors.Is(err, ErrVerificationFailed):
		return "verification_failed"
	case errors.Is(err, ErrSessionNotActive):
		return "session_not_active"
	case errors.Is(err, ErrNotEligible):
		return "not_eligible"
	case errors.Is(err, ErrAlreadyMarked):
		return "already_marked"
	default:
		return "internal"
	}
}
