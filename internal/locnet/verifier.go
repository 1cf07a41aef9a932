package locnet

import "context"

// Verifier checks that an attendance request originates from an acceptable
// network location. The production check lives outside this service; the
// deployment here runs with the pass-through implementation.
type Verifier interface {
	Verify(ctx context.Context, studentID, remoteAddr string) error
}

// AllowAll accepts every request.
type AllowAll struct{}

// Verify always passes.
func (AllowAll) Verify(ctx context.Context, studentID, remoteAddr string) error {
	return nil
}
