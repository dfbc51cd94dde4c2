package mutate

import "fmt"

// Missing references (job/track/clip ids that no longer resolve) are treated
// as stale-state signals: the action becomes a no-op returning unchanged
// state, never an error. Only genuine rule violations produce errors.

// CompatibilityError is a hard user-facing refusal: unit/dataType mismatch,
// an occupied role slot, a tenant mismatch. The operation is a no-op and the
// caller is expected to surface the message as a blocking notice.
type CompatibilityError struct {
	Reason string
}

func (e CompatibilityError) Error() string {
	return "incompatible: " + e.Reason
}

func incompatible(format string, args ...any) error {
	return CompatibilityError{Reason: fmt.Sprintf(format, args...)}
}
