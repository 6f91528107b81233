package journey

import (
	"errors"
	"fmt"
)

// UsageError marks an operation invoked in the wrong state — unknown
// thread, answering a finished journey, quizzing an active one. These
// propagate immediately with no retry.
type UsageError struct {
	Op     string
	Reason string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// IsUsageError reports whether err is (or wraps) a UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}
