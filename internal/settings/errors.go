// FILE: companion/internal/settings/errors.go
package settings

import (
	"errors"
	"fmt"
)

// ErrNoApplication is returned when no "app" token is given and the store has no running application.
var ErrNoApplication = errors.New("no application specified or currently running")

// UsageError reports malformed input. Callers print the usage text alongside it.
type UsageError struct {
	Message string
	Err     error
}

func (e *UsageError) Error() string {
	return e.Message
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// IsUsageError reports whether err (or anything it wraps) is a *UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}
