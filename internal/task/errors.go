package task

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("task: not found")
	ErrInvalidInput     = errors.New("task: invalid input")
	ErrPermissionDenied = errors.New("task: permission denied")
)

// denied wraps ErrPermissionDenied with the policy reason so handlers can
// match the sentinel while still surfacing the specific denial.
func denied(reason string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, reason)
}
