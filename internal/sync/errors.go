package sync

import (
	"errors"
	"fmt"
)

// ErrCycleInProgress is returned when a cycle is requested while another one runs.
var ErrCycleInProgress = errors.New("sync cycle already in progress")

// InternalGroupError is returned when an app has no internal beta group even
// after trying to create one. It aborts the whole cycle.
type InternalGroupError struct {
	BundleID string
	AppID    string
}

func (e *InternalGroupError) Error() string {
	return fmt.Sprintf("internal beta group for app %s (%s) could not be resolved", e.BundleID, e.AppID)
}

// IsInternalGroupError checks whether an error is an InternalGroupError.
func IsInternalGroupError(err error) bool {
	var target *InternalGroupError
	return errors.As(err, &target)
}

// CredentialsError wraps a failed credential refresh.
type CredentialsError struct {
	Err error
}

func (e *CredentialsError) Error() string {
	return fmt.Sprintf("refreshing credentials: %v", e.Err)
}

func (e *CredentialsError) Unwrap() error {
	return e.Err
}

// PanicError carries a value recovered from a panicking cycle.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}
