package appstore

import (
	"errors"
	"fmt"
)

// ErrNoCredentials is returned when a request is issued before the first credential refresh.
var ErrNoCredentials = errors.New("app store connect credentials have not been refreshed")

// MalformedResponseError is returned when a list page keeps failing schema
// validation after the retry budget is exhausted.
type MalformedResponseError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response from %s after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsMalformedResponseError checks whether an error is a MalformedResponseError.
func IsMalformedResponseError(err error) bool {
	var target *MalformedResponseError
	return errors.As(err, &target)
}
