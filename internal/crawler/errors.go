package crawler

import (
	"errors"
	"fmt"
)

// ErrElementNotFound is returned when no element on the page matches the selector.
var ErrElementNotFound = errors.New("element not found")

// StatusError is returned when a page answers with a status other than 200.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
}
