package backend

import (
	"errors"
	"fmt"
)

// ErrNetwork is returned when a request could not complete at the
// transport level. The triggering operation's state is preserved so
// the user can retry.
var ErrNetwork = errors.New("network failure")

// APIError is a non-success response from the backend. Message is the
// backend's user-facing text and is surfaced verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// UserMessage returns the text to show the monitor for err: the
// backend's own message for API errors, a generic retry prompt for
// everything else.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
