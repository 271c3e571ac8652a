package domain

import (
	"errors"
	"fmt"
)

// DefaultFailureMessage is shown to the user when the upstream gave no reason.
const DefaultFailureMessage = "Failed to fetch weather"

// UpstreamError describes a failed call to the weather provider: either a
// transport failure (Err set, StatusCode zero) or a non-2xx response.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Message    string // provider "message" field, when the body carried one
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: upstream status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: upstream status %d", e.Endpoint, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	default:
		return e.Endpoint + ": upstream error"
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// UserMessage returns the text to show for a failed single-city lookup: the
// provider's own message when available, otherwise DefaultFailureMessage.
func UserMessage(err error) string {
	var upErr *UpstreamError
	if errors.As(err, &upErr) && upErr.Message != "" {
		return upErr.Message
	}
	return DefaultFailureMessage
}
