package perantara

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidHandlerID is returned by Manager.Eject when the id was never
// issued by Use on that manager.
var ErrInvalidHandlerID = errors.New("perantara: invalid handler id")

// TransportError reports a failed terminal dispatch. The platform's failure
// payload is preserved unchanged in Cause; the pipeline never modifies it
// while propagating the error through rejection handlers.
type TransportError struct {
	Message   string
	Cause     error
	Method    string
	URL       string
	RequestID string
	Timestamp time.Time
	Duration  time.Duration
}

// Error implements error interface.
func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("transport: %s", e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.RequestID != "" {
		msg = fmt.Sprintf("[%s] %s", e.RequestID, msg)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports a match against any other *TransportError for errors.Is.
func (e *TransportError) Is(target error) bool {
	if e == nil {
		return false
	}
	_, ok := target.(*TransportError)
	return ok
}

// DebugInfo renders a multi-line string with diagnostic context.
func (e *TransportError) DebugInfo() string {
	if e == nil {
		return "Error: <nil>"
	}
	info := fmt.Sprintf("Message: %s\n", e.Message)
	if e.RequestID != "" {
		info += fmt.Sprintf("Request ID: %s\n", e.RequestID)
	}
	if e.Method != "" {
		info += fmt.Sprintf("Method: %s\n", e.Method)
	}
	if e.URL != "" {
		info += fmt.Sprintf("URL: %s\n", e.URL)
	}
	if !e.Timestamp.IsZero() {
		info += fmt.Sprintf("Timestamp: %s\n", e.Timestamp.Format(time.RFC3339))
	}
	if e.Duration > 0 {
		info += fmt.Sprintf("Duration: %v\n", e.Duration)
	}
	if e.Cause != nil {
		info += fmt.Sprintf("Cause: %v\n", e.Cause)
	}
	return info
}

// IsTransportError reports whether err is (or wraps) a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
