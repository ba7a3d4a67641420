package errors

import "fmt"

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrTransport          = fmt.Errorf("transport failure")
	ErrMalformedResponse  = fmt.Errorf("malformed response")
	ErrNotConfigured      = fmt.Errorf("not configured")
	ErrStore              = fmt.Errorf("store failure")
	ErrEmptyText          = fmt.Errorf("text is empty")
	ErrSubscriptionClosed = fmt.Errorf("subscription closed")
	ErrUnknownProvider    = fmt.Errorf("unknown generative provider")
	ErrUnknownWebhookKind = fmt.Errorf("unknown support webhook kind")
)

// TransportError is returned when the remote endpoint could not be reached
// or answered with a non-success status.
type TransportError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport failure: %v", e.Cause)
	}
	return fmt.Sprintf("transport failure: status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ExhaustedError is the terminal failure of a retried call.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}
