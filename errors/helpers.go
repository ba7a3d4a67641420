package errors

import stderrors "errors"

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// IsRetryable reports whether a failed remote call may succeed on a new attempt.
// Malformed answers and configuration problems are permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !Is(err, ErrMalformedResponse) && !Is(err, ErrNotConfigured)
}
