package exchange

import (
	"errors"
	"fmt"
)

// ErrRetryExhausted matches every ExhaustedError via errors.Is.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// ExhaustedError reports an exchange that failed on every attempt.
type ExhaustedError struct {
	Attempts int
	Err      error // failure of the last attempt
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("exchange failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrRetryExhausted, e.Err}
}
