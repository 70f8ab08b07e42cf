package aigen

import "fmt"

// ErrMalformedResponse means the model's text could not be turned into the
// expected JSON value.
type ErrMalformedResponse struct {
	Task    string // "questions" or "weakness"
	Content string // The cleaned text that failed to parse
	Err     error
}

func (e *ErrMalformedResponse) Error() string {
	return fmt.Sprintf("failed to parse %s response as JSON: %v", e.Task, e.Err)
}

func (e *ErrMalformedResponse) Unwrap() error { return e.Err }
