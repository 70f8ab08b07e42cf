package llm

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMissingAPIKey means no API key is configured anywhere.
	ErrMissingAPIKey = errors.New("Gemini API key is not configured. Set it with `investiq settings set-key` or the GEMINI_API_KEY environment variable")

	// ErrEmptyResponse means the provider answered without any candidate text.
	ErrEmptyResponse = errors.New("no response from the model")

	// ErrMaxRetriesReached means every attempt was rate limited.
	ErrMaxRetriesReached = errors.New("max retries reached")
)

// ErrNetwork indicates the request never got an HTTP response.
type ErrNetwork struct {
	Err error
}

func (e *ErrNetwork) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *ErrNetwork) Unwrap() error { return e.Err }

// ErrAPI indicates a non-2xx response other than a rate limit.
type ErrAPI struct {
	Status int
	Body   string
	Err    error
}

func (e *ErrAPI) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error: status %d", e.Status)
	}
	return fmt.Sprintf("API error: status %d: %s", e.Status, e.Body)
}

func (e *ErrAPI) Unwrap() error { return e.Err }

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// classifyStatus maps an HTTP status and body to the error taxonomy.
func classifyStatus(status int, body string, err error) error {
	if status == 429 {
		return &ErrRateLimit{Err: fmt.Errorf("status 429: %s", body)}
	}
	return &ErrAPI{Status: status, Body: body, Err: err}
}

// ErrInvalidResponse indicates the model's text could not be parsed into
// the expected shape.
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }
