package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// retryState is a state of the per-call retry machine.
type retryState int

const (
	stateIdle retryState = iota
	stateCalling
	stateRetryWait
	stateSuccess
	stateFailed
)

func (s retryState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateCalling:
		return "calling"
	case stateRetryWait:
		return "retry-wait"
	case stateSuccess:
		return "success"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// retryMachine tracks one logical call through its attempts:
//
//	Idle -> Calling -> Success
//	                -> RetryWait -> Calling
//	                -> Failed
//
// Only rate limits move to RetryWait. Everything else is terminal.
type retryMachine struct {
	cfg     RetryConfig
	state   retryState
	attempt int // attempts started
}

func newRetryMachine(cfg RetryConfig) *retryMachine {
	return &retryMachine{cfg: cfg}
}

// call moves to Calling and counts the attempt.
func (m *retryMachine) call() {
	m.state = stateCalling
	m.attempt++
}

// observe records the outcome of the current attempt. It returns the wait
// before the next attempt when the machine lands in RetryWait, and the
// terminal error when it lands in Failed.
func (m *retryMachine) observe(err error) (time.Duration, error) {
	if err == nil {
		m.state = stateSuccess
		return 0, nil
	}

	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		m.state = stateFailed
		return 0, err
	}

	retries := m.attempt - 1
	if retries >= m.cfg.MaxRetries {
		m.state = stateFailed
		return 0, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesReached, m.attempt, err)
	}
	m.state = stateRetryWait
	return m.cfg.Backoff(retries), nil
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// RetryProvider is a decorator that retries rate-limited calls with
// exponential backoff.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	sleep  Sleeper
}

// WithRetry wraps a Provider with retry logic.
func WithRetry(p Provider, cfg RetryConfig) *RetryProvider {
	return &RetryProvider{inner: p, config: cfg, sleep: sleepContext}
}

// WithSleeper replaces the wait function, mostly so tests need not sleep.
func (r *RetryProvider) WithSleeper(s Sleeper) *RetryProvider {
	r.sleep = s
	return r
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m := newRetryMachine(r.config)
	for {
		m.call()
		resp, err := r.inner.Generate(ctx, req)
		wait, err := m.observe(err)
		switch m.state {
		case stateSuccess:
			return resp, nil
		case stateFailed:
			return nil, err
		}
		if err := r.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// CallWithRetry runs a single request through a RetryProvider built from cfg.
func CallWithRetry(ctx context.Context, p Provider, req Request, cfg RetryConfig) (*Response, error) {
	return WithRetry(p, cfg).Generate(ctx, req)
}
