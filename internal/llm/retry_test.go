package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:  3,
		InitialWait: 1 * time.Second,
		Multiplier:  2.0,
	}
}

// recordSleeps returns a Sleeper that records requested waits without
// sleeping.
func recordSleeps(waits *[]time.Duration) Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
}

func rateLimited() MockResponse {
	return MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}}
}

func TestBackoff_Schedule(t *testing.T) {
	cfg := testRetryConfig()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for n, w := range want {
		if got := cfg.Backoff(n); got != w {
			t.Errorf("Backoff(%d) = %s, want %s", n, got, w)
		}
	}

	cfg.MaxWait = 3 * time.Second
	if got := cfg.Backoff(2); got != 3*time.Second {
		t.Errorf("capped Backoff(2) = %s, want 3s", got)
	}
}

func TestRetryMachine_Transitions(t *testing.T) {
	m := newRetryMachine(testRetryConfig())
	if m.state != stateIdle {
		t.Fatalf("initial state = %s", m.state)
	}

	m.call()
	wait, err := m.observe(&ErrRateLimit{})
	if m.state != stateRetryWait || wait != time.Second || err != nil {
		t.Fatalf("after first 429: %s %s %v", m.state, wait, err)
	}

	m.call()
	if _, err := m.observe(nil); err != nil || m.state != stateSuccess {
		t.Fatalf("after success: %s %v", m.state, err)
	}
	if m.attempt != 2 {
		t.Errorf("attempt = %d, want 2", m.attempt)
	}
}

func TestRetryMachine_NonRetryable(t *testing.T) {
	for _, err := range []error{
		&ErrNetwork{Err: errors.New("dial tcp: refused")},
		&ErrAPI{Status: 500, Body: "boom"},
		&ErrAPI{Status: 400, Body: "bad request"},
		ErrEmptyResponse,
	} {
		m := newRetryMachine(testRetryConfig())
		m.call()
		_, got := m.observe(err)
		if m.state != stateFailed || got != err {
			t.Errorf("observe(%v) = %s %v, want failed with same error", err, m.state, got)
		}
	}
}

func TestRetry_429Then200(t *testing.T) {
	mock := NewMockProvider(rateLimited(), MockResponse{Text: "ok"})
	var waits []time.Duration
	p := WithRetry(mock, testRetryConfig()).WithSleeper(recordSleeps(&waits))

	resp, err := p.Generate(context.Background(), Prompt("hi"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "ok" {
		t.Errorf("text = %q", resp.Text)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
	if len(waits) != 1 || waits[0] != time.Second {
		t.Errorf("waits = %v, want [1s]", waits)
	}
}

func TestRetry_Four429s(t *testing.T) {
	mock := NewMockProvider(rateLimited(), rateLimited(), rateLimited(), rateLimited(), MockResponse{Text: "never"})
	var waits []time.Duration
	p := WithRetry(mock, testRetryConfig()).WithSleeper(recordSleeps(&waits))

	_, err := p.Generate(context.Background(), Prompt("hi"))
	if !errors.Is(err, ErrMaxRetriesReached) {
		t.Fatalf("err = %v, want ErrMaxRetriesReached", err)
	}
	if mock.CallCount() != 4 {
		t.Errorf("calls = %d, want 4", mock.CallCount())
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if len(waits) != len(want) {
		t.Fatalf("waits = %v, want %v", waits, want)
	}
	for i := range want {
		if waits[i] != want[i] {
			t.Errorf("wait[%d] = %s, want %s", i, waits[i], want[i])
		}
	}
}

func TestRetry_NetworkErrorNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrNetwork{Err: errors.New("connection reset")}},
		MockResponse{Text: "ok"},
	)
	p := WithRetry(mock, testRetryConfig()).WithSleeper(recordSleeps(new([]time.Duration)))

	_, err := p.Generate(context.Background(), Prompt("hi"))
	var netErr *ErrNetwork
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *ErrNetwork", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_APIErrorNotRetried(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrAPI{Status: 503, Body: "unavailable"}},
		MockResponse{Text: "ok"},
	)
	p := WithRetry(mock, testRetryConfig()).WithSleeper(recordSleeps(new([]time.Duration)))

	_, err := p.Generate(context.Background(), Prompt("hi"))
	var apiErr *ErrAPI
	if !errors.As(err, &apiErr) || apiErr.Status != 503 {
		t.Fatalf("err = %v, want *ErrAPI 503", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_ContextCancelledDuringWait(t *testing.T) {
	mock := NewMockProvider(rateLimited(), MockResponse{Text: "ok"})
	ctx, cancel := context.WithCancel(context.Background())
	p := WithRetry(mock, testRetryConfig()).WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return sleepContext(ctx, d)
	})

	_, err := p.Generate(ctx, Prompt("hi"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_ZeroRetries(t *testing.T) {
	mock := NewMockProvider(rateLimited())
	cfg := testRetryConfig()
	cfg.MaxRetries = 0

	_, err := CallWithRetry(context.Background(), mock, Prompt("hi"), cfg)
	if !errors.Is(err, ErrMaxRetriesReached) {
		t.Fatalf("err = %v, want ErrMaxRetriesReached", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}
