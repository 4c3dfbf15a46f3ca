package resilience

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	var retried []int
	cfg := fastConfig(3)
	cfg.OnRetry = func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) }

	err := Retry(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 || len(retried) != 2 {
		t.Errorf("expected 3 calls and 2 retries, got %d and %v", calls, retried)
	}
}

func TestRetry_StopsAtMaxAttempts(t *testing.T) {
	testErr := errors.New("persistent")
	calls := 0
	err := Retry(context.Background(), fastConfig(4), func(context.Context) error {
		calls++
		return testErr
	})
	if !errors.Is(err, testErr) || calls != 4 {
		t.Errorf("expected testErr after 4 calls, got %v after %d", err, calls)
	}
}

func TestRetry_RetryIf(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yml")
	_, pathErr := os.ReadFile(missing)

	tests := []struct {
		name      string
		err       error
		wantCalls int
	}{
		{"path error retried", fmt.Errorf("reading: %w", pathErr), 3},
		{"build error not retried", errors.New("unknown processor"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fastConfig(3)
			cfg.RetryIf = IsPathError
			calls := 0
			err := Retry(context.Background(), cfg, func(context.Context) error {
				calls++
				return tt.err
			})
			if !errors.Is(err, tt.err) || calls != tt.wantCalls {
				t.Errorf("expected %d calls, got %d (%v)", tt.wantCalls, calls, err)
			}
		})
	}
	if !errors.Is(pathErr, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", pathErr)
	}
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Retry(ctx, fastConfig(3), func(context.Context) error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Errorf("expected cancellation before any call, got %v after %d calls", err, calls)
	}
}

func TestRetry_CancelDuringWaitKeepsLastError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	testErr := errors.New("boom")
	cfg := Config{MaxAttempts: 5, InitialBackoff: time.Hour}
	cfg.OnRetry = func(int, error, time.Duration) { cancel() }

	err := Retry(ctx, cfg, func(context.Context) error { return testErr })
	if !errors.Is(err, testErr) {
		t.Errorf("expected last error, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	if IsTransient(context.Canceled) || IsTransient(fmt.Errorf("x: %w", context.DeadlineExceeded)) {
		t.Error("context errors must not be retried")
	}
	if !IsTransient(errors.New("x")) {
		t.Error("plain errors should be retried")
	}
}

func TestBackoff(t *testing.T) {
	cfg := Config{InitialBackoff: 10 * time.Millisecond, MaxBackoff: 50 * time.Millisecond, Multiplier: 2}
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 10 * time.Millisecond},
		{2, 20 * time.Millisecond},
		{3, 40 * time.Millisecond},
		{4, 50 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := Backoff(cfg, tt.attempt); got != tt.want {
			t.Errorf("attempt %d: expected %v, got %v", tt.attempt, tt.want, got)
		}
	}
}
