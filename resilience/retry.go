package resilience

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"time"
)

// Config controls a retry loop.
type Config struct {
	// MaxAttempts counts the first call. Defaults to 3.
	MaxAttempts int
	// InitialBackoff is the wait before the second attempt. Defaults to 100ms.
	InitialBackoff time.Duration
	// MaxBackoff caps every wait. Defaults to 5s.
	MaxBackoff time.Duration
	// Multiplier grows the wait between attempts. Defaults to 2.
	Multiplier float64
	// RetryIf reports whether err is worth another attempt. Defaults to
	// everything except context errors.
	RetryIf func(err error) bool
	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// DefaultConfig returns the settings used for definition reloads.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2,
		RetryIf:        IsTransient,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = d.InitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.Multiplier < 1 {
		c.Multiplier = d.Multiplier
	}
	if c.RetryIf == nil {
		c.RetryIf = d.RetryIf
	}
}

// IsTransient retries every error except cancellation.
func IsTransient(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// IsPathError retries filesystem errors only.
func IsPathError(err error) bool {
	var pe *fs.PathError
	return errors.As(err, &pe)
}

// Retry calls fn until it succeeds, returns a non-retryable error, runs out
// of attempts or ctx is done. The last error from fn is returned.
func Retry(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	cfg.applyDefaults()

	var err error
	for attempt := 1; ; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if err != nil {
				return err
			}
			return ctxErr
		}
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= cfg.MaxAttempts || !cfg.RetryIf(err) {
			return err
		}

		wait := Backoff(cfg, attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// Backoff returns the wait after the given attempt (1-based).
func Backoff(cfg Config, attempt int) time.Duration {
	cfg.applyDefaults()
	wait := float64(cfg.InitialBackoff) * math.Pow(cfg.Multiplier, float64(attempt-1))
	if wait > float64(cfg.MaxBackoff) {
		return cfg.MaxBackoff
	}
	return time.Duration(wait)
}
