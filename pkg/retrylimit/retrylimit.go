// Package retrylimit provides an adaptive rate limiter and a retry loop with
// exponential backoff for flaky upstream lookups.
//
// Example usage:
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	cfg := retrylimit.DefaultConfig()
//	cfg.MaxAttempts = 3
//
//	err := retrylimit.Do(ctx, cfg, lim, func(ctx context.Context) error {
//	    return doSomeWork(ctx)
//	})
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a rate limit that rises while requests succeed and drops
// when upstream pushes back.
type AdaptiveLimiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	cooldown  time.Duration
	lastError time.Time
}

// NewAdaptiveLimiter starts at initial requests per second, stays within
// [min, max], adds stepUp after a success and multiplies by stepDown after
// a failure.
func NewAdaptiveLimiter(initial, min, max rate.Limit, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < 1 {
		initial = 1
	}
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, max1(int(initial))),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
		cooldown: 10 * time.Second,
	}
}

// Wait blocks until a token is available or ctx ends.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the rate unless a failure was seen recently.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > a.cooldown {
		a.adjustLocked(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited lowers the rate.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.adjustLocked(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjustLocked(limit rate.Limit) {
	if limit > a.maxLimit {
		limit = a.maxLimit
	} else if limit < a.minLimit {
		limit = a.minLimit
	}
	if limit != a.limiter.Limit() {
		a.limiter.SetLimit(limit)
		a.limiter.SetBurst(max1(int(limit)))
	}
}

// HTTPError is implemented by errors that carry an HTTP status code.
type HTTPError interface {
	error
	StatusCode() int
}

// FatalError stops the retry loop immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as not worth retrying. Fatal(nil) is nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// ErrorClassifier reports whether err means upstream is overloaded, which
// slows the limiter down.
type ErrorClassifier func(error) bool

// DefaultClassifier treats 429 and 5xx responses as overload.
func DefaultClassifier(err error) bool {
	return isRateLimitError(err) || isServerError(err)
}

// Config controls Do.
type Config struct {
	MaxAttempts    int           // attempts including the first; values < 1 mean 1
	InitialDelay   time.Duration // wait before the second attempt
	MaxDelay       time.Duration
	RateLimitDelay time.Duration // fixed wait after a 429
	Multiplier     float64
	Jitter         bool
	Classifier     ErrorClassifier
	OnRetry        func(attempt int, err error)
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       10 * time.Second,
		RateLimitDelay: time.Second,
		Multiplier:     2.0,
		Jitter:         true,
		Classifier:     DefaultClassifier,
	}
}

// Do calls fn until it succeeds, returns a FatalError, ctx ends or the attempts
// run out. lim may be nil. A FatalError is returned unwrapped so callers can
// match on its cause; exhausting the attempts returns the last error wrapped.
func Do(ctx context.Context, cfg Config, lim *AdaptiveLimiter, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Classifier == nil {
		cfg.Classifier = DefaultClassifier
	}
	log := zerolog.Ctx(ctx)

	delay := cfg.InitialDelay
	var last error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn(ctx)
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				log.Debug().Int("attempt", attempt).Msg("retry succeeded")
			}
			return nil
		}

		var fatal *FatalError
		if errors.As(err, &fatal) {
			return fatal.Err
		}
		last = err

		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err)
		}

		wait := delay
		switch {
		case isRateLimitError(err):
			wait = cfg.RateLimitDelay
			if lim != nil {
				lim.RateLimited()
			}
		case cfg.Classifier(err):
			if lim != nil {
				lim.RateLimited()
			}
		}
		if cfg.Jitter {
			wait = addJitter(wait)
		}

		log.Warn().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("request failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", cfg.MaxAttempts, last)
}

// addJitter adds up to 25% of delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(int64(delay/4)))
}

func statusCode(err error) (int, bool) {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode(), true
	}
	return 0, false
}

func isRateLimitError(err error) bool {
	code, ok := statusCode(err)
	return ok && code == http.StatusTooManyRequests
}

func isServerError(err error) bool {
	code, ok := statusCode(err)
	return ok && code >= 500 && code < 600
}

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
