package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"MarketAnalyst/internal/model"
)

// Retry retries transient source errors with exponential backoff.
type Retry struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetry tries three times, waiting 1s then 2s.
var DefaultRetry = Retry{Attempts: 3, Backoff: time.Second}

// statusError is a non-200 response from the source.
type statusError struct {
	source string
	code   int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("%s: status %d, body: %s", e.source, e.code, e.body)
}

func (e *statusError) Unwrap() error { return model.ErrDataUnavailable }

// transient reports whether err may succeed on a later attempt: rate
// limiting, server errors and transport failures.
func transient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	var ue *url.Error
	return errors.As(err, &ue)
}

// Do calls fn until it succeeds, fails permanently or the attempts run out.
func (r Retry) Do(ctx context.Context, fn func() error) error {
	attempts := max(r.Attempts, 1)
	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = fn()
		if lastErr == nil || !transient(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.Backoff << i):
		}
	}
	if attempts == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed: %w", attempts, lastErr)
}
