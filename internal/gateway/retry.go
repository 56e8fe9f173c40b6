package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fernando-ferreira-bitss/atlas-starke-fc-api-sub000/internal/logger"
)

// rateLimitStep is the fixed increment added per rate-limited attempt, per
// the upstream portals' published limits.
const rateLimitStep = 30 * time.Second

// WithRetry runs fn until it succeeds, the error is terminal, or attempts
// are exhausted. Rate limiting waits in fixed 30s increments; server errors
// wait with exponential backoff starting at one second.
func WithRetry(ctx context.Context, log *logger.Logger, component string, attempts int, fn func() error) error {
	backoff := time.Second

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		var wait time.Duration
		switch {
		case errors.Is(err, ErrRateLimited):
			wait = rateLimitStep * time.Duration(attempt)
		case errors.Is(err, ErrServerError):
			wait = backoff
			backoff *= 2
		default:
			return err
		}

		if attempt == attempts {
			break
		}
		log.Warn(component, "Transient upstream failure, backing off: attempt=%d wait=%s err=%v", attempt, wait, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}

// ClassifyStatus maps an HTTP status code to the gateway error taxonomy.
// Returns nil for 2xx.
func ClassifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status >= 500:
		return ErrServerError
	default:
		return errors.New("unexpected upstream status " + http.StatusText(status))
	}
}
