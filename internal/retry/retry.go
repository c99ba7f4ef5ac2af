package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/omarshaarawi/survivorbot/internal/metrics"
)

type Policy struct {
	Attempts     int
	InitialDelay time.Duration
	Multiplier   float64
	Jitter       float64
}

// DefaultPolicy makes five attempts starting at three seconds and doubling.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:     5,
		InitialDelay: 3 * time.Second,
		Multiplier:   2,
		Jitter:       0.3,
	}
}

// StatusError is a non-success response from a remote API.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("unexpected status code: %d", e.Code)
	if e.Status != "" {
		msg += " " + e.Status
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Retryable reports whether err is a rate limit, a server error or a network
// failure.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code == http.StatusTooManyRequests ||
			statusErr.Code >= http.StatusInternalServerError ||
			statusErr.Status == "RESOURCE_EXHAUSTED"
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := err.Error()
	for _, marker := range []string{"429", "500", "RESOURCE_EXHAUSTED", "Rpc failed", "xhr error"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Do runs op until it succeeds, returns a non-retryable error, the context
// ends or the attempts run out. The last error is returned.
func Do(ctx context.Context, source string, p Policy, op func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialDelay
	b.Multiplier = p.Multiplier
	b.RandomizationFactor = p.Jitter
	b.MaxElapsedTime = 0

	attempts := max(p.Attempts, 1)
	attempt := 0

	operation := func() error {
		attempt++
		err := op(ctx)
		switch {
		case err == nil:
			metrics.FetchAttempts.WithLabelValues(source, "ok").Inc()
			return nil
		case Retryable(err):
			metrics.FetchAttempts.WithLabelValues(source, "retryable").Inc()
			return err
		default:
			metrics.FetchAttempts.WithLabelValues(source, "failed").Inc()
			return backoff.Permanent(err)
		}
	}

	notify := func(err error, delay time.Duration) {
		slog.Warn("Retrying request", "source", source, "attempt", attempt, "max_attempts", attempts, "delay", delay, "error", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return fmt.Errorf("%s: giving up after %d attempt(s): %w", source, attempt, err)
	}
	return nil
}
