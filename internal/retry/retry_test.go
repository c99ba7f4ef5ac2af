package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{Attempts: 5, InitialDelay: time.Millisecond, Multiplier: 2, Jitter: 0.1}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &StatusError{Code: http.StatusTooManyRequests}, true},
		{"server error", &StatusError{Code: http.StatusBadGateway}, true},
		{"resource exhausted", &StatusError{Code: 400, Status: "RESOURCE_EXHAUSTED"}, true},
		{"forbidden", &StatusError{Code: http.StatusForbidden}, false},
		{"wrapped", fmt.Errorf("fetching: %w", &StatusError{Code: 503}), true},
		{"rpc text", errors.New("Rpc failed due to xhr error"), true},
		{"plain", errors.New("decoding response"), false},
		{"canceled", context.Canceled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Retryable(tt.err))
		})
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "test", fastPolicy(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{Code: http.StatusTooManyRequests}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoGivesUpWithLastError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "test", fastPolicy(), func(ctx context.Context) error {
		calls++
		return &StatusError{Code: 500 + calls}
	})

	require.Error(t, err)
	assert.Equal(t, 5, calls)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 505, statusErr.Code)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	err := Do(context.Background(), "test", fastPolicy(), func(ctx context.Context) error {
		calls++
		return &StatusError{Code: http.StatusUnauthorized}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	p := fastPolicy()
	p.InitialDelay = 50 * time.Millisecond

	err := Do(ctx, "test", p, func(ctx context.Context) error {
		calls++
		cancel()
		return &StatusError{Code: http.StatusServiceUnavailable}
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}
