package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restError(code int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: code}}
}

func fastConfig(attempts int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = time.Millisecond
	cfg.RateLimitDelay = time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rest 404", restError(404), 404},
		{"wrapped rest 502", fmt.Errorf("create: %w", restError(502)), 502},
		{"rate limit", &discordgo.RateLimitError{RateLimit: &discordgo.RateLimit{}}, 429},
		{"plain", errors.New("x"), 0},
		{"no response", &discordgo.RESTError{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}

	assert.True(t, IsRateLimited(restError(429)))
	assert.True(t, IsServerError(restError(503)))
	assert.True(t, IsClientError(restError(403)))
	assert.False(t, IsClientError(restError(429)))
}

func TestWithRetrySucceedsAfterServerErrors(t *testing.T) {
	calls := 0
	var retried []int
	cfg := fastConfig(5)
	cfg.OnRetry = func(attempt int, _ error) { retried = append(retried, attempt) }

	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return restError(500)
		}
		return nil
	}, nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestWithRetryStopsOnClientAndFatalErrors(t *testing.T) {
	for _, stop := range []error{restError(400), &FatalError{Err: errors.New("boom")}} {
		calls := 0
		err := WithRetryConfig(context.Background(), func() error {
			calls++
			return stop
		}, nil, fastConfig(5))
		assert.Equal(t, stop, err)
		assert.Equal(t, 1, calls)
	}
}

func TestWithRetryExhausts(t *testing.T) {
	last := restError(502)
	err := WithRetryConfig(context.Background(), func() error { return last }, nil, fastConfig(3))
	require.Error(t, err)
	assert.ErrorIs(t, err, last)
	assert.Contains(t, err.Error(), "max attempts (3)")
}

func TestWithRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetry(ctx, func() error { return nil }, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdaptiveLimiter(t *testing.T) {
	lim := NewAdaptiveLimiter(4, 1, 8, 2, 0.5)
	now := time.Unix(1000, 0)
	lim.now = func() time.Time { return now }

	lim.RateLimited()
	assert.Equal(t, 2.0, lim.CurrentLimit())
	lim.RateLimited()
	lim.RateLimited()
	assert.Equal(t, 1.0, lim.CurrentLimit())

	lim.Success()
	assert.Equal(t, 1.0, lim.CurrentLimit(), "no growth right after an error")

	now = now.Add(11 * time.Second)
	for range 10 {
		lim.Success()
	}
	assert.Equal(t, 8.0, lim.CurrentLimit())
}
