package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderLimiter_BurstThenBlock(t *testing.T) {
	l := NewProviderLimiter(Limit{RequestsPerSecond: 0.001, BurstSize: 2}, nil)

	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "serpapi_flights"))
	require.NoError(t, l.Wait(ctx, "serpapi_flights"))

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(short, "serpapi_flights"), "burst exhausted")

	assert.NoError(t, l.Wait(ctx, "booking"), "providers have separate buckets")
}

func TestProviderLimiter_Overrides(t *testing.T) {
	l := NewProviderLimiter(Limit{RequestsPerSecond: 0.001, BurstSize: 1}, map[string]Limit{
		"booking": {RequestsPerSecond: 1000, BurstSize: 10},
		"ignored": {RequestsPerSecond: 0, BurstSize: 0},
	})

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.NoError(t, l.Wait(ctx, "booking"))
	}

	assert.Same(t, l.limiter("booking"), l.limiter("booking"))
	assert.Equal(t, 1, l.limiter("ignored").Burst(), "invalid override falls back to defaults")
}

func TestNewProviderLimiter_InvalidDefaults(t *testing.T) {
	l := NewProviderLimiter(Limit{}, nil)
	assert.Equal(t, DefaultLimit().BurstSize, l.limiter("any").Burst())
}

func TestProviderLimiter_CancelledContext(t *testing.T) {
	l := NewProviderLimiter(DefaultLimit(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, l.Wait(ctx, "serpapi_hotels"))
}
