package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ProviderLimiter keeps one token bucket per provider name. Both the search
// providers and the text generator draw from it.
type ProviderLimiter struct {
	limiters  map[string]*rate.Limiter
	mu        sync.RWMutex
	defaults  Limit
	overrides map[string]Limit
}

type Limit struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultLimit() Limit {
	return Limit{
		RequestsPerSecond: 5,
		BurstSize:         5,
	}
}

// NewProviderLimiter builds a limiter using defaults for any provider without
// an override.
func NewProviderLimiter(defaults Limit, overrides map[string]Limit) *ProviderLimiter {
	if defaults.RequestsPerSecond <= 0 || defaults.BurstSize <= 0 {
		defaults = DefaultLimit()
	}
	o := make(map[string]Limit, len(overrides))
	for name, l := range overrides {
		if l.RequestsPerSecond > 0 && l.BurstSize > 0 {
			o[name] = l
		}
	}
	return &ProviderLimiter{
		limiters:  make(map[string]*rate.Limiter),
		defaults:  defaults,
		overrides: o,
	}
}

func (p *ProviderLimiter) limiter(provider string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[provider]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if limiter, exists = p.limiters[provider]; exists {
		return limiter
	}

	l, ok := p.overrides[provider]
	if !ok {
		l = p.defaults
	}
	limiter = rate.NewLimiter(rate.Limit(l.RequestsPerSecond), l.BurstSize)
	p.limiters[provider] = limiter
	return limiter
}

// Wait blocks until provider may issue another call or ctx is done.
func (p *ProviderLimiter) Wait(ctx context.Context, provider string) error {
	return p.limiter(provider).Wait(ctx)
}
