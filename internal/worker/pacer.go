package worker

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces backend calls per provider. Every provider gets its own
// limiter so a run that mixes providers (extraction, then region repair on
// another model) does not share one floor.
type Pacer struct {
	limiters  map[string]*rate.Limiter
	overrides map[string]time.Duration
	mu        sync.RWMutex
	interval  time.Duration
	backoff   time.Duration

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer that allows one call per interval per provider
// and pauses for backoff after a failed call.
func NewPacer(interval, backoff time.Duration) *Pacer {
	return &Pacer{
		limiters:  make(map[string]*rate.Limiter),
		overrides: make(map[string]time.Duration),
		interval:  interval,
		backoff:   backoff,
		sleep:     Sleep,
	}
}

// Wait blocks until provider may be called again
func (p *Pacer) Wait(ctx context.Context, provider string) error {
	return p.getLimiter(provider).Wait(ctx)
}

// Backoff pauses after a backend error
func (p *Pacer) Backoff(ctx context.Context) error {
	if p.backoff <= 0 {
		return nil
	}
	return p.sleep(ctx, p.backoff)
}

// Interval returns the floor between calls to provider
func (p *Pacer) Interval(provider string) time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if d, ok := p.overrides[provider]; ok {
		return d
	}
	return p.interval
}

// getLimiter returns the rate limiter for a provider
func (p *Pacer) getLimiter(provider string) *rate.Limiter {
	p.mu.RLock()
	limiter, exists := p.limiters[provider]
	p.mu.RUnlock()

	if exists {
		return limiter
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := p.limiters[provider]; exists {
		return limiter
	}

	limiter = newLimiter(p.interval)
	p.limiters[provider] = limiter

	return limiter
}

func newLimiter(interval time.Duration) *rate.Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return rate.NewLimiter(limit, 1)
}

// SetProviderInterval overrides the floor for one provider; zero means unpaced
func (p *Pacer) SetProviderInterval(provider string, interval time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.overrides[provider] = interval
	p.limiters[provider] = newLimiter(interval)
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
