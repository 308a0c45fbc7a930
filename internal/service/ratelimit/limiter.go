package ratelimit

import (
	"context"
	"sync"
	"time"
)

type provider struct {
	mu       sync.Mutex // serializes turn-taking for one provider
	interval time.Duration
	last     time.Time
}

// Limiter enforces a minimum spacing between calls per provider key.
// Distinct providers have independent intervals; callers for the same
// provider are strictly serialized.
type Limiter struct {
	mu sync.Mutex
	m  map[string]*provider
}

func New(intervals map[string]time.Duration) *Limiter {
	l := &Limiter{m: make(map[string]*provider)}
	for key, d := range intervals {
		l.m[key] = &provider{interval: d}
	}
	return l
}

// SetInterval registers or updates the minimum spacing for key.
func (l *Limiter) SetInterval(key string, d time.Duration) {
	l.mu.Lock()
	if p, ok := l.m[key]; ok {
		p.interval = d
	} else {
		l.m[key] = &provider{interval: d}
	}
	l.mu.Unlock()
}

// Wait blocks until at least the configured interval has elapsed since the
// previous call for key, then claims the slot. Unknown keys pass through
// immediately. Returns early with ctx.Err() on cancellation without claiming.
func (l *Limiter) Wait(ctx context.Context, key string) error {
	l.mu.Lock()
	p, ok := l.m[key]
	l.mu.Unlock()
	if !ok {
		return ctx.Err()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interval <= 0 {
		p.last = time.Now()
		return ctx.Err()
	}

	wait := p.interval - time.Since(p.last)
	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	p.last = time.Now()
	return nil
}
