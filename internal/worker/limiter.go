package worker

import (
	"sync"

	"golang.org/x/time/rate"
)

// Limiter implements per-key rate limiting of log lines.
// A non-positive rate disables limiting.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	suppressed   map[string]int64
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a new rate limiter
func NewLimiter(perSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		suppressed:   make(map[string]int64),
		defaultRate:  rate.Limit(perSecond),
		defaultBurst: burst,
	}
}

// Enabled reports whether the limiter drops anything at all
func (l *Limiter) Enabled() bool {
	return l != nil && l.defaultRate > 0
}

// Allow reports whether an event for key may pass now.
// Refused events are counted per key.
func (l *Limiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}

	if l.getLimiter(key).Allow() {
		return true
	}

	l.mu.Lock()
	l.suppressed[key]++
	l.mu.Unlock()
	return false
}

// Suppressed returns the number of refused events per key
func (l *Limiter) Suppressed() map[string]int64 {
	out := make(map[string]int64)
	if l == nil {
		return out
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	for k, v := range l.suppressed {
		out[k] = v
	}
	return out
}

// getLimiter returns the rate limiter for a key
func (l *Limiter) getLimiter(key string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[key]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists := l.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[key] = limiter

	return limiter
}
