package mcp

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// limiterSweepInterval is how often idle limiters are considered for eviction.
	limiterSweepInterval = 3 * time.Minute

	// limiterIdleTTL is how long an owner's limiter survives without requests.
	limiterIdleTTL = 5 * time.Minute
)

// ownerLimiter holds a rate limiter and the last time it was used.
type ownerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter provides per-owner token buckets.
// Idle entries are swept lazily on access instead of by a background goroutine.
type rateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*ownerLimiter
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(r rate.Limit, burst int) *rateLimiter {
	return &rateLimiter{
		limiters: make(map[string]*ownerLimiter),
		rate:     r,
		burst:    burst,
		now:      time.Now,
	}
}

// allow reports whether owner may make a request now.
func (rl *rateLimiter) allow(owner string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	l, ok := rl.limiters[owner]
	if !ok {
		l = &ownerLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[owner] = l
	}
	l.lastSeen = now
	return l.limiter.AllowN(now, 1)
}

// sweep drops limiters idle for longer than limiterIdleTTL (caller must hold lock).
func (rl *rateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < limiterSweepInterval {
		return
	}
	rl.lastSweep = now
	for owner, l := range rl.limiters {
		if now.Sub(l.lastSeen) > limiterIdleTTL {
			delete(rl.limiters, owner)
		}
	}
}
