package auth

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AttemptLimiter throttles host authentication attempts per remote host.
type AttemptLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewAttemptLimiter allows perMinute attempts with the given burst.
// perMinute <= 0 disables limiting.
func NewAttemptLimiter(perMinute float64, burst int) *AttemptLimiter {
	limit := rate.Inf
	if perMinute > 0 {
		limit = rate.Limit(perMinute / 60)
	}
	if burst < 1 {
		burst = 1
	}
	return &AttemptLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    limit,
		burst:    burst,
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

func (l *AttemptLimiter) Allow(remote string) bool {
	key := hostOf(remote)
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evictLocked(now)

	e, ok := l.limiters[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

func (l *AttemptLimiter) evictLocked(now time.Time) {
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.limiters, k)
		}
	}
}

func hostOf(remote string) string {
	if h, _, err := net.SplitHostPort(remote); err == nil {
		return h
	}
	return remote
}
