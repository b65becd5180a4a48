package resilience

import (
	"sync/atomic"
	"time"
)

// RateLimiter is a fixed-window admission counter, process-wide for one
// endpoint. It is built on atomics so concurrent request handlers never
// serialize behind a lock: the window rollover is a CAS race where the
// winner resets the counter and losers simply count against the fresh
// window.
type RateLimiter struct {
	limit       int64
	window      time.Duration
	windowStart atomic.Int64 // unix nanos
	count       atomic.Int64
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}

	rl := &RateLimiter{
		limit:  int64(limit),
		window: window,
	}
	rl.windowStart.Store(time.Now().UnixNano())
	return rl
}

// Allow reports whether another attempt fits in the current window.
func (rl *RateLimiter) Allow() bool {
	now := time.Now().UnixNano()
	start := rl.windowStart.Load()
	if now-start >= int64(rl.window) {
		if rl.windowStart.CompareAndSwap(start, now) {
			rl.count.Store(0)
		}
	}
	return rl.count.Add(1) <= rl.limit
}

// Remaining returns how many attempts are left in the current window.
// Diagnostic only; it can be stale by the time the caller acts on it.
func (rl *RateLimiter) Remaining() int {
	left := rl.limit - rl.count.Load()
	if left < 0 {
		return 0
	}
	return int(left)
}
