package queue

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RateLimiter is a per-client_id sliding-window counter. It follows the
// teacher's pkg/principalresolver.CachedResolver pattern of wrapping
// patrickmn/go-cache for TTL'd per-key state instead of a hand-rolled
// expiry map.
type RateLimiter struct {
	mu     sync.Mutex
	cache  *gocache.Cache
	limit  int
	window time.Duration
}

type windowCounter struct {
	count      int
	prevCount  int
	windowOpen time.Time
}

// NewRateLimiter builds a limiter allowing at most limit requests per
// window, per client_id. Decay is lazy: a counter rolls forward the first
// time it is touched after its window has elapsed, and the previous
// window's count is weighted by how much of it still overlaps the trailing
// window ending now.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		cache:  gocache.New(window*2, window*2),
		limit:  limit,
		window: window,
	}
}

// Allow reports whether clientID may submit now, incrementing its counter as
// a side effect of a true result.
func (r *RateLimiter) Allow(clientID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	wc := windowCounter{windowOpen: now}
	if v, ok := r.cache.Get(clientID); ok {
		wc = v.(windowCounter)
		if elapsed := now.Sub(wc.windowOpen); elapsed >= 2*r.window {
			wc = windowCounter{windowOpen: now}
		} else if elapsed >= r.window {
			wc = windowCounter{prevCount: wc.count, windowOpen: wc.windowOpen.Add(r.window)}
		}
	}

	overlap := 1 - float64(now.Sub(wc.windowOpen))/float64(r.window)
	if float64(wc.prevCount)*overlap+float64(wc.count) >= float64(r.limit) {
		r.cache.Set(clientID, wc, gocache.DefaultExpiration)
		return false
	}

	wc.count++
	r.cache.Set(clientID, wc, gocache.DefaultExpiration)
	return true
}
