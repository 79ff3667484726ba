package auth

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleAfter is how long a client may go without attempts before its
// bucket is dropped. It exceeds the one-minute refill window, so an
// evicted client would have had a full bucket anyway.
const idleAfter = 10 * time.Minute

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// Limiter throttles login attempts per client address.
type Limiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewLimiter allows perMinute attempts per client, with bursts of the
// same size. perMinute <= 0 disables throttling.
func NewLimiter(perMinute int) *Limiter {
	l := &Limiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Inf,
		burst:   1,
		now:     time.Now,
	}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		l.burst = perMinute
	}
	return l
}

// Allow reports whether key may attempt a login now.
func (l *Limiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= idleAfter {
		l.sweep(now)
	}
	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.seen = now
	l.mu.Unlock()

	return c.lim.AllowN(now, 1)
}

// sweep drops clients idle since before now-idleAfter. l.mu must be held.
func (l *Limiter) sweep(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.seen) >= idleAfter {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// tracked returns the number of clients currently holding a bucket.
func (l *Limiter) tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// ClientKey identifies the client of r by remote IP.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
