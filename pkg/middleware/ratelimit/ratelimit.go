package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// OnLimit is invoked instead of the handler when a client exceeds its budget.
type OnLimit func(c *gin.Context)

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client IP.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*client
	rps     rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

// New builds a per-IP limiter. A non-positive rps disables limiting.
func New(rps float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 1
	}
	return &Limiter{
		clients: make(map[string]*client),
		rps:     rate.Limit(rps),
		burst:   burst,
		idleTTL: 3 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether the given key may proceed now.
func (l *Limiter) Allow(key string) bool {
	if l == nil || l.rps <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.evict(now)

	entry, ok := l.clients[key]
	if !ok {
		entry = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// evict drops idle clients; callers hold mu.
func (l *Limiter) evict(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.clients, key)
		}
	}
}

// Middleware applies the limiter keyed by client IP.
func (l *Limiter) Middleware(onLimit OnLimit) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			onLimit(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
