package middleware

import (
	"net/http"
	"sync"
	"time"

	"tareas-api/internal/config"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-client-IP token bucket. Stale limiters are
// swept by a janitor goroutine on the configured interval so the map
// does not grow with every client ever seen; Stop terminates the
// janitor.
type RateLimiter struct {
	cfg       config.RateLimitConfig
	perSecond rate.Limit

	mu      sync.Mutex
	clients map[string]*clientLimiter

	stop     chan struct{}
	stopOnce sync.Once
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{
		cfg:       cfg,
		perSecond: rate.Limit(float64(cfg.RequestsPerMin) / 60.0),
		clients:   make(map[string]*clientLimiter),
		stop:      make(chan struct{}),
	}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go rl.janitor()
	}
	return rl
}

func (rl *RateLimiter) janitor() {
	ticker := time.NewTicker(rl.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for ip, client := range rl.clients {
		if time.Since(client.lastSeen) > rl.cfg.CleanupInterval {
			delete(rl.clients, ip)
		}
	}
}

// Stop shuts down the janitor goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	client, ok := rl.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.perSecond, rl.cfg.BurstSize)}
		rl.clients[ip] = client
	}
	client.lastSeen = time.Now()
	rl.mu.Unlock()

	return client.limiter.Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	if !rl.cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests, slow down",
			})
			return
		}
		c.Next()
	}
}
