package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/asalkic/zgrada-server/internal/models"
)

// RateLimitConfig defines the rate limiting parameters for one route group.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// StrictLimit guards the authentication endpoints against brute force.
var StrictLimit = RateLimitConfig{
	RequestsPerWindow: 10,
	Window:            time.Minute,
	Burst:             10,
}

// LenientLimit covers authenticated traffic.
var LenientLimit = RateLimitConfig{
	RequestsPerWindow: 300,
	Window:            time.Minute,
	Burst:             300,
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type rateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rate    rate.Limit
	burst   int

	lastCleanup time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return &rateLimiter{
		clients:     make(map[string]*clientLimiter),
		rate:        rate.Limit(float64(cfg.RequestsPerWindow) / cfg.Window.Seconds()),
		burst:       cfg.Burst,
		lastCleanup: time.Now(),
	}
}

func (rl *rateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastCleanup) > 10*time.Minute {
		for k, client := range rl.clients {
			if now.Sub(client.lastSeen) > 10*time.Minute {
				delete(rl.clients, k)
			}
		}
		rl.lastCleanup = now
	}

	client, ok := rl.clients[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.clients[key] = client
	}
	client.lastSeen = now

	return client.limiter.Allow()
}

// RateLimitMiddleware limits requests per client IP according to cfg.
func RateLimitMiddleware(cfg RateLimitConfig) gin.HandlerFunc {
	rl := newRateLimiter(cfg)
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Status:  "error",
				Code:    "RATE_LIMITED",
				Message: "Too many requests, slow down",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
