package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/ericziethen/ez-scrape/config"
	"github.com/ericziethen/ez-scrape/models"
)

// clientLimiters tracks one token bucket per client IP. Buckets idle for
// an hour are swept out so the map cannot grow without bound.
type clientLimiters struct {
	mu      sync.Mutex
	buckets map[string]*clientBucket
	rps     rate.Limit
	burst   int
}

type clientBucket struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

func (cl *clientLimiters) allow(ip string) bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	b, ok := cl.buckets[ip]
	if !ok {
		b = &clientBucket{bucket: rate.NewLimiter(cl.rps, cl.burst)}
		cl.buckets[ip] = b
	}
	b.lastSeen = time.Now()
	return b.bucket.Allow()
}

func (cl *clientLimiters) sweep(idle, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		cl.mu.Lock()
		for ip, b := range cl.buckets {
			if time.Since(b.lastSeen) > idle {
				delete(cl.buckets, ip)
			}
		}
		cl.mu.Unlock()
	}
}

// RateLimit applies per-client-IP token-bucket rate limiting.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	cl := &clientLimiters{
		buckets: make(map[string]*clientBucket),
		rps:     rate.Limit(cfg.RequestsPerSecond),
		burst:   cfg.Burst,
	}
	go cl.sweep(time.Hour, 5*time.Minute)

	return func(c *gin.Context) {
		if !cl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ScrapeResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "too many requests",
				},
			})
			return
		}
		c.Next()
	}
}
