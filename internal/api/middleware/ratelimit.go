package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/d60-Lab/im-delivery/pkg/response"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter 每个用户一个令牌桶，闲置的桶定期回收
type UserRateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry
	rps     rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

func NewUserRateLimiter(rps float64, burst int) *UserRateLimiter {
	if rps <= 0 {
		rps = 20
	}
	if burst <= 0 {
		burst = int(rps) * 2
	}
	return &UserRateLimiter{
		entries: map[string]*limiterEntry{},
		rps:     rate.Limit(rps),
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
	}
}

func (l *UserRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.entries[key] = e
		if len(l.entries) > 10000 {
			l.sweepLocked(now)
		}
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func (l *UserRateLimiter) sweepLocked(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.entries, k)
		}
	}
}

// Handler 按认证用户限流，未认证时按客户端 IP
func (l *UserRateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := UserID(c)
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !l.Allow(key) {
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
