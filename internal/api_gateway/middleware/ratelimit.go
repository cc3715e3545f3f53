package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// DefaultIdleTTL is how long an unused client bucket is kept
const DefaultIdleTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter keeps one token bucket per client address. Buckets idle
// longer than idleTTL are swept on access, at most once per idleTTL.
type ClientLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*clientBucket
	rps       rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	return &ClientLimiter{
		buckets:   make(map[string]*clientBucket),
		rps:       rate.Limit(rps),
		burst:     burst,
		idleTTL:   DefaultIdleTTL,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *ClientLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idleTTL {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

// sweep drops idle buckets. Caller holds mu.
func (l *ClientLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// Clients is the number of buckets currently tracked
func (l *ClientLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Allow reports whether the client may send another request now
func (l *ClientLimiter) Allow(key string) bool {
	return l.limiter(key).Allow()
}

// RateLimit answers 429 once a client exhausts its bucket. A nil limiter disables limiting.
func RateLimit(l *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if l == nil || l.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		retryAfter := 1
		if l.rps > 0 && l.rps < 1 {
			retryAfter = int(1/float64(l.rps)) + 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))

		response := gin.H{"error": gin.H{"code": "RATE_LIMITED", "message": "Too many requests"}}
		if correlationID := GetCorrelationID(c); correlationID != "" {
			response["correlation_id"] = correlationID
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, response)
	}
}
