package middleware

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yungbote/opsdesk-backend/internal/http/response"
	"github.com/yungbote/opsdesk-backend/internal/observability"
	"github.com/yungbote/opsdesk-backend/internal/platform/ctxutil"
)

const limiterIdleTTL = 10 * time.Minute

// RateLimiter keeps one token bucket per caller: the user id when
// authenticated, the client IP otherwise.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	now   func() time.Time

	mu      sync.Mutex
	clients map[string]*clientLimiter
	sweptAt time.Time
}

type clientLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
		clients: map[string]*clientLimiter{},
	}
}

// Middleware is a no-op when rps is not positive.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	if rl == nil || rl.rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if !rl.allow(callerKey(c)) {
			observability.Current().IncRateLimited(c.FullPath())
			c.Header("Retry-After", "1")
			c.Abort()
			response.RespondError(c, http.StatusTooManyRequests, "rate_limited", errors.New("too many requests"))
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.sweptAt) > limiterIdleTTL {
		for k, cl := range rl.clients {
			if now.Sub(cl.seen) > limiterIdleTTL {
				delete(rl.clients, k)
			}
		}
		rl.sweptAt = now
	}
	cl, ok := rl.clients[key]
	if !ok {
		cl = &clientLimiter{lim: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[key] = cl
	}
	cl.seen = now
	return cl.lim.AllowN(now, 1)
}

func callerKey(c *gin.Context) string {
	if uid := ctxutil.UserID(c.Request.Context()); uid != nil {
		return "user:" + uid.String()
	}
	return "ip:" + c.ClientIP()
}
