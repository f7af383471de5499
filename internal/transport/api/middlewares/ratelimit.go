package middlewares

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

var ErrTooManyRequests = errors.New("too many requests")

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter ограничивает частоту запросов отдельно для каждого юзера (или IP для неавторизованных).
type RateLimiter struct {
	mu        sync.Mutex
	visitors  map[string]*visitor
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter лимитер на perMinute запросов в минуту. При perMinute <= 0 лимит не применяется.
func NewRateLimiter(perMinute int) *RateLimiter {
	limit := rate.Inf
	burst := 0
	if perMinute > 0 {
		limit = rate.Limit(float64(perMinute) / time.Minute.Seconds())
		burst = perMinute
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// sweep удаляет лимитеры, к которым давно не обращались. Вызывается под мьютексом.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < limiterIdleTTL {
		return
	}
	rl.lastSweep = now
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > limiterIdleTTL {
			delete(rl.visitors, key)
		}
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userID := CurrentUserID(c); userID != 0 {
			key = "user:" + strconv.FormatInt(userID, 10)
		}

		if !rl.Allow(key) {
			c.Header("Retry-After", "60")
			_ = c.AbortWithError(http.StatusTooManyRequests, ErrTooManyRequests).SetType(gin.ErrorTypePublic)
			return
		}
		c.Next()
	}
}
