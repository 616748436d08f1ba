package middleware

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"pitapat/pkg/responses"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// IPRateLimiter 按客户端 IP 的令牌桶, 超过 maxAge 未使用的桶会被清理
type IPRateLimiter struct {
	limit    rate.Limit
	burst    int
	maxAge   time.Duration
	limiters sync.Map // ip → *limiterEntry
	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewIPRateLimiter(perSecond float64, burst int, maxAge time.Duration) *IPRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	if maxAge <= 0 {
		maxAge = 10 * time.Minute
	}
	rl := &IPRateLimiter{
		limit:  rate.Limit(perSecond),
		burst:  burst,
		maxAge: maxAge,
		stopCh: make(chan struct{}),
	}
	go rl.cleanup(maxAge / 2)
	return rl
}

func (rl *IPRateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rl.limiters.Range(func(key, value interface{}) bool {
				entry := value.(*limiterEntry)
				if now.Sub(time.Unix(0, entry.lastSeen.Load())) > rl.maxAge {
					rl.limiters.Delete(key)
				}
				return true
			})
		case <-rl.stopCh:
			return
		}
	}
}

// Stop 停止清理协程
func (rl *IPRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// Allow 消耗一个令牌
func (rl *IPRateLimiter) Allow(ip string) bool {
	v, ok := rl.limiters.Load(ip)
	if !ok {
		v, _ = rl.limiters.LoadOrStore(ip, &limiterEntry{limiter: rate.NewLimiter(rl.limit, rl.burst)})
	}
	entry := v.(*limiterEntry)
	entry.lastSeen.Store(time.Now().UnixNano())
	return entry.limiter.Allow()
}

// Middleware perSecond <= 0 时不限流
func (rl *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.limit <= 0 {
			c.Next()
			return
		}
		if !rl.Allow(c.ClientIP()) {
			responses.ErrorWithCode(c, http.StatusTooManyRequests, "请求过于频繁")
			c.Abort()
			return
		}
		c.Next()
	}
}
