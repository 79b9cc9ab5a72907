package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/HuzaifaAbdulRehman/fast-timetable-attendance-sub001/pkg/response"
)

// RateLimiter 限流计数器，由 pkg/redis.Client 实现
type RateLimiter interface {
	AllowRequest(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit 按客户端 IP + 路由限流
// limiter 为 nil（内存存储后端）或计数出错时降级放行
func RateLimit(limiter RateLimiter, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := c.ClientIP() + ":" + c.FullPath()
		allowed, err := limiter.AllowRequest(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流计数失败，降级放行", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, response.CodeTooManyRequests, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
