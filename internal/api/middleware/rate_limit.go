package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"club-attendance/backend/config"
	"club-attendance/backend/pkg/redis"
	"club-attendance/backend/pkg/response"
)

// RateLimit 基于 Redis 计数器的限流中间件（按客户端 IP + 路由计数）
// 配置关闭或 rdb 为 nil 时降级放行
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled || rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, cfg.Limit, cfg.Window)
		if err != nil {
			// Redis 出错时降级放行
			logger.Warn("限流计数失败，降级放行", zap.Error(err))
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10004, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
