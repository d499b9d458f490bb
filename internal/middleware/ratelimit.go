package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mx-space/folio/internal/pkg/response"
)

const rateLimitWindow = time.Second

// RateLimit caps each client IP at max requests per second using a Redis
// counter per one-second window. Authenticated requests, a nil client and a
// non-positive max all disable the check. Redis errors let the request through.
func RateLimit(rdb *redis.Client, max int64, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || max <= 0 || IsAuthenticated(c) {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if ip == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := fmt.Sprintf("folio:rate_limit:%s:%d", ip, time.Now().Unix())

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.PExpire(ctx, key, rateLimitWindow+time.Second)
		}

		if count > max {
			if count == max+1 && log != nil {
				log.Warn("rate limited", zap.String("ip", ip), zap.String("path", c.Request.URL.Path))
			}
			c.Header("Retry-After", "1")
			response.TooManyRequests(c, "slow down, too many requests")
			return
		}

		c.Next()
	}
}
