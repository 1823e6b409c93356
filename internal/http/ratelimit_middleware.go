package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Rate limit defaults: 100 requests per 15 minutes per client IP.
const (
	DefaultRateLimitMax    = 100
	DefaultRateLimitWindow = 15 * time.Minute
)

// RateLimitMiddleware enforces a fixed-window per-IP request limit backed by
// Redis. A nil client disables limiting; Redis outages fail open.
func RateLimitMiddleware(rdb *redis.Client, max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%d", c.ClientIP(), time.Now().Unix()/int64(window.Seconds()))
		count, errIncr := rdb.Incr(c.Request.Context(), key).Result()
		if errIncr != nil {
			log.WithError(errIncr).Warn("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(c.Request.Context(), key, window)
		}
		if count > max {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests, please try again later"})
			return
		}
		c.Next()
	}
}
