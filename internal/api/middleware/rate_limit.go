package middleware

import (
	"fmt"
	"net/http"
	"time"

	"casework-service/internal/services"

	"github.com/gin-gonic/gin"
)

type RateLimitMiddleware struct {
	redisService *services.RedisService
}

func NewRateLimitMiddleware(redisService *services.RedisService) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		redisService: redisService,
	}
}

// RateLimit limits authenticated requests per user and endpoint.
func (rm *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		key := fmt.Sprintf("rate_limit:%v:%s", userID, c.Request.URL.Path)
		rm.enforce(c, key, requests, window)
	}
}

// RateLimitIP limits public routes by client IP.
func (rm *RateLimitMiddleware) RateLimitIP(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit_ip:%s:%s", c.ClientIP(), c.Request.URL.Path)
		rm.enforce(c, key, requests, window)
	}
}

func (rm *RateLimitMiddleware) enforce(c *gin.Context, key string, requests int, window time.Duration) {
	allowed, err := rm.redisService.CheckRateLimit(c.Request.Context(), key, requests, window)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
		c.Abort()
		return
	}

	if !allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":   "Rate limit exceeded",
			"message": fmt.Sprintf("Too many requests. Limit: %d per %v", requests, window),
		})
		c.Abort()
		return
	}

	c.Next()
}
