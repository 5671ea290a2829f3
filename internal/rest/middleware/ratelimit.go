package middleware

import (
	"github.com/flexprice/playerseats/internal/config"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimitMiddleware applies a process wide token bucket. A zero rate disables it.
func RateLimitMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if cfg.Server.RateLimitPerSecond <= 0 {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	burst := max(cfg.Server.RateLimitBurst, 1)
	limiter := rate.NewLimiter(rate.Limit(cfg.Server.RateLimitPerSecond), burst)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			abortWith(c, ierr.NewError("rate limit exceeded").
				WithHint("Too many requests, please retry shortly").
				Mark(ierr.ErrTooManyRequests))
			return
		}
		c.Next()
	}
}
