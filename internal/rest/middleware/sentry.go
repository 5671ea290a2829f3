package middleware

import (
	"time"

	"github.com/flexprice/playerseats/internal/config"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware attaches a sentry hub to every request when sentry is enabled
func SentryMiddleware(cfg *config.Configuration) gin.HandlerFunc {
	if !cfg.Sentry.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return sentrygin.New(sentrygin.Options{
		Repanic: true,
		Timeout: 2 * time.Second,
	})
}

// SentryScopeMiddleware tags the request hub with the caller so captured
// payment failures can be traced back to a member. Runs after authentication.
func SentryScopeMiddleware(c *gin.Context) {
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		ctx := c.Request.Context()
		hub.Scope().SetUser(sentry.User{ID: types.GetUserID(ctx)})
		hub.Scope().SetTag("actor_type", string(types.GetActorType(ctx)))
		hub.Scope().SetTag("request_id", types.GetRequestID(ctx))
		if id := c.Param("id"); id != "" {
			hub.Scope().SetTag("subscriber_id", id)
		}
	}
	c.Next()
}
