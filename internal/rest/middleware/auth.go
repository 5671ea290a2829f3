package middleware

import (
	"strconv"
	"strings"

	"github.com/flexprice/playerseats/internal/auth"
	"github.com/flexprice/playerseats/internal/config"
	ierr "github.com/flexprice/playerseats/internal/errors"
	"github.com/flexprice/playerseats/internal/logger"
	"github.com/flexprice/playerseats/internal/types"
	"github.com/gin-gonic/gin"
)

// AuthenticateMiddleware validates the bearer token and puts the caller's id and
// role into the request context
func AuthenticateMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	authProvider := auth.NewProvider(cfg)

	return func(c *gin.Context) {
		authHeader := c.GetHeader(types.HeaderAuthorization)
		if authHeader == "" {
			abortWith(c, ierr.NewError("missing authorization header").
				WithHint("Unauthorized").
				Mark(ierr.ErrUnauthenticated))
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok {
			abortWith(c, ierr.NewError("malformed authorization header").
				WithHint("Invalid authorization header format").
				Mark(ierr.ErrUnauthenticated))
			return
		}

		claims, err := authProvider.ValidateToken(tokenString)
		if err != nil {
			logger.Debugw("failed to validate token", "error", err)
			abortWith(c, ierr.WithError(err).
				WithHint("Invalid token").
				Mark(ierr.ErrUnauthenticated))
			return
		}

		ctx := types.SetUserID(c.Request.Context(), claims.UserID)
		ctx = types.SetActorType(ctx, claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin lets only admin callers through
func RequireAdmin(c *gin.Context) {
	if types.GetActorType(c.Request.Context()) != types.ActorTypeAdmin {
		abortWith(c, ierr.NewError("admin role required").
			WithHint("Only club administrators can do this").
			Mark(ierr.ErrPermissionDenied))
		return
	}
	c.Next()
}

// RequireOwnSubscriber lets members act on their own :id only. Admins may act on anyone.
func RequireOwnSubscriber(c *gin.Context) {
	ctx := c.Request.Context()
	if types.GetActorType(ctx) == types.ActorTypeAdmin {
		c.Next()
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || strconv.FormatInt(id, 10) != types.GetUserID(ctx) {
		abortWith(c, ierr.NewError("subscriber mismatch").
			WithHint("You can only manage your own accounts").
			Mark(ierr.ErrPermissionDenied))
		return
	}
	c.Next()
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
