package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mmcl/printrun/internal/apperr"
	"github.com/mmcl/printrun/internal/domain/models"
	"github.com/mmcl/printrun/internal/service/auth"
)

const (
	actorKey  = "actor"
	claimsKey = "claims"
)

// Authenticator verifies bearer tokens.
type Authenticator interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
	CurrentUser(claims *auth.Claims) (models.User, error)
}

// Auth requires a valid bearer token and stores the caller in the context.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abort(c, apperr.Auth("missing bearer token"))
			return
		}

		claims, err := authn.Verify(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			abort(c, err)
			return
		}
		user, err := authn.CurrentUser(claims)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(claimsKey, claims)
		c.Set(actorKey, user)
		c.Next()
	}
}

// RequireAdmin rejects callers whose role is not admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			abort(c, apperr.Auth("authentication required"))
			return
		}
		if !actor.IsAdmin() {
			abort(c, apperr.Authorization("admin access required"))
			return
		}
		c.Next()
	}
}

// Actor returns the authenticated user.
func Actor(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

// Claims returns the verified token claims.
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
