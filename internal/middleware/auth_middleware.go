package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/questionbank/internal/app/auth"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/pkg/auth"
)

const actorKey = "actor"

// Authenticator resolves an access token to the calling account
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*appauth.Actor, error)
}

// PermissionChecker decides whether an actor may perform an action
type PermissionChecker interface {
	Authorize(ctx context.Context, actor *appauth.Actor, resource appauth.Resource, action appauth.Action, owner *int64) error
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	authenticator Authenticator
	permissions   PermissionChecker
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authenticator Authenticator, permissions PermissionChecker) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		permissions:   permissions,
	}
}

// JWTAuth requires a valid "Bearer <access token>" header
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		token, err := auth.ExtractBearerToken(header)
		if err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Authentication required").
				WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		actor, err := m.authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Set("userID", actor.UserID)
		c.Next()
	}
}

// RequirePermission gates a route on the resource/action pair. Object-level
// ownership is decided later by the service that loads the object.
func (m *AuthMiddleware) RequirePermission(resource appauth.Resource, action appauth.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := GetActor(c)
		if err := m.permissions.Authorize(c.Request.Context(), actor, resource, action, nil); err != nil {
			HandleAPIError(c, err)
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated caller stored by JWTAuth
func GetActor(c *gin.Context) (*appauth.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(*appauth.Actor)
	return actor, ok && actor != nil
}
