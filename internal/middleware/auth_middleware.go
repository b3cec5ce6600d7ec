package middleware

import (
	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/alumnet/internal/app/auth"
	"github.com/yigit/alumnet/internal/app/models"
	"github.com/yigit/alumnet/internal/pkg/apperrors"
	"github.com/yigit/alumnet/internal/pkg/auth"
)

const actorContextKey = "actor"

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	jwtService *auth.JWTService
	resolver   *appauth.ActorResolver
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, resolver *appauth.ActorResolver) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		resolver:   resolver,
	}
}

// RequireUser admits members only
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return m.require(appauth.ModeUser)
}

// RequireAdmin admits admins only
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return m.require(appauth.ModeAdmin)
}

// RequireActor admits members and admins
func (m *AuthMiddleware) RequireActor() gin.HandlerFunc {
	return m.require(appauth.ModeAny)
}

func (m *AuthMiddleware) require(mode appauth.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		actor, err := m.resolver.Resolve(c.Request.Context(), claims, mode)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// CurrentActor returns the principal stored by the auth middleware
func CurrentActor(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorContextKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// MustActor returns the current actor or writes a 401 and aborts
func MustActor(c *gin.Context) (models.Actor, bool) {
	actor, ok := CurrentActor(c)
	if !ok {
		HandleAPIError(c, apperrors.NewUnauthenticatedError("Authentication required"))
		c.Abort()
		return nil, false
	}
	return actor, true
}

// SetActor stores actor on the context. Used by tests that bypass token parsing.
func SetActor(c *gin.Context, actor models.Actor) {
	c.Set(actorContextKey, actor)
}
