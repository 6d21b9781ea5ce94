// internal/interfaces/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"

	"github.com/Lizasatasiya/Zelie-web/internal/domain/identity"
	"github.com/Lizasatasiya/Zelie-web/internal/pkg/auth"
	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	userIDKey   = "user_id"
	tokenKey    = "access_token"
)

// Authenticator resolves a bearer token to an identity
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*identity.Identity, error)
}

// IdentityResolver records the identity seen for a browser session
type IdentityResolver interface {
	Resolve(sessionID string, ident *identity.Identity)
}

// OptionalAuth resolves the caller's identity when a valid bearer token is
// present and reports it, or its absence, for the browser session. It never
// rejects a request.
func OptionalAuth(authn Authenticator, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ident *identity.Identity

		if token := auth.ExtractTokenFromHeader(c.GetHeader("Authorization")); token != "" {
			if resolved, err := authn.Authenticate(c.Request.Context(), token); err == nil {
				ident = resolved
				c.Set(identityKey, ident)
				c.Set(userIDKey, ident.UID)
				c.Set(tokenKey, token)
			}
		}

		if sessionID := GetSessionID(c); sessionID != "" {
			resolver.Resolve(sessionID, ident)
		}

		c.Next()
	}
}

// RequireAuth rejects requests that OptionalAuth did not authenticate
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity returns the authenticated identity or nil
func GetIdentity(c *gin.Context) *identity.Identity {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil
	}
	ident, _ := v.(*identity.Identity)
	return ident
}

// GetAccessToken returns the bearer token that authenticated the request
func GetAccessToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
