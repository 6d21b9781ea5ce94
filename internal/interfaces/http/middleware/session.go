// internal/interfaces/http/middleware/session.go
package middleware

import (
	"net/http"

	"github.com/Lizasatasiya/Zelie-web/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie carries the browser session id
	SessionCookie = "zelie_session"
	// SessionHeader lets non-browser clients supply the session id
	SessionHeader = "X-Session-ID"

	sessionKey    = "session_id"
	sessionMaxAge = 30 * 24 * 60 * 60
)

// Session makes sure every request belongs to a browser session. Cart,
// wishlist, popups and checkouts are all keyed by it.
func Session(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			sessionID, _ = c.Cookie(SessionCookie)
		}

		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, sessionID, sessionMaxAge, "/", "", cfg.Security.SecureCookies, true)
		c.Header(SessionHeader, sessionID)
		c.Set(sessionKey, sessionID)

		c.Next()
	}
}

// GetSessionID returns the request's browser session id
func GetSessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
