package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie used by the form flow; API clients send the
// same token as "Authorization: Bearer <token>".
const SessionCookie = "session_token"

// ResolveCaller reads the session token from the request and, when it maps
// to a live session, stores the caller's user id in the context. Anonymous
// requests pass through untouched.
func ResolveCaller(store *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token != "" {
			if userID, ok := store.Resolve(token); ok {
				c.Set("user_id", userID)
				c.Set("session_token", token)
			}
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous callers with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetUserID(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Not logged in",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the user ID from the context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}

	id, ok := userID.(uint)
	return id, ok
}

// GetSessionToken retrieves the caller's session token from the context
func GetSessionToken(c *gin.Context) (string, bool) {
	tok, exists := c.Get("session_token")
	if !exists {
		return "", false
	}

	token, ok := tok.(string)
	return token, ok
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}

	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}

	return ""
}
