package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/toolshed/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyUser     = "auth_user"
)

// UserStore resolves session identifiers back to full user records.
type UserStore interface {
	GetByID(id uint) (*entities.User, error)
}

// Middleware provides the route access gates: RequireAuth for pages that
// need a bound identity and RequireGuest for pages that must only be
// reachable while logged out.
type Middleware struct {
	users UserStore
	sm    *SessionManager
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(users UserStore, sm *SessionManager) *Middleware {
	return &Middleware{users: users, sm: sm}
}

// LoadUser resolves the session's user ID into the full record and stores it
// in the Gin context for downstream handlers. Anonymous requests pass
// through untouched. A session pointing at a deleted user is treated as
// anonymous.
func (m *Middleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := m.sm.GetUserID(c.Request)
		if userID == 0 {
			c.Next()
			return
		}

		user, err := m.users.GetByID(userID)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUsername, user.Username)
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests: browsers are redirected to the
// login page, API clients get a 401.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) != 0 {
			c.Next()
			return
		}

		if isAPIRequest(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}

// RequireGuest rejects requests that already carry a bound identity by
// redirecting them to the landing page. Used on the signup and login routes.
func (m *Middleware) RequireGuest() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == 0 {
			c.Next()
			return
		}

		c.Redirect(http.StatusFound, "/")
		c.Abort()
	}
}

// isAPIRequest determines if this is an API request vs web browser request.
func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// Helper functions to extract auth data from Gin context

// GetUserID retrieves the authenticated user's ID from the context.
// Returns 0 for anonymous requests.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// CurrentUser retrieves the authenticated user's record from the context.
// Returns nil for anonymous requests.
func CurrentUser(c *gin.Context) *entities.User {
	if u, exists := c.Get(ContextKeyUser); exists {
		if user, ok := u.(*entities.User); ok {
			return user
		}
	}
	return nil
}

// IsAuthenticated returns true if the request carries a bound identity.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != 0
}
