package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUser   = "auth_user"
	ContextKeyUserID = "auth_user_id"
)

// Middleware authenticates HTTP requests against the session store.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	publicPaths    map[string]bool
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	publicPaths := map[string]bool{
		"/health":      true,
		"/login":       true,
		"/registrar":   true,
		"/static":      true, // Static files prefix
		"/favicon.ico": true,
	}

	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		publicPaths:    publicPaths,
	}
}

// Handler returns a gin middleware that authenticates every request.
// Unauthenticated web requests are redirected to the login page.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		userID := m.sessionManager.GetUserID(c.Request)
		if userID != 0 {
			user, err := m.service.GetUserByID(userID)
			if err == nil && user.Active {
				c.Set(ContextKeyUser, user)
				c.Set(ContextKeyUserID, user.ID)
				c.Next()
				return
			}
		}

		c.Redirect(http.StatusFound, "/login?next="+c.Request.URL.Path)
		c.Abort()
	}
}

// isPublicPath checks whether the path skips authentication.
func (m *Middleware) isPublicPath(path string) bool {
	if m.publicPaths[path] {
		return true
	}
	// Trailing-slash variants and prefixed static assets
	trimmed := strings.TrimSuffix(path, "/")
	if trimmed != path && m.publicPaths[trimmed] {
		return true
	}
	return strings.HasPrefix(path, "/static/")
}

// CurrentUser extracts the authenticated user from the gin context.
func CurrentUser(c *gin.Context) (*entities.User, bool) {
	value, exists := c.Get(ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*entities.User)
	return user, ok
}

// RequireStaff gates a route group to librarians and admins. Students
// are sent back to the book list with a flash message.
func (m *Middleware) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || (user.Role == entities.UserRoleStudent && !user.Superuser) {
			m.sessionManager.Flash(c.Request, "Você não tem permissão para acessar esta página.")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin gates a route group to admins and superusers.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin() {
			m.sessionManager.Flash(c.Request, "Acesso restrito a administradores.")
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
