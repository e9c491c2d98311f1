package http

import (
	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/catalog"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/books"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/users"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/lending"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Books    *books.Repository
	Users    *users.Repository
	Catalog  *catalog.Service
	Lending  *lending.Engine

	// Background jobs (may be nil when the queue is disabled)
	TaskClient *tasks.Client

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	RateLimiter    *auth.RateLimiter
	CSRFSecret     []byte
	SecureCookies  bool

	// UI paths
	TemplatesPath string
	StaticPath    string

	// Application info
	Version string
}
