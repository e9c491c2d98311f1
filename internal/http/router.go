package http

import (
	"html/template"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	router.SetHTMLTemplate(loadTemplates(cfg.TemplatesPath))

	router.Static("/static", cfg.StaticPath)

	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.RateLimiter)
	booksController := NewBooksController(cfg.Books, cfg.Catalog, cfg.SessionManager, cfg.TaskClient)
	loansController := NewLoansController(cfg.Lending, cfg.Books, cfg.Users, cfg.SessionManager)
	reservationsController := NewReservationsController(cfg.Lending, cfg.SessionManager)
	usersController := NewUsersController(cfg.AuthService, cfg.Users, cfg.SessionManager)

	router.GET("/health", health.Status)

	// Login, logout and self-registration
	login := router.Group("/login")
	if cfg.RateLimiter != nil {
		login.Use(cfg.RateLimiter.RateLimitMiddleware())
	}
	login.GET("", authController.LoginPage)
	login.POST("", authController.Login)
	router.POST("/logout", authController.Logout)
	router.GET("/registrar", authController.RegisterPage)
	router.POST("/registrar", authController.Register)

	// Screens every authenticated user can reach
	router.GET("/", booksController.Index)
	router.GET("/emprestimos", loansController.Index)
	router.POST("/reservar/:id", reservationsController.Reserve)

	// Librarian and admin screens
	staff := router.Group("/")
	if cfg.AuthMiddleware != nil {
		staff.Use(cfg.AuthMiddleware.RequireStaff())
	}
	staff.GET("/cadastrar", booksController.NewBookPage)
	staff.POST("/cadastrar", booksController.CreateBook)
	staff.GET("/editar/:id", booksController.EditBookPage)
	staff.POST("/editar/:id", booksController.UpdateBook)
	staff.POST("/remover/:id", booksController.DeleteBook)
	staff.GET("/emprestimos/novo", loansController.NewLoanPage)
	staff.POST("/emprestimos/novo", loansController.CreateLoan)
	staff.POST("/emprestimos/devolver/:id", loansController.ReturnLoan)
	staff.GET("/reservas", reservationsController.Index)
	staff.POST("/reservas/validar/:id", reservationsController.Validate)

	// Account management
	admin := router.Group("/usuarios")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
	}
	admin.GET("", usersController.Index)
	admin.GET("/adicionar", usersController.AddPage)
	admin.POST("/adicionar", usersController.Add)
	admin.GET("/editar/:id", usersController.EditPage)
	admin.POST("/editar/:id", usersController.Edit)

	return router
}

// loadTemplates parses the HTML templates with the helper functions the
// loan and reservation screens use.
func loadTemplates(templatesPath string) *template.Template {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("02/01/2006 15:04")
		},
		"formatDatePtr": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("02/01/2006")
		},
		"loanStatus": func(l entities.Loan) entities.LoanStatus {
			return l.Status(time.Now())
		},
	}
	return template.Must(template.New("").Funcs(funcMap).ParseGlob(templatesPath + "/*.html"))
}
