package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
)

// AuthController handles login, logout and student self-registration.
type AuthController struct {
	service     *auth.Service
	sessions    *auth.SessionManager
	rateLimiter *auth.RateLimiter
}

// NewAuthController creates a new AuthController.
func NewAuthController(service *auth.Service, sm *auth.SessionManager, rl *auth.RateLimiter) *AuthController {
	return &AuthController{
		service:     service,
		sessions:    sm,
		rateLimiter: rl,
	}
}

// LoginPage renders the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	if ac.sessions.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	render(c, ac.sessions, http.StatusOK, "login", gin.H{
		"Next":  c.Query("next"),
		"Error": c.Query("error"),
	})
}

// Login handles the login form submission.
func (ac *AuthController) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	next := c.PostForm("next")

	user, err := ac.service.Authenticate(email, password)
	if err != nil {
		if ac.rateLimiter != nil {
			ac.rateLimiter.RecordFailure(c.ClientIP(), email)
		}
		render(c, ac.sessions, http.StatusUnauthorized, "login", gin.H{
			"Next":  next,
			"Email": email,
			"Error": loginErrorMessage(err),
		})
		return
	}

	if ac.rateLimiter != nil {
		ac.rateLimiter.RecordSuccess(c.ClientIP(), email)
	}

	if err := ac.sessions.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, err, "create session")
		return
	}

	c.Redirect(http.StatusFound, safeNext(next))
}

// Logout destroys the session and sends the user back to the login page.
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.sessions.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "destroy session")
		return
	}
	c.Redirect(http.StatusFound, "/login")
}

// RegisterPage renders the student self-registration form.
func (ac *AuthController) RegisterPage(c *gin.Context) {
	if ac.sessions.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	render(c, ac.sessions, http.StatusOK, "register", gin.H{
		"Form": auth.RegisterInput{},
	})
}

// Register creates a STUDENT account from the public form and sends the
// new user to the login screen.
func (ac *AuthController) Register(c *gin.Context) {
	if ac.sessions.IsAuthenticated(c.Request) {
		c.Redirect(http.StatusFound, "/")
		return
	}

	in := auth.RegisterInput{
		FirstName:       c.PostForm("first_name"),
		LastName:        c.PostForm("last_name"),
		Email:           c.PostForm("email"),
		Matricula:       c.PostForm("matricula"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("password_confirm"),
	}

	if _, err := ac.service.Register(in); err != nil {
		render(c, ac.sessions, http.StatusUnprocessableEntity, "register", gin.H{
			"Form":  in,
			"Error": registerErrorMessage(err),
		})
		return
	}

	ac.sessions.Flash(c.Request, "Conta criada. Faça login para continuar.")
	c.Redirect(http.StatusFound, "/login")
}

// safeNext keeps post-login redirects inside the application.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrAccountLocked):
		return "Conta bloqueada por excesso de tentativas. Tente novamente mais tarde."
	case errors.Is(err, auth.ErrAccountInactive):
		return "Esta conta está desativada."
	default:
		return "E-mail ou senha incorretos."
	}
}

func registerErrorMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrPasswordMismatch):
		return "As senhas não coincidem."
	case errors.Is(err, auth.ErrEmailTaken):
		return "Já existe uma conta com este e-mail."
	case errors.Is(err, auth.ErrEmailRequired), errors.Is(err, auth.ErrEmailInvalid):
		return "Informe um e-mail válido."
	case errors.Is(err, auth.ErrNameRequired):
		return "Informe o seu nome."
	case errors.Is(err, auth.ErrPasswordRequired):
		return "Informe uma senha."
	case errors.Is(err, auth.ErrPasswordTooShort):
		return "A senha deve ter pelo menos 8 caracteres."
	default:
		return "Não foi possível concluir o cadastro."
	}
}
