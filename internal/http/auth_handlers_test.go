package http

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

func registerAuthRoutes(env *testEnv) {
	ac := NewAuthController(env.authService, env.sessions, nil)
	env.router.GET("/login", ac.LoginPage)
	env.router.POST("/login", ac.Login)
	env.router.POST("/logout", ac.Logout)
	env.router.GET("/registrar", ac.RegisterPage)
	env.router.POST("/registrar", ac.Register)
}

func TestAuthController_Login(t *testing.T) {
	env := setupControllerTest(t)
	registerAuthRoutes(env)

	env.createUser(t, "ana@escola.br", entities.UserRoleLibrarian)

	t.Run("valid credentials redirect home", func(t *testing.T) {
		w := env.postForm("/login", url.Values{
			"email":    {"ana@escola.br"},
			"password": {"password12345"},
		})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		// Session cookie issued
		assert.NotEmpty(t, w.Header().Get("Set-Cookie"))
	})

	t.Run("next parameter is honoured when local", func(t *testing.T) {
		w := env.postForm("/login", url.Values{
			"email":    {"ana@escola.br"},
			"password": {"password12345"},
			"next":     {"/emprestimos"},
		})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/emprestimos", w.Header().Get("Location"))
	})

	t.Run("external next parameter is discarded", func(t *testing.T) {
		w := env.postForm("/login", url.Values{
			"email":    {"ana@escola.br"},
			"password": {"password12345"},
			"next":     {"//evil.example.com"},
		})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("wrong password re-renders with an error", func(t *testing.T) {
		w := env.postForm("/login", url.Values{
			"email":    {"ana@escola.br"},
			"password": {"wrong-password"},
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "E-mail ou senha incorretos.")
	})
}

func TestAuthController_Register(t *testing.T) {
	env := setupControllerTest(t)
	registerAuthRoutes(env)

	t.Run("creates a student and sends them to the login page", func(t *testing.T) {
		w := env.postForm("/registrar", url.Values{
			"first_name":       {"João"},
			"last_name":        {"Silva"},
			"email":            {"joao@escola.br"},
			"matricula":        {"20260002"},
			"password":         {"password12345"},
			"password_confirm": {"password12345"},
		})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))

		created, err := env.users.GetUserByEmail("joao@escola.br")
		require.NoError(t, err)
		assert.Equal(t, entities.UserRoleStudent, created.Role)

		// Registration must not log the new user in: replaying the
		// response's session cookie on a second registration still goes
		// through instead of bouncing an authenticated user.
		w2 := env.postFormWithCookie("/registrar", url.Values{
			"first_name":       {"José"},
			"email":            {"jose@escola.br"},
			"password":         {"password12345"},
			"password_confirm": {"password12345"},
		}, sessionCookie(w))
		assert.Equal(t, http.StatusFound, w2.Code)
		assert.Equal(t, "/login", w2.Header().Get("Location"))
	})

	t.Run("authenticated users are bounced without creating an account", func(t *testing.T) {
		env.createUser(t, "bibliotecaria@escola.br", entities.UserRoleLibrarian)
		login := env.postForm("/login", url.Values{
			"email":    {"bibliotecaria@escola.br"},
			"password": {"password12345"},
		})
		require.Equal(t, http.StatusFound, login.Code)
		cookie := sessionCookie(login)
		require.NotEmpty(t, cookie)

		w := env.postFormWithCookie("/registrar", url.Values{
			"first_name":       {"Intruso"},
			"email":            {"intruso@escola.br"},
			"password":         {"password12345"},
			"password_confirm": {"password12345"},
		}, cookie)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		_, err := env.users.GetUserByEmail("intruso@escola.br")
		assert.Error(t, err)
	})

	t.Run("password mismatch re-renders the form", func(t *testing.T) {
		w := env.postForm("/registrar", url.Values{
			"first_name":       {"Maria"},
			"email":            {"maria@escola.br"},
			"password":         {"password12345"},
			"password_confirm": {"different12345"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "As senhas não coincidem.")
	})
}

func TestAuthController_LoginPage(t *testing.T) {
	env := setupControllerTest(t)
	registerAuthRoutes(env)

	w := env.get("/login")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Entrar")
}
