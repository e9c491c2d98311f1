package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/catalog"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/config"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/books"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/users"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/lending"
)

// testEnv wires real repositories and services over a temp database,
// with the session middleware active and a switchable current user.
type testEnv struct {
	db          *database.Database
	router      *gin.Engine
	sessions    *auth.SessionManager
	books       *books.Repository
	users       *users.Repository
	catalog     *catalog.Service
	engine      *lending.Engine
	authService *auth.Service

	currentUser *entities.User
}

func setupControllerTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath + "?_busy_timeout=10000")
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	sessions, err := auth.NewSessionManager(sqlDB, config.Auth{SessionLifetime: time.Hour})
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		sessions: sessions,
		books:    books.NewRepository(db.DB),
		users:    users.NewRepository(db.DB),
	}
	env.catalog = catalog.NewService(env.books)
	env.engine = lending.NewEngine(db.DB, lending.Config{})
	env.authService = auth.NewService(env.users, config.Auth{BcryptCost: 4})

	router := gin.New()
	router.SetHTMLTemplate(loadTemplates("../../templates"))
	router.Use(sessions.SessionLoadSave())
	router.Use(func(c *gin.Context) {
		if env.currentUser != nil {
			c.Set(auth.ContextKeyUser, env.currentUser)
			c.Set(auth.ContextKeyUserID, env.currentUser.ID)
		}
		c.Next()
	})
	env.router = router

	return env
}

// loginAs makes every subsequent request run as the given user.
func (env *testEnv) loginAs(user *entities.User) {
	env.currentUser = user
}

func (env *testEnv) createUser(t *testing.T, email string, role entities.UserRole) *entities.User {
	t.Helper()
	user, err := env.authService.CreateUser(auth.CreateUserInput{
		FirstName: "Conta",
		LastName:  "de Teste",
		Email:     email,
		Matricula: "20260001",
		Password:  "password12345",
		Role:      role,
		Active:    true,
	})
	require.NoError(t, err)
	return user
}

func (env *testEnv) createBook(t *testing.T, title, isbn string, quantity int) *entities.Book {
	t.Helper()
	book, err := env.catalog.CreateBook(catalog.BookInput{
		Title:           title,
		AuthorName:      "Machado de Assis",
		ISBN:            isbn,
		CategoryID:      1,
		PublicationYear: 1899,
		Quantity:        quantity,
	})
	require.NoError(t, err)
	return book
}

func (env *testEnv) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", path, nil)
	env.router.ServeHTTP(w, req)
	return w
}

func (env *testEnv) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return env.postFormWithCookie(path, form, "")
}

// postFormWithCookie replays a session cookie captured from an earlier
// response, for flows that depend on real session state.
func (env *testEnv) postFormWithCookie(path string, form url.Values, cookie string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	env.router.ServeHTTP(w, req)
	return w
}

// sessionCookie extracts the session cookie pair from a response.
func sessionCookie(w *httptest.ResponseRecorder) string {
	for _, raw := range w.Result().Header.Values("Set-Cookie") {
		if strings.HasPrefix(raw, "session=") {
			return strings.SplitN(raw, ";", 2)[0]
		}
	}
	return ""
}
