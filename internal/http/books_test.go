package http

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

func registerBookRoutes(env *testEnv) {
	bc := NewBooksController(env.books, env.catalog, env.sessions, nil)
	env.router.GET("/", bc.Index)
	env.router.GET("/cadastrar", bc.NewBookPage)
	env.router.POST("/cadastrar", bc.CreateBook)
	env.router.GET("/editar/:id", bc.EditBookPage)
	env.router.POST("/editar/:id", bc.UpdateBook)
	env.router.POST("/remover/:id", bc.DeleteBook)
}

func TestBooksController_Index(t *testing.T) {
	env := setupControllerTest(t)
	registerBookRoutes(env)
	env.loginAs(env.createUser(t, "staff@escola.br", entities.UserRoleLibrarian))

	env.createBook(t, "Dom Casmurro", "9788535910663", 3)
	env.createBook(t, "Quincas Borba", "9788535910664", 1)

	t.Run("lists books with collection totals", func(t *testing.T) {
		w := env.get("/")
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Dom Casmurro")
		assert.Contains(t, body, "Quincas Borba")
		assert.Contains(t, body, "Machado de Assis")
	})

	t.Run("search filters the list but not the totals", func(t *testing.T) {
		w := env.get("/?q=casmurro")
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Dom Casmurro")
		assert.NotContains(t, body, "Quincas Borba")
		// 2 titles, 4 copies regardless of the filter
		assert.Contains(t, body, `<span class="stat-value">2</span> títulos`)
		assert.Contains(t, body, `<span class="stat-value">4</span> exemplares`)
	})
}

func TestBooksController_CreateBook(t *testing.T) {
	env := setupControllerTest(t)
	registerBookRoutes(env)
	env.loginAs(env.createUser(t, "staff@escola.br", entities.UserRoleLibrarian))

	t.Run("valid form creates the book and redirects", func(t *testing.T) {
		w := env.postForm("/cadastrar", url.Values{
			"titulo":         {"Memórias Póstumas"},
			"autor":          {"Machado de Assis"},
			"isbn":           {"978-85-359-1066-5"},
			"categoria":      {"1"},
			"ano_publicacao": {"1881"},
			"quantidade":     {"2"},
		})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		list, err := env.books.ListBooks("Memórias")
		require.NoError(t, err)
		require.Len(t, list, 1)
		// ISBN stored normalized
		assert.Equal(t, "9788535910665", list[0].ISBN)
	})

	t.Run("invalid form re-renders with field messages", func(t *testing.T) {
		w := env.postForm("/cadastrar", url.Values{
			"titulo":         {""},
			"autor":          {"Machado de Assis"},
			"isbn":           {"123"},
			"categoria":      {"1"},
			"ano_publicacao": {"1881"},
			"quantidade":     {"2"},
		})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Título é obrigatório")
		// Typed values survive the round trip
		assert.Contains(t, body, "Machado de Assis")
	})
}

func TestBooksController_UpdateBook(t *testing.T) {
	env := setupControllerTest(t)
	registerBookRoutes(env)
	env.loginAs(env.createUser(t, "staff@escola.br", entities.UserRoleLibrarian))

	book := env.createBook(t, "Dom Casmurro", "9788535910663", 3)

	w := env.postForm("/editar/1", url.Values{
		"titulo":         {"Dom Casmurro (edição revista)"},
		"autor":          {"Machado de Assis"},
		"isbn":           {book.ISBN},
		"categoria":      {"1"},
		"ano_publicacao": {"1899"},
		"quantidade":     {"5"},
	})
	assert.Equal(t, http.StatusFound, w.Code)

	updated, err := env.books.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dom Casmurro (edição revista)", updated.Title)
	assert.Equal(t, 5, updated.Quantity)
}

func TestBooksController_DeleteBook(t *testing.T) {
	env := setupControllerTest(t)
	registerBookRoutes(env)
	env.loginAs(env.createUser(t, "staff@escola.br", entities.UserRoleLibrarian))

	book := env.createBook(t, "Dom Casmurro", "9788535910663", 3)

	w := env.postForm("/remover/1", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	_, err := env.books.GetBookByID(book.ID)
	assert.Error(t, err)

	t.Run("unknown id returns 404", func(t *testing.T) {
		w := env.postForm("/remover/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
