package http

import (
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/lending"
)

func registerLoanRoutes(env *testEnv) {
	lc := NewLoansController(env.engine, env.books, env.users, env.sessions)
	env.router.GET("/emprestimos", lc.Index)
	env.router.GET("/emprestimos/novo", lc.NewLoanPage)
	env.router.POST("/emprestimos/novo", lc.CreateLoan)
	env.router.POST("/emprestimos/devolver/:id", lc.ReturnLoan)
}

func TestLoansController_CreateLoan(t *testing.T) {
	env := setupControllerTest(t)
	registerLoanRoutes(env)

	staff := env.createUser(t, "staff@escola.br", entities.UserRoleLibrarian)
	student := env.createUser(t, "aluno@escola.br", entities.UserRoleStudent)
	book := env.createBook(t, "Dom Casmurro", "9788535910663", 1)

	env.loginAs(staff)

	w := env.postForm("/emprestimos/novo", url.Values{
		"usuario": {strconv.Itoa(int(student.ID))},
		"livro":   {strconv.Itoa(int(book.ID))},
	})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/emprestimos", w.Header().Get("Location"))

	// Stock was decremented
	after, err := env.books.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, after.Quantity)

	t.Run("second loan fails when no copies remain", func(t *testing.T) {
		w := env.postForm("/emprestimos/novo", url.Values{
			"usuario": {strconv.Itoa(int(student.ID))},
			"livro":   {strconv.Itoa(int(book.ID))},
		})
		// Redirects back to the form with a flash message
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/emprestimos/novo", w.Header().Get("Location"))

		after, err := env.books.GetBookByID(book.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, after.Quantity)
	})
}

func TestLoansController_Index(t *testing.T) {
	env := setupControllerTest(t)
	registerLoanRoutes(env)

	staff := env.createUser(t, "staff@escola.br", entities.UserRoleLibrarian)
	student := env.createUser(t, "aluno@escola.br", entities.UserRoleStudent)
	other := env.createUser(t, "outro@escola.br", entities.UserRoleStudent)
	book := env.createBook(t, "Dom Casmurro", "9788535910663", 5)

	actor := lending.Actor{UserID: staff.ID, Role: staff.Role}
	_, err := env.engine.CreateLoan(student.ID, book.ID, actor)
	require.NoError(t, err)
	_, err = env.engine.CreateLoan(other.ID, book.ID, actor)
	require.NoError(t, err)

	t.Run("staff sees every loan", func(t *testing.T) {
		env.loginAs(staff)
		w := env.get("/emprestimos")
		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "Conta de Teste")
		assert.Contains(t, body, `<span class="stat-value">2</span> total`)
	})

	t.Run("student sees only their own loans", func(t *testing.T) {
		env.loginAs(student)
		w := env.get("/emprestimos")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `<span class="stat-value">1</span> total`)
	})
}

func TestLoansController_ReturnLoan(t *testing.T) {
	env := setupControllerTest(t)
	registerLoanRoutes(env)

	staff := env.createUser(t, "staff@escola.br", entities.UserRoleLibrarian)
	student := env.createUser(t, "aluno@escola.br", entities.UserRoleStudent)
	book := env.createBook(t, "Dom Casmurro", "9788535910663", 1)

	loan, err := env.engine.CreateLoan(student.ID, book.ID, lending.Actor{UserID: staff.ID, Role: staff.Role})
	require.NoError(t, err)

	env.loginAs(staff)

	w := env.postForm("/emprestimos/devolver/"+strconv.Itoa(int(loan.ID)), nil)
	assert.Equal(t, http.StatusFound, w.Code)

	after, err := env.books.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, after.Quantity)

	t.Run("unknown loan returns 404", func(t *testing.T) {
		w := env.postForm("/emprestimos/devolver/999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
