package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/books"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/users"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/lending"
)

// LoansController handles the loan screens: listing with status
// counters, registering a loan and registering a return.
type LoansController struct {
	engine   *lending.Engine
	books    *books.Repository
	users    *users.Repository
	sessions *auth.SessionManager
}

// NewLoansController creates a new LoansController.
func NewLoansController(engine *lending.Engine, bookRepo *books.Repository, userRepo *users.Repository, sm *auth.SessionManager) *LoansController {
	return &LoansController{
		engine:   engine,
		books:    bookRepo,
		users:    userRepo,
		sessions: sm,
	}
}

// Index renders the loan list. Students only see their own loans; the
// counters cover the filtered result set.
func (lc *LoansController) Index(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	query := c.Query("q")
	loans, counts, err := lc.engine.ListLoans(actorFrom(user), query)
	if err != nil {
		respondInternalError(c, err, "list loans")
		return
	}

	render(c, lc.sessions, http.StatusOK, "loan_list", gin.H{
		"Loans":  loans,
		"Counts": counts,
	})
}

// NewLoanPage renders the loan registration form with the borrower and
// book pickers.
func (lc *LoansController) NewLoanPage(c *gin.Context) {
	borrowers, err := lc.users.ActiveUsers()
	if err != nil {
		respondInternalError(c, err, "list borrowers")
		return
	}

	available, err := lc.books.AvailableBooks()
	if err != nil {
		respondInternalError(c, err, "list available books")
		return
	}

	render(c, lc.sessions, http.StatusOK, "loan_form", gin.H{
		"Borrowers": borrowers,
		"Books":     available,
	})
}

// CreateLoan registers a loan, decrementing the book's stock.
func (lc *LoansController) CreateLoan(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	borrowerID, err := strconv.ParseUint(c.PostForm("usuario"), 10, 32)
	if err != nil {
		lc.sessions.Flash(c.Request, "Selecione um usuário.")
		c.Redirect(http.StatusFound, "/emprestimos/novo")
		return
	}
	bookID, err := strconv.ParseUint(c.PostForm("livro"), 10, 32)
	if err != nil {
		lc.sessions.Flash(c.Request, "Selecione um livro.")
		c.Redirect(http.StatusFound, "/emprestimos/novo")
		return
	}

	_, err = lc.engine.CreateLoan(uint(borrowerID), uint(bookID), actorFrom(user))
	if err != nil {
		lc.sessions.Flash(c.Request, loanErrorMessage(err))
		c.Redirect(http.StatusFound, "/emprestimos/novo")
		return
	}

	lc.sessions.Flash(c.Request, "Empréstimo registrado com sucesso.")
	c.Redirect(http.StatusFound, "/emprestimos")
}

// ReturnLoan registers the return of a loan, restoring stock. Returning
// an already returned loan is a no-op.
func (lc *LoansController) ReturnLoan(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c)
	if err != nil {
		c.String(http.StatusNotFound, "Empréstimo não encontrado")
		return
	}

	_, err = lc.engine.ReturnLoan(id, actorFrom(user))
	if err != nil {
		if errors.Is(err, lending.ErrNotFound) {
			c.String(http.StatusNotFound, "Empréstimo não encontrado")
			return
		}
		lc.sessions.Flash(c.Request, loanErrorMessage(err))
		c.Redirect(http.StatusFound, "/emprestimos")
		return
	}

	lc.sessions.Flash(c.Request, "Devolução registrada.")
	c.Redirect(http.StatusFound, "/emprestimos")
}

func loanErrorMessage(err error) string {
	switch {
	case errors.Is(err, lending.ErrOutOfStock):
		return "Não há exemplares disponíveis deste livro."
	case errors.Is(err, lending.ErrForbidden):
		return "Você não tem permissão para esta operação."
	case errors.Is(err, lending.ErrNotFound):
		return "Registro não encontrado."
	default:
		return "Não foi possível concluir a operação."
	}
}
