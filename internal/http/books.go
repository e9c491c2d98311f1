package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/auth"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/catalog"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/books"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/tasks"
)

// BooksController handles the catalog screens: the acervo listing and
// the create/edit/delete forms.
type BooksController struct {
	books      *books.Repository
	catalog    *catalog.Service
	sessions   *auth.SessionManager
	taskClient *tasks.Client
}

// NewBooksController creates a new BooksController. taskClient may be
// nil; author cleanup is then skipped.
func NewBooksController(repo *books.Repository, svc *catalog.Service, sm *auth.SessionManager, taskClient *tasks.Client) *BooksController {
	return &BooksController{
		books:      repo,
		catalog:    svc,
		sessions:   sm,
		taskClient: taskClient,
	}
}

// enqueueAuthorCleanup schedules removal of authors that lost their
// last book after an edit or deletion.
func (bc *BooksController) enqueueAuthorCleanup() {
	if bc.taskClient == nil {
		return
	}
	if _, err := bc.taskClient.Add(tasks.CleanupOrphanAuthorsTask{}).Save(); err != nil {
		log.Printf("failed to enqueue author cleanup: %v", err)
	}
}

// Index renders the acervo: the searchable book list plus collection
// totals. The totals always cover the whole collection, regardless of
// the active search filter.
func (bc *BooksController) Index(c *gin.Context) {
	query := c.Query("q")

	list, err := bc.books.ListBooks(query)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	stats, err := bc.books.GetAcervoStats()
	if err != nil {
		respondInternalError(c, err, "acervo stats")
		return
	}

	render(c, bc.sessions, http.StatusOK, "book_list", gin.H{
		"Books": list,
		"Stats": stats,
	})
}

// NewBookPage renders the registration form for a new book.
func (bc *BooksController) NewBookPage(c *gin.Context) {
	categories, err := bc.books.GetAllCategories()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}

	render(c, bc.sessions, http.StatusOK, "book_form", gin.H{
		"Title":      "Cadastrar livro",
		"Action":     "/cadastrar",
		"Categories": categories,
		"Form":       catalog.BookInput{},
		"Errors":     catalog.FieldErrors{},
	})
}

// CreateBook handles the new-book form submission.
func (bc *BooksController) CreateBook(c *gin.Context) {
	in := bookInputFromForm(c)

	_, err := bc.catalog.CreateBook(in)
	if err != nil {
		bc.renderBookForm(c, "Cadastrar livro", "/cadastrar", in, err)
		return
	}

	bc.sessions.Flash(c.Request, "Livro cadastrado com sucesso.")
	c.Redirect(http.StatusFound, "/")
}

// EditBookPage renders the edit form pre-filled with the current data.
func (bc *BooksController) EditBookPage(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.String(http.StatusNotFound, "Livro não encontrado")
		return
	}

	book, err := bc.books.GetBookByID(id)
	if err != nil {
		c.String(http.StatusNotFound, "Livro não encontrado")
		return
	}

	categories, err := bc.books.GetAllCategories()
	if err != nil {
		respondInternalError(c, err, "list categories")
		return
	}

	form := catalog.BookInput{
		Title:           book.Title,
		AuthorName:      book.Author.Name,
		ISBN:            book.ISBN,
		CategoryID:      book.CategoryID,
		PublicationYear: book.PublicationYear,
		Quantity:        book.Quantity,
	}

	render(c, bc.sessions, http.StatusOK, "book_form", gin.H{
		"Title":      "Editar livro",
		"Action":     "/editar/" + strconv.FormatUint(uint64(id), 10),
		"Categories": categories,
		"Form":       form,
		"Errors":     catalog.FieldErrors{},
	})
}

// UpdateBook handles the edit form submission.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.String(http.StatusNotFound, "Livro não encontrado")
		return
	}

	in := bookInputFromForm(c)

	_, err = bc.catalog.UpdateBook(id, in)
	if err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			c.String(http.StatusNotFound, "Livro não encontrado")
			return
		}
		bc.renderBookForm(c, "Editar livro", "/editar/"+strconv.FormatUint(uint64(id), 10), in, err)
		return
	}

	bc.enqueueAuthorCleanup()
	bc.sessions.Flash(c.Request, "Livro atualizado com sucesso.")
	c.Redirect(http.StatusFound, "/")
}

// DeleteBook removes a book from the catalog.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		c.String(http.StatusNotFound, "Livro não encontrado")
		return
	}

	if err := bc.catalog.DeleteBook(id); err != nil {
		if errors.Is(err, catalog.ErrBookNotFound) {
			c.String(http.StatusNotFound, "Livro não encontrado")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	bc.enqueueAuthorCleanup()
	bc.sessions.Flash(c.Request, "Livro removido do acervo.")
	c.Redirect(http.StatusFound, "/")
}

// renderBookForm re-renders the form after a failed submission,
// preserving the typed values and showing field messages.
func (bc *BooksController) renderBookForm(c *gin.Context, title, action string, in catalog.BookInput, err error) {
	fieldErrors, ok := fieldErrorsOf(err)
	if !ok {
		respondInternalError(c, err, "save book")
		return
	}

	categories, catErr := bc.books.GetAllCategories()
	if catErr != nil {
		respondInternalError(c, catErr, "list categories")
		return
	}

	render(c, bc.sessions, http.StatusUnprocessableEntity, "book_form", gin.H{
		"Title":      title,
		"Action":     action,
		"Categories": categories,
		"Form":       in,
		"Errors":     fieldErrors,
	})
}

// bookInputFromForm maps the posted form fields onto a BookInput.
// Malformed numbers come through as zero and fail validation with a
// field message instead of a 400.
func bookInputFromForm(c *gin.Context) catalog.BookInput {
	categoryID, _ := strconv.ParseUint(c.PostForm("categoria"), 10, 32)
	year, _ := strconv.Atoi(c.PostForm("ano_publicacao"))
	quantity, _ := strconv.Atoi(c.PostForm("quantidade"))

	return catalog.BookInput{
		Title:           c.PostForm("titulo"),
		AuthorName:      c.PostForm("autor"),
		ISBN:            c.PostForm("isbn"),
		CategoryID:      uint(categoryID),
		PublicationYear: year,
		Quantity:        quantity,
	}
}
