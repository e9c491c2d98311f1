// Package catalog manages books, authors and categories: validation of
// catalog entries and author-name-to-identity resolution.
package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

// ErrBookNotFound is returned when the book id does not exist.
var ErrBookNotFound = errors.New("book not found")

// MinPublicationYear is the oldest accepted publication year.
const MinPublicationYear = 1000

// Store is the persistence surface the catalog service needs. The
// books repository implements it.
type Store interface {
	GetBookByID(id uint) (*entities.Book, error)
	CreateBook(book *entities.Book) error
	UpdateBook(book *entities.Book) error
	DeleteBook(id uint) error
	ISBNTaken(isbn string, excludeID uint) (bool, error)
	ResolveAuthor(name string) (*entities.Author, error)
	GetCategoryByID(id uint) (*entities.Category, error)
}

// BookInput is the raw form submission for creating or editing a book.
// The author arrives as free text and is resolved to an identity on
// save.
type BookInput struct {
	Title           string
	AuthorName      string
	ISBN            string
	CategoryID      uint
	PublicationYear int
	Quantity        int
}

// FieldErrors maps form field names to validation messages. A non-empty
// map is an error; no writes happen while any field is invalid.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return "invalid fields: " + strings.Join(fields, ", ")
}

// Service validates and persists catalog entries.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a catalog service.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// NormalizeISBN strips hyphens and spaces and validates the result:
// all digits, length exactly 10 or 13.
func NormalizeISBN(raw string) (string, error) {
	isbn := strings.ReplaceAll(raw, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")

	if isbn == "" {
		return "", errors.New("ISBN é obrigatório")
	}
	for _, r := range isbn {
		if r < '0' || r > '9' {
			return "", errors.New("ISBN deve conter apenas números")
		}
	}
	if len(isbn) != 10 && len(isbn) != 13 {
		return "", errors.New("ISBN deve ter 10 ou 13 números")
	}
	return isbn, nil
}

// validate checks every field and returns the cleaned input. excludeID
// is the book being edited, so its own ISBN does not count as taken.
func (s *Service) validate(in BookInput, excludeID uint) (BookInput, error) {
	fieldErrs := FieldErrors{}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		fieldErrs["title"] = "Título é obrigatório"
	}

	if strings.TrimSpace(in.AuthorName) == "" {
		fieldErrs["author"] = "Nome do autor é obrigatório"
	}

	isbn, err := NormalizeISBN(in.ISBN)
	if err != nil {
		fieldErrs["isbn"] = err.Error()
	} else {
		in.ISBN = isbn
		taken, err := s.store.ISBNTaken(isbn, excludeID)
		if err != nil {
			return in, fmt.Errorf("failed to check ISBN: %w", err)
		}
		if taken {
			fieldErrs["isbn"] = "ISBN já cadastrado"
		}
	}

	currentYear := s.now().Year()
	if in.PublicationYear < MinPublicationYear || in.PublicationYear > currentYear {
		fieldErrs["publication_year"] = fmt.Sprintf("Ano deve estar entre %d e %d", MinPublicationYear, currentYear)
	}

	if in.Quantity < 0 {
		fieldErrs["quantity"] = "Quantidade não pode ser negativa"
	}

	if in.CategoryID == 0 {
		fieldErrs["category"] = "Categoria é obrigatória"
	} else if _, err := s.store.GetCategoryByID(in.CategoryID); err != nil {
		fieldErrs["category"] = "Categoria inválida"
	}

	if len(fieldErrs) > 0 {
		return in, fieldErrs
	}
	return in, nil
}

// CreateBook validates the input, resolves the author and inserts the
// book. Validation failures leave nothing written.
func (s *Service) CreateBook(in BookInput) (*entities.Book, error) {
	in, err := s.validate(in, 0)
	if err != nil {
		return nil, err
	}

	author, err := s.store.ResolveAuthor(in.AuthorName)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:           in.Title,
		ISBN:            in.ISBN,
		CategoryID:      in.CategoryID,
		AuthorID:        author.ID,
		PublicationYear: in.PublicationYear,
		Quantity:        in.Quantity,
	}
	if err := s.store.CreateBook(book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	return book, nil
}

// UpdateBook validates the input and applies it to an existing book,
// re-resolving the author exactly as creation does.
func (s *Service) UpdateBook(id uint, in BookInput) (*entities.Book, error) {
	book, err := s.store.GetBookByID(id)
	if err != nil {
		return nil, ErrBookNotFound
	}

	in, err = s.validate(in, id)
	if err != nil {
		return nil, err
	}

	author, err := s.store.ResolveAuthor(in.AuthorName)
	if err != nil {
		return nil, err
	}

	book.Title = in.Title
	book.ISBN = in.ISBN
	book.CategoryID = in.CategoryID
	book.AuthorID = author.ID
	book.Author = *author
	book.PublicationYear = in.PublicationYear
	book.Quantity = in.Quantity

	if err := s.store.UpdateBook(book); err != nil {
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return book, nil
}

// DeleteBook removes a book from the catalog.
func (s *Service) DeleteBook(id uint) error {
	if _, err := s.store.GetBookByID(id); err != nil {
		return ErrBookNotFound
	}
	return s.store.DeleteBook(id)
}
