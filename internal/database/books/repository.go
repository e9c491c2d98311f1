// Package books provides database operations for the catalog: books,
// authors and categories.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(123)
package books

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AcervoStats are the dashboard numbers for the book list screen. They
// are always computed over the whole catalog, never over the current
// search filter.
type AcervoStats struct {
	TotalTitles     int64
	TotalCopies     int64
	TotalCategories int64
}

// ListBooks returns books ordered newest-first, optionally filtered by a
// case-insensitive substring match against title, author name or ISBN.
func (r *Repository) ListBooks(query string) ([]entities.Book, error) {
	var books []entities.Book
	q := r.db.Preload("Author").Preload("Category").Order("books.id DESC")
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Joins("JOIN authors ON authors.id = books.author_id").
			Where("books.title LIKE ? COLLATE NOCASE OR authors.name LIKE ? COLLATE NOCASE OR books.isbn LIKE ?",
				pattern, pattern, pattern)
	}
	err := q.Find(&books).Error
	return books, err
}

// GetAcervoStats computes catalog-wide totals for the dashboard cards.
func (r *Repository) GetAcervoStats() (AcervoStats, error) {
	var stats AcervoStats

	if err := r.db.Model(&entities.Book{}).Count(&stats.TotalTitles).Error; err != nil {
		return stats, err
	}

	// COALESCE so an empty catalog sums to 0, not NULL
	err := r.db.Model(&entities.Book{}).
		Select("COALESCE(SUM(quantity), 0)").Scan(&stats.TotalCopies).Error
	if err != nil {
		return stats, err
	}

	err = r.db.Model(&entities.Book{}).
		Distinct("category_id").Count(&stats.TotalCategories).Error
	return stats, err
}

// GetBookByID retrieves a book with its author and category.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").Preload("Category").First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook inserts a new catalog entry.
func (r *Repository) CreateBook(book *entities.Book) error {
	return r.db.Create(book).Error
}

// UpdateBook persists changes to an existing catalog entry. Associations
// are skipped so a repointed AuthorID wins over a stale preloaded Author.
func (r *Repository) UpdateBook(book *entities.Book) error {
	return r.db.Omit(clause.Associations).Save(book).Error
}

// DeleteBook removes a book from the catalog.
func (r *Repository) DeleteBook(id uint) error {
	return r.db.Delete(&entities.Book{}, id).Error
}

// ISBNTaken reports whether another book already uses the given ISBN.
// excludeID is ignored when 0.
func (r *Repository) ISBNTaken(isbn string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&entities.Book{}).Where("isbn = ?", isbn)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// ResolveAuthor finds an author by exact name or creates one. The match
// is case-sensitive and performs no whitespace normalization: "Jane
// Austen" and "jane austen " resolve to distinct rows. First match wins
// when duplicates already exist.
func (r *Repository) ResolveAuthor(name string) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Where("name = ?", name).Order("id ASC").First(&author).Error
	if err == nil {
		return &author, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to look up author: %w", err)
	}

	author = entities.Author{Name: name}
	if err := r.db.Create(&author).Error; err != nil {
		return nil, fmt.Errorf("failed to create author: %w", err)
	}
	return &author, nil
}

// DeleteOrphanAuthors removes authors no book references and returns the
// number of rows deleted. Run periodically to bound the duplicate-author
// accumulation caused by the exact-match resolution above.
func (r *Repository) DeleteOrphanAuthors() (int64, error) {
	result := r.db.Exec(`DELETE FROM authors WHERE id NOT IN (SELECT DISTINCT author_id FROM books)`)
	return result.RowsAffected, result.Error
}

// GetAllCategories lists categories for the book form dropdown.
func (r *Repository) GetAllCategories() ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategoryByID retrieves a single category.
func (r *Repository) GetCategoryByID(id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.First(&category, id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// AvailableBooks lists books with stock on hand, for the new-loan form.
func (r *Repository) AvailableBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Author").Where("quantity > 0").Order("title ASC").Find(&books).Error
	return books, err
}
