package catalog

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/books"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

func setupService(t *testing.T) (*Service, *gorm.DB, func()) {
	t.Helper()

	dbPath := "./test_catalog_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Category{}, &entities.Author{}, &entities.Book{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&entities.Category{Name: "Literatura"}).Error)

	svc := NewService(books.NewRepository(db))
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) }

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return svc, db, cleanup
}

func validInput() BookInput {
	return BookInput{
		Title:           "Dom Casmurro",
		AuthorName:      "Machado de Assis",
		ISBN:            "978-85-359-0277-5",
		CategoryID:      1,
		PublicationYear: 1899,
		Quantity:        3,
	}
}

func TestNormalizeISBN(t *testing.T) {
	t.Run("strips hyphens and spaces", func(t *testing.T) {
		isbn, err := NormalizeISBN("978-0-13-468599-1")
		require.NoError(t, err)
		assert.Equal(t, "9780134685991", isbn)

		isbn, err = NormalizeISBN("0 306 40615 2")
		require.NoError(t, err)
		assert.Equal(t, "0306406152", isbn)
	})

	t.Run("rejects wrong lengths", func(t *testing.T) {
		_, err := NormalizeISBN("123")
		assert.Error(t, err)

		_, err = NormalizeISBN("123456789012")
		assert.Error(t, err)
	})

	t.Run("rejects non-digits", func(t *testing.T) {
		_, err := NormalizeISBN("12a4567890")
		assert.Error(t, err)
	})
}

func TestCreateBook(t *testing.T) {
	t.Run("persists a valid book with normalized ISBN", func(t *testing.T) {
		svc, db, cleanup := setupService(t)
		defer cleanup()

		book, err := svc.CreateBook(validInput())
		require.NoError(t, err)
		assert.Equal(t, "9788535902775", book.ISBN)
		assert.NotZero(t, book.AuthorID)

		var count int64
		db.Model(&entities.Book{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("quantity zero is stored as zero", func(t *testing.T) {
		svc, db, cleanup := setupService(t)
		defer cleanup()

		in := validInput()
		in.Quantity = 0
		book, err := svc.CreateBook(in)
		require.NoError(t, err)

		var stored entities.Book
		require.NoError(t, db.First(&stored, book.ID).Error)
		assert.Equal(t, 0, stored.Quantity)
	})

	t.Run("field errors leave nothing written", func(t *testing.T) {
		svc, db, cleanup := setupService(t)
		defer cleanup()

		in := validInput()
		in.ISBN = "123"
		in.PublicationYear = 2050

		_, err := svc.CreateBook(in)
		var fieldErrs FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "isbn")
		assert.Contains(t, fieldErrs, "publication_year")

		var bookCount, authorCount int64
		db.Model(&entities.Book{}).Count(&bookCount)
		db.Model(&entities.Author{}).Count(&authorCount)
		assert.Zero(t, bookCount)
		assert.Zero(t, authorCount)
	})

	t.Run("rejects future years and negative quantity", func(t *testing.T) {
		svc, _, cleanup := setupService(t)
		defer cleanup()

		in := validInput()
		in.PublicationYear = 2027 // clock is pinned to 2026
		in.Quantity = -1

		_, err := svc.CreateBook(in)
		var fieldErrs FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "publication_year")
		assert.Contains(t, fieldErrs, "quantity")
	})

	t.Run("rejects duplicate ISBN", func(t *testing.T) {
		svc, _, cleanup := setupService(t)
		defer cleanup()

		_, err := svc.CreateBook(validInput())
		require.NoError(t, err)

		in := validInput()
		in.Title = "Outro Livro"
		_, err = svc.CreateBook(in)
		var fieldErrs FieldErrors
		require.ErrorAs(t, err, &fieldErrs)
		assert.Contains(t, fieldErrs, "isbn")
	})
}

func TestAuthorResolution(t *testing.T) {
	t.Run("reuses the author on exact name match", func(t *testing.T) {
		svc, db, cleanup := setupService(t)
		defer cleanup()

		first, err := svc.CreateBook(validInput())
		require.NoError(t, err)

		in := validInput()
		in.ISBN = "9780134685991"
		second, err := svc.CreateBook(in)
		require.NoError(t, err)

		assert.Equal(t, first.AuthorID, second.AuthorID)

		var count int64
		db.Model(&entities.Author{}).Count(&count)
		assert.Equal(t, int64(1), count)
	})

	t.Run("case and whitespace variants create distinct authors", func(t *testing.T) {
		svc, db, cleanup := setupService(t)
		defer cleanup()

		_, err := svc.CreateBook(validInput())
		require.NoError(t, err)

		in := validInput()
		in.ISBN = "9780134685991"
		in.AuthorName = "machado de assis "
		_, err = svc.CreateBook(in)
		require.NoError(t, err)

		var count int64
		db.Model(&entities.Author{}).Count(&count)
		assert.Equal(t, int64(2), count)
	})
}

func TestUpdateBook(t *testing.T) {
	t.Run("re-resolves the author on edit", func(t *testing.T) {
		svc, db, cleanup := setupService(t)
		defer cleanup()

		book, err := svc.CreateBook(validInput())
		require.NoError(t, err)

		in := validInput()
		in.AuthorName = "Clarice Lispector"
		updated, err := svc.UpdateBook(book.ID, in)
		require.NoError(t, err)
		assert.NotEqual(t, book.AuthorID, updated.AuthorID)

		// The repointed author must survive the round trip: a stale
		// preloaded association must not win over the new AuthorID.
		var stored entities.Book
		require.NoError(t, db.Preload("Author").First(&stored, book.ID).Error)
		assert.Equal(t, updated.AuthorID, stored.AuthorID)
		assert.Equal(t, "Clarice Lispector", stored.Author.Name)

		var count int64
		db.Model(&entities.Author{}).Count(&count)
		assert.Equal(t, int64(2), count)
	})

	t.Run("own ISBN does not count as taken", func(t *testing.T) {
		svc, _, cleanup := setupService(t)
		defer cleanup()

		book, err := svc.CreateBook(validInput())
		require.NoError(t, err)

		in := validInput()
		in.Quantity = 10
		updated, err := svc.UpdateBook(book.ID, in)
		require.NoError(t, err)
		assert.Equal(t, 10, updated.Quantity)
	})

	t.Run("missing book", func(t *testing.T) {
		svc, _, cleanup := setupService(t)
		defer cleanup()

		_, err := svc.UpdateBook(9999, validInput())
		assert.ErrorIs(t, err, ErrBookNotFound)
	})
}

func TestDeleteOrphanAuthors(t *testing.T) {
	svc, db, cleanup := setupService(t)
	defer cleanup()

	book, err := svc.CreateBook(validInput())
	require.NoError(t, err)

	repo := books.NewRepository(db)

	// Nothing orphaned while the book references the author.
	deleted, err := repo.DeleteOrphanAuthors()
	require.NoError(t, err)
	assert.Zero(t, deleted)

	require.NoError(t, svc.DeleteBook(book.ID))

	deleted, err = repo.DeleteOrphanAuthors()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
