// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, category seeding
//	├── books/           # Catalog operations: books, authors, categories
//	└── users/           # User account management
//
// Loan and reservation persistence is owned by the lending engine
// (internal/lending), which needs transactional control over the
// stock-counter/row-write pair and therefore works on the *gorm.DB
// directly rather than through a repository.
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./biblioteca.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	usersRepo := users.NewRepository(db.DB)
//
//	book, err := booksRepo.GetBookByID(123)
package database
