// Package users provides database operations for account management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByEmail("aluno@escola.br")
package users

import (
	"gorm.io/gorm"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UserStats are the totals shown on the user administration screen.
type UserStats struct {
	Total  int64
	Active int64
	Admins int64
}

// CreateUser inserts a new account.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// UpdateUser persists changes to an account.
func (r *Repository) UpdateUser(user *entities.User) error {
	return r.db.Save(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email, the login identity.
func (r *Repository) GetUserByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether another account already uses the email.
// excludeID is ignored when 0.
func (r *Repository) EmailTaken(email string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.Model(&entities.User{}).Where("email = ?", email)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// ListUsers returns users newest-first, optionally filtered by a
// case-insensitive substring match against first name, email or
// matricula.
func (r *Repository) ListUsers(query string) ([]entities.User, error) {
	var users []entities.User
	q := r.db.Order("created_at DESC")
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("first_name LIKE ? COLLATE NOCASE OR email LIKE ? COLLATE NOCASE OR matricula LIKE ?",
			pattern, pattern, pattern)
	}
	err := q.Find(&users).Error
	return users, err
}

// ActiveUsers lists active accounts for the new-loan form dropdown.
func (r *Repository) ActiveUsers() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Where("active = ?", true).Order("first_name ASC").Find(&users).Error
	return users, err
}

// GetUserStats computes the totals for the admin dashboard cards. Unlike
// the loan counts, these are over the whole user table, not the filtered
// set.
func (r *Repository) GetUserStats() (UserStats, error) {
	var stats UserStats

	if err := r.db.Model(&entities.User{}).Count(&stats.Total).Error; err != nil {
		return stats, err
	}
	if err := r.db.Model(&entities.User{}).Where("active = ?", true).Count(&stats.Active).Error; err != nil {
		return stats, err
	}
	err := r.db.Model(&entities.User{}).Where("role = ?", entities.UserRoleAdmin).Count(&stats.Admins).Error
	return stats, err
}

// HasUsers returns true if any account exists.
func (r *Repository) HasUsers() (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
