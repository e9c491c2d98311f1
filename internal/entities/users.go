package entities

import "time"

// UserRole determines which operations a user may perform.
type UserRole string

const (
	UserRoleStudent   UserRole = "STUDENT"
	UserRoleLibrarian UserRole = "LIBRARIAN"
	UserRoleAdmin     UserRole = "ADMIN"
)

// AllRoles lists the assignable roles, in display order.
func AllRoles() []UserRole {
	return []UserRole{UserRoleStudent, UserRoleLibrarian, UserRoleAdmin}
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r UserRole) bool {
	switch r {
	case UserRoleStudent, UserRoleLibrarian, UserRoleAdmin:
		return true
	}
	return false
}

// User is a library account. Email is the login identity and must be
// unique. Matricula is the institutional registration number shown on
// loan screens and searchable there.
type User struct {
	ID           uint     `gorm:"primaryKey" json:"id"`
	FirstName    string   `gorm:"size:100" json:"first_name"`
	LastName     string   `gorm:"size:100" json:"last_name"`
	Email        string   `gorm:"uniqueIndex;size:255" json:"email"`
	Matricula    string   `gorm:"index;size:30" json:"matricula"`
	PasswordHash string   `gorm:"size:255" json:"-"`
	Role         UserRole `gorm:"size:20;default:'STUDENT'" json:"role"`
	Superuser    bool     `gorm:"default:false" json:"superuser"`
	Active       bool     `json:"active"`

	// Login lockout bookkeeping
	FailedLoginCount int        `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time `json:"-"`
	LastLoginAt      *time.Time `json:"last_login_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullName joins the name fields for display and search.
func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user may manage accounts: either the ADMIN
// role or the superuser flag grants access.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin || u.Superuser
}
