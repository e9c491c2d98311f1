package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/yaneduardo117/Biblioteca-escolar/internal/config"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/database/users"
	"github.com/yaneduardo117/Biblioteca-escolar/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("invalid email format")
	ErrNameRequired     = errors.New("name is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrInvalidRole      = errors.New("invalid role")
	ErrAccountInactive  = errors.New("account is deactivated")
	ErrAccountLocked    = errors.New("account is locked due to too many failed login attempts")
)

// Service handles authentication and account management.
type Service struct {
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *users.Repository, cfg config.Auth) *Service {
	return &Service{users: repo, config: cfg}
}

// CreateUserInput is the admin-facing account form. Self-registration
// goes through Register, which forces the STUDENT role.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Matricula string
	Password  string
	Role      entities.UserRole
	Superuser bool
	Active    bool
}

// CreateUser creates an account with the given role.
func (s *Service) CreateUser(in CreateUserInput) (*entities.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if strings.TrimSpace(in.FirstName) == "" {
		return nil, ErrNameRequired
	}
	if in.Email == "" {
		return nil, ErrEmailRequired
	}
	// RFC 5321 length limit is 254
	if len(in.Email) > 254 || !emailPattern.MatchString(in.Email) {
		return nil, ErrEmailInvalid
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}
	if !entities.ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}

	taken, err := s.users.EmailTaken(in.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        in.Email,
		Matricula:    strings.TrimSpace(in.Matricula),
		PasswordHash: passwordHash,
		Role:         in.Role,
		Superuser:    in.Superuser,
		Active:       in.Active,
	}
	if err := s.users.CreateUser(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// RegisterInput is the public self-registration form.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	Matricula       string
	Password        string
	ConfirmPassword string
}

// Register creates a STUDENT account from the public registration form.
func (s *Service) Register(in RegisterInput) (*entities.User, error) {
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	return s.CreateUser(CreateUserInput{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Matricula: in.Matricula,
		Password:  in.Password,
		Role:      entities.UserRoleStudent,
		Active:    true,
	})
}

// UpdateUserInput is the admin edit form. Password is optional: empty
// keeps the current one.
type UpdateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Matricula string
	Password  string
	Role      entities.UserRole
	Superuser bool
	Active    bool
}

// UpdateUser applies the admin edit form to an existing account.
func (s *Service) UpdateUser(id uint, in UpdateUserInput) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if strings.TrimSpace(in.FirstName) == "" {
		return nil, ErrNameRequired
	}
	if in.Email == "" {
		return nil, ErrEmailRequired
	}
	if len(in.Email) > 254 || !emailPattern.MatchString(in.Email) {
		return nil, ErrEmailInvalid
	}
	if !entities.ValidRole(in.Role) {
		return nil, ErrInvalidRole
	}

	taken, err := s.users.EmailTaken(in.Email, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = in.Email
	user.Matricula = strings.TrimSpace(in.Matricula)
	user.Role = in.Role
	user.Superuser = in.Superuser
	user.Active = in.Active

	if in.Password != "" {
		hash, err := HashPassword(in.Password, s.config.BcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.users.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Authenticate validates email and password and returns the user.
// Inactive accounts cannot log in; repeated failures lock the account.
func (s *Service) Authenticate(email, password string) (*entities.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetUserByEmail(email)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if user.LockedUntil != nil && time.Now().Before(*user.LockedUntil) {
		return nil, ErrAccountLocked
	}
	if !user.Active {
		return nil, ErrAccountInactive
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		s.recordFailedLogin(user)
		return nil, err
	}

	// Successful login: reset failure bookkeeping
	now := time.Now()
	user.LastLoginAt = &now
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	if err := s.users.UpdateUser(user); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return user, nil
}

// recordFailedLogin increments the failure counter and locks the account
// once the threshold is reached.
func (s *Service) recordFailedLogin(user *entities.User) {
	user.FailedLoginCount++

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if user.FailedLoginCount >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration == 0 {
			lockoutDuration = 30 * time.Minute
		}
		lockedUntil := time.Now().Add(lockoutDuration)
		user.LockedUntil = &lockedUntil
	}

	_ = s.users.UpdateUser(user)
}

// GetUserByID retrieves an account by ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	user, err := s.users.GetUserByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// HasUsers returns true if any account exists.
func (s *Service) HasUsers() (bool, error) {
	return s.users.HasUsers()
}
