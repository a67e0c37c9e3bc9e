// Package users provides database operations for user records.
//
// It is the credential store for authentication: lookups by email and
// inserts guarded by the storage layer's uniqueness constraint.
package users

import (
	"errors"
	"fmt"
	"regexp"

	"gorm.io/gorm"

	"github.com/mrlokans/toolshed/internal/entities"
)

// ErrDuplicateUser is returned when an insert loses the uniqueness race on
// username or email. The constraint is enforced by the database, not by a
// prior read, so concurrent signups cannot both succeed.
var ErrDuplicateUser = errors.New("username or email already in use")

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError reports a missing or malformed field on a record.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. It returns a *ValidationError when required
// fields are absent or malformed, and ErrDuplicateUser when the insert hits
// the uniqueness constraint.
func (r *Repository) Create(user *entities.User) error {
	if err := validate(user); err != nil {
		return err
	}

	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user by exact email match.
// An absent user is not an error: the result is (nil, nil).
func (r *Repository) FindByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// GetByID retrieves a user and their tools by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.Preload("Tools").First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func validate(user *entities.User) error {
	if user.Username == "" {
		return &ValidationError{Field: "username", Message: "Username is required."}
	}
	if user.Email == "" {
		return &ValidationError{Field: "email", Message: "E-Mail is required."}
	}
	// RFC 5321 caps the address at 254 octets
	if len(user.Email) > 254 || !emailPattern.MatchString(user.Email) {
		return &ValidationError{Field: "email", Message: "E-Mail address is not valid."}
	}
	if user.PasswordHash == "" {
		return &ValidationError{Field: "password", Message: "Password is required."}
	}
	return nil
}
