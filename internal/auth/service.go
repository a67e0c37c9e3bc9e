package auth

import (
	"errors"
	"fmt"

	"github.com/mrlokans/toolshed/internal/config"
	"github.com/mrlokans/toolshed/internal/database/tools"
	"github.com/mrlokans/toolshed/internal/database/users"
	"github.com/mrlokans/toolshed/internal/entities"
)

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrEmailTaken       = errors.New("email already taken")

	// ErrWrongCredentials covers both an unknown email and a failed password
	// check. Callers must not distinguish the two, so account existence
	// cannot be probed through the login form.
	ErrWrongCredentials = errors.New("wrong credentials")
)

// SignupInput carries the signup form fields.
type SignupInput struct {
	Username string
	Email    string
	Password string
	ToolIDs  []uint
}

// Service implements the signup and login flows on top of the credential
// store and the password hasher.
type Service struct {
	users  *users.Repository
	tools  *tools.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(userRepo *users.Repository, toolRepo *tools.Repository, cfg config.Auth) *Service {
	if cfg.MinPasswordLength <= 0 {
		cfg.MinPasswordLength = 8
	}
	return &Service{
		users:  userRepo,
		tools:  toolRepo,
		config: cfg,
	}
}

// MinPasswordLength returns the configured minimum password length.
func (s *Service) MinPasswordLength() int {
	return s.config.MinPasswordLength
}

// SignUp validates the input, hashes the password and persists a new user.
//
// Uniqueness is guarded twice: the FindByEmail fast path gives a friendly
// error before any hashing work, and the storage layer's unique index is the
// authoritative guard against two concurrent signups with the same email.
// The race path surfaces as users.ErrDuplicateUser, distinct from
// ErrEmailTaken.
func (s *Service) SignUp(in SignupInput) (*entities.User, error) {
	if in.Email == "" {
		return nil, ErrEmailRequired
	}
	if len(in.Password) < s.config.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.users.FindByEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: passwordHash,
	}

	if len(in.ToolIDs) > 0 {
		selected, err := s.tools.FindByIDs(in.ToolIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tool selection: %w", err)
		}
		user.Tools = selected
	}

	// ValidationError and ErrDuplicateUser pass through untouched so the
	// handler can render their specific messages.
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	return user, nil
}

// LogIn looks up the user by email and verifies the password.
//
// Both lookup and verify failures collapse into ErrWrongCredentials. Any
// other error is an infrastructure failure and is returned wrapped for the
// centralized error handler.
func (s *Service) LogIn(email, password string) (*entities.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(password) < s.config.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrWrongCredentials
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrPasswordMismatch) {
			return nil, ErrWrongCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return user, nil
}
