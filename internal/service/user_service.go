package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"menstrualcare-api/internal/auth"
	"menstrualcare-api/internal/domain"
	"menstrualcare-api/internal/repository"
)

var (
	// ErrMissingFields is returned when a registration lacks a required attribute.
	ErrMissingFields = domain.NewError(domain.ErrValidation, "All fields are required")
	// ErrInvalidEmail is returned when the registration email is malformed.
	ErrInvalidEmail = domain.NewError(domain.ErrValidation, "Invalid email address")
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = domain.NewError(domain.ErrValidation, "Invalid credentials")
	// ErrUserAlreadyExists is returned when attempting to register with an existing email.
	ErrUserAlreadyExists = domain.NewError(domain.ErrValidation, "User already exists")
	// ErrUserNotFound is returned when the authenticated user no longer exists.
	ErrUserNotFound = domain.NewError(domain.ErrNotFound, "User not found")
	// ErrWrongPassword is returned when a password change does not present the current password.
	ErrWrongPassword = domain.NewError(domain.ErrValidation, "Wrong password")
)

// RegisterInput carries the attributes collected at sign-up.
type RegisterInput struct {
	Name     string  `validate:"required"`
	Email    string  `validate:"required"`
	Password string  `validate:"required"`
	Age      int     `validate:"required"`
	Weight   float64 `validate:"required"`
	Height   float64 `validate:"required"`
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error)
	ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error
}

type userService struct {
	users    repository.UserRepository
	hasher   *auth.Hasher
	validate *validator.Validate
}

func NewUserService(users repository.UserRepository, hasher *auth.Hasher) UserService {
	return &userService{
		users:    users,
		hasher:   hasher,
		validate: validator.New(),
	}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)

	if err := s.validate.Struct(in); err != nil {
		return nil, ErrMissingFields
	}
	if err := s.validate.Var(in.Email, "email"); err != nil {
		return nil, ErrInvalidEmail
	}

	// cheap lookup first, the unique index still guards concurrent sign-ups
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Age:          in.Age,
		Weight:       in.Weight,
		Height:       in.Height,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Name = strings.TrimSpace(update.Name)
	update.Apply(user)
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	user, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.PasswordHash, currentPassword); err != nil {
		return ErrWrongPassword
	}
	if newPassword == "" {
		return domain.NewError(domain.ErrValidation, "New password is required")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) load(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	return &clean
}
