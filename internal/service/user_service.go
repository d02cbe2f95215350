package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDeactivated indicates the account exists but is disabled.
	ErrAccountDeactivated = errors.New("account is deactivated")
	// ErrUserAlreadyExists is returned when attempting to register with an existing email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrResetTokenInvalid indicates an unknown or expired password reset token.
	ErrResetTokenInvalid = errors.New("reset token is invalid or has expired")
)

const resetTokenTTL = 10 * time.Minute

// RegisterInput carries the fields accepted at signup.
type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	Bio         string
	DateOfBirth *time.Time
}

// UserService describes user lifecycle operations.
type UserService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]domain.User, int64, error)
	UpdateProfile(ctx context.Context, id int64, updates domain.ProfileUpdate) (*domain.User, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) error
}

type userService struct {
	users      repository.UserRepository
	ownerEmail string
}

func NewUserService(users repository.UserRepository, ownerEmail string) UserService {
	return &userService{
		users:      users,
		ownerEmail: strings.ToLower(strings.TrimSpace(ownerEmail)),
	}
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	password := strings.TrimSpace(input.Password)

	if name == "" {
		return nil, errors.New("name is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, errors.New("a valid email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := domain.RoleUser
	if s.ownerEmail != "" && email == s.ownerEmail {
		role = domain.RoleOwner
	}

	user := &domain.User{
		Name:            name,
		Email:           email,
		PasswordHash:    string(hash),
		Role:            role,
		Bio:             strings.TrimSpace(input.Bio),
		DateOfBirth:     input.DateOfBirth,
		IsActive:        true,
		IsEmailVerified: false,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LoginCount++
	user.LastLogin = &now

	return sanitizeUser(user), nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) List(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]domain.User, int64, error) {
	users, total, err := s.users.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i] = *sanitizeUser(&users[i])
	}
	return users, total, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, updates domain.ProfileUpdate) (*domain.User, error) {
	if updates.Name != nil && strings.TrimSpace(*updates.Name) == "" {
		return nil, errors.New("name cannot be empty")
	}

	user, err := s.users.UpdateProfile(ctx, id, updates)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return "", ErrUserNotFound
		}
		return "", err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := s.users.SetResetToken(ctx, user.ID, hashResetToken(token), time.Now().UTC().Add(resetTokenTTL)); err != nil {
		return "", err
	}
	return token, nil
}

func (s *userService) ResetPassword(ctx context.Context, token, password string) error {
	password = strings.TrimSpace(password)
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	user, err := s.users.GetByResetToken(ctx, hashResetToken(token), time.Now().UTC())
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return ErrResetTokenInvalid
		}
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	clean := *user
	clean.PasswordHash = ""
	clean.ResetTokenHash = ""
	clean.ResetExpiresAt = nil
	return &clean
}
