package repository

import (
	"context"
	"time"

	"portfolio-hub/internal/domain"
)

// UserFilter narrows user listings.
type UserFilter struct {
	Search string
	Role   domain.Role
}

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context, filter UserFilter, limit, offset int) ([]domain.User, int64, error)
	UpdateProfile(ctx context.Context, id int64, updates domain.ProfileUpdate) (*domain.User, error)
	RecordLogin(ctx context.Context, id int64, at time.Time) error
	SetResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
