package repository

import (
	"context"

	"portfolio-hub/internal/domain"
)

// CommentRepository manages project comments and their replies.
type CommentRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, comment *domain.Comment) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Comment, error)
	UpdateContent(ctx context.Context, id int64, content string) error
	SoftDelete(ctx context.Context, id int64) error
	ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]domain.Comment, int64, error)
	CountByProject(ctx context.Context, projectID int64) (int64, error)
}
