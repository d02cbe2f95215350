package repository

import (
	"context"

	"portfolio-hub/internal/domain"
)

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	Search     string
	Technology string
}

// ProjectRepository exposes persistence operations for Project aggregates.
type ProjectRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, project *domain.Project) (int64, error)
	Update(ctx context.Context, project *domain.Project) error
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter, limit, offset int) ([]domain.Project, int64, error)
	SoftDelete(ctx context.Context, id int64) error
	IncrementViews(ctx context.Context, id int64) error
	AddLike(ctx context.Context, projectID, userID int64) error
	RemoveLike(ctx context.Context, projectID, userID int64) error
}
