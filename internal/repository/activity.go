package repository

import (
	"context"
	"time"

	"portfolio-hub/internal/domain"
)

// ActivityRepository records and queries the server-side audit trail.
type ActivityRepository interface {
	Init(ctx context.Context) error
	Log(ctx context.Context, activity *domain.Activity) (int64, error)
	List(ctx context.Context, filter domain.ActivityFilter, limit, offset int) ([]domain.Activity, int64, error)
	CountByActionSince(ctx context.Context, since time.Time) (map[domain.ActivityAction]int64, error)
}
