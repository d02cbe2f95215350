package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
)

// ErrInvalidStatsPeriod is returned for unrecognized stats period keys.
var ErrInvalidStatsPeriod = errors.New("invalid stats period")

// ActivityStats summarizes audited actions over a window.
type ActivityStats struct {
	Period string
	Since  time.Time
	Counts map[domain.ActivityAction]int64
	Total  int64
}

// ActivityService records and reports the server-side audit trail.
type ActivityService interface {
	Record(ctx context.Context, activity *domain.Activity)
	List(ctx context.Context, filter domain.ActivityFilter, limit, offset int) ([]domain.Activity, int64, error)
	Stats(ctx context.Context, period string) (*ActivityStats, error)
}

type activityService struct {
	activities repository.ActivityRepository
	logger     *logrus.Logger
}

func NewActivityService(activities repository.ActivityRepository, logger *logrus.Logger) ActivityService {
	return &activityService{
		activities: activities,
		logger:     logger,
	}
}

// Record writes an audit row. Failures are logged, never propagated: auditing
// must not break the request that triggered it.
func (s *activityService) Record(ctx context.Context, activity *domain.Activity) {
	if _, err := s.activities.Log(ctx, activity); err != nil {
		s.logger.Warnf("log activity %s for user %d: %v", activity.Action, activity.UserID, err)
	}
}

func (s *activityService) List(ctx context.Context, filter domain.ActivityFilter, limit, offset int) ([]domain.Activity, int64, error) {
	return s.activities.List(ctx, filter, limit, offset)
}

func (s *activityService) Stats(ctx context.Context, period string) (*ActivityStats, error) {
	var window time.Duration
	switch period {
	case "24h":
		window = 24 * time.Hour
	case "", "7d":
		period = "7d"
		window = 7 * 24 * time.Hour
	case "30d":
		window = 30 * 24 * time.Hour
	default:
		return nil, ErrInvalidStatsPeriod
	}

	since := time.Now().UTC().Add(-window)
	counts, err := s.activities.CountByActionSince(ctx, since)
	if err != nil {
		return nil, err
	}

	stats := &ActivityStats{
		Period: period,
		Since:  since,
		Counts: counts,
	}
	for _, count := range counts {
		stats.Total += count
	}
	return stats, nil
}
