package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
)

const createActivitiesTable = `
CREATE TABLE IF NOT EXISTS activities (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	action TEXT NOT NULL,
	target_type TEXT NOT NULL DEFAULT '',
	target_id INTEGER NULL,
	metadata TEXT NOT NULL DEFAULT '{}',
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_activities_user_created ON activities(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_activities_action_created ON activities(action, created_at);
`

type ActivityRepository struct {
	db *sql.DB
}

func NewActivityRepository(db *sql.DB) repository.ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createActivitiesTable); err != nil {
		return fmt.Errorf("create activities table: %w", err)
	}
	return nil
}

func (r *ActivityRepository) Log(ctx context.Context, activity *domain.Activity) (int64, error) {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	metadata := activity.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("marshal metadata: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO activities (user_id, action, target_type, target_id, metadata, ip_address, user_agent, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.UserID,
		string(activity.Action),
		string(activity.TargetType),
		activity.TargetID,
		string(meta),
		activity.IPAddress,
		activity.UserAgent,
		activity.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert activity: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("activity last insert id: %w", err)
	}
	activity.ID = id
	return id, nil
}

func (r *ActivityRepository) List(ctx context.Context, filter domain.ActivityFilter, limit, offset int) ([]domain.Activity, int64, error) {
	where := []string{"1=1"}
	var args []any

	if filter.UserID != nil {
		where = append(where, "a.user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Action != "" {
		where = append(where, "a.action = ?")
		args = append(args, string(filter.Action))
	}
	if filter.TargetType != "" {
		where = append(where, "a.target_type = ?")
		args = append(args, string(filter.TargetType))
	}
	if filter.Since != nil {
		where = append(where, "a.created_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if filter.Until != nil {
		where = append(where, "a.created_at <= ?")
		args = append(args, filter.Until.UTC())
	}

	clause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM activities a WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count activities: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT a.id, a.user_id, a.action, a.target_type, a.target_id, a.metadata,
	a.ip_address, a.user_agent, a.created_at, u.name, u.email
FROM activities a
JOIN users u ON u.id = a.user_id
WHERE `+clause+`
ORDER BY a.created_at DESC
LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		var (
			activity   domain.Activity
			action     string
			targetType string
			meta       string
		)
		if err := rows.Scan(
			&activity.ID,
			&activity.UserID,
			&action,
			&targetType,
			&activity.TargetID,
			&meta,
			&activity.IPAddress,
			&activity.UserAgent,
			&activity.CreatedAt,
			&activity.UserName,
			&activity.UserEmail,
		); err != nil {
			return nil, 0, fmt.Errorf("scan activity: %w", err)
		}
		activity.Action = domain.ActivityAction(action)
		activity.TargetType = domain.TargetType(targetType)
		if err := json.Unmarshal([]byte(meta), &activity.Metadata); err != nil {
			return nil, 0, fmt.Errorf("unmarshal metadata: %w", err)
		}
		activities = append(activities, activity)
	}
	return activities, total, rows.Err()
}

func (r *ActivityRepository) CountByActionSince(ctx context.Context, since time.Time) (map[domain.ActivityAction]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT action, COUNT(*)
FROM activities
WHERE created_at >= ?
GROUP BY action`, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("count by action: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ActivityAction]int64)
	for rows.Next() {
		var (
			action string
			count  int64
		)
		if err := rows.Scan(&action, &count); err != nil {
			return nil, fmt.Errorf("scan action count: %w", err)
		}
		counts[domain.ActivityAction(action)] = count
	}
	return counts, rows.Err()
}
