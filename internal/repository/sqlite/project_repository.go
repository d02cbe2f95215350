package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
)

const createProjectsTable = `
CREATE TABLE IF NOT EXISTS projects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	image TEXT NOT NULL,
	technologies TEXT NOT NULL DEFAULT '[]',
	github_url TEXT NOT NULL DEFAULT '',
	live_url TEXT NOT NULL DEFAULT '',
	views INTEGER NOT NULL DEFAULT 0,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_by INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(created_by) REFERENCES users(id)
);
CREATE TABLE IF NOT EXISTS project_likes (
	project_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	PRIMARY KEY(project_id, user_id),
	FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_project_likes_project ON project_likes(project_id);
`

type ProjectRepository struct {
	db *sql.DB
}

func NewProjectRepository(db *sql.DB) repository.ProjectRepository {
	return &ProjectRepository{db: db}
}

func (r *ProjectRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createProjectsTable); err != nil {
		return fmt.Errorf("create projects tables: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) (int64, error) {
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	techs, err := json.Marshal(project.Technologies)
	if err != nil {
		return 0, fmt.Errorf("marshal technologies: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
INSERT INTO projects (title, description, image, technologies, github_url, live_url,
	views, is_active, created_by, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		project.Title,
		project.Description,
		project.Image,
		string(techs),
		project.GithubURL,
		project.LiveURL,
		project.Views,
		project.IsActive,
		project.CreatedBy,
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert project: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("project last insert id: %w", err)
	}
	project.ID = id
	return id, nil
}

func (r *ProjectRepository) Update(ctx context.Context, project *domain.Project) error {
	project.UpdatedAt = time.Now().UTC()

	techs, err := json.Marshal(project.Technologies)
	if err != nil {
		return fmt.Errorf("marshal technologies: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `
UPDATE projects
SET title=?, description=?, image=?, technologies=?, github_url=?, live_url=?, updated_at=?
WHERE id=?`,
		project.Title,
		project.Description,
		project.Image,
		string(techs),
		project.GithubURL,
		project.LiveURL,
		project.UpdatedAt,
		project.ID,
	); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) Get(ctx context.Context, id int64) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, title, description, image, technologies, github_url, live_url, views,
	is_active, created_by, created_at, updated_at
FROM projects
WHERE id = ?`, id)

	project, err := scanProject(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadLikes(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (r *ProjectRepository) List(ctx context.Context, filter repository.ProjectFilter, limit, offset int) ([]domain.Project, int64, error) {
	where := []string{"is_active = 1"}
	var args []any

	if s := strings.TrimSpace(filter.Search); s != "" {
		where = append(where, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + s + "%"
		args = append(args, pattern, pattern)
	}
	if t := strings.TrimSpace(filter.Technology); t != "" {
		// technologies is a JSON array of strings
		where = append(where, `technologies LIKE ?`)
		args = append(args, `%"`+t+`"%`)
	}

	clause := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, title, description, image, technologies, github_url, live_url, views,
	is_active, created_by, created_at, updated_at
FROM projects
WHERE `+clause+`
ORDER BY created_at DESC
LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range projects {
		if err := r.loadLikes(ctx, &projects[i]); err != nil {
			return nil, 0, err
		}
	}
	return projects, total, nil
}

func (r *ProjectRepository) SoftDelete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE projects SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	); err != nil {
		return fmt.Errorf("soft delete project: %w", err)
	}
	return nil
}

func (r *ProjectRepository) IncrementViews(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE projects SET views = views + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	return nil
}

func (r *ProjectRepository) AddLike(ctx context.Context, projectID, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `
INSERT OR IGNORE INTO project_likes (project_id, user_id, created_at)
VALUES (?, ?, ?)`,
		projectID, userID, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

func (r *ProjectRepository) RemoveLike(ctx context.Context, projectID, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `
DELETE FROM project_likes WHERE project_id = ? AND user_id = ?`,
		projectID, userID,
	); err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

func (r *ProjectRepository) loadLikes(ctx context.Context, project *domain.Project) error {
	rows, err := r.db.QueryContext(ctx, `
SELECT project_id, user_id, created_at
FROM project_likes
WHERE project_id = ?
ORDER BY created_at ASC`, project.ID)
	if err != nil {
		return fmt.Errorf("query likes: %w", err)
	}
	defer rows.Close()

	project.Likes = nil
	for rows.Next() {
		var like domain.ProjectLike
		if err := rows.Scan(&like.ProjectID, &like.UserID, &like.CreatedAt); err != nil {
			return fmt.Errorf("scan like: %w", err)
		}
		project.Likes = append(project.Likes, like)
	}
	return rows.Err()
}

func scanProject(row interface {
	Scan(dest ...any) error
}) (*domain.Project, error) {
	var (
		project domain.Project
		techs   string
	)
	if err := row.Scan(
		&project.ID,
		&project.Title,
		&project.Description,
		&project.Image,
		&techs,
		&project.GithubURL,
		&project.LiveURL,
		&project.Views,
		&project.IsActive,
		&project.CreatedBy,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project not found")
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	if err := json.Unmarshal([]byte(techs), &project.Technologies); err != nil {
		return nil, fmt.Errorf("unmarshal technologies: %w", err)
	}
	return &project, nil
}
