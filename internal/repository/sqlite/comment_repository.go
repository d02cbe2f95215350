package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
)

const createCommentsTable = `
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	project_id INTEGER NOT NULL,
	user_id INTEGER NOT NULL,
	parent_comment_id INTEGER NULL,
	content TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY(project_id) REFERENCES projects(id) ON DELETE CASCADE,
	FOREIGN KEY(user_id) REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_comments_project ON comments(project_id);
CREATE INDEX IF NOT EXISTS idx_comments_parent ON comments(parent_comment_id);
`

const commentColumns = `c.id, c.project_id, c.user_id, c.parent_comment_id, c.content,
c.is_active, c.created_at, c.updated_at, u.name, u.email`

type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) repository.CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCommentsTable); err != nil {
		return fmt.Errorf("create comments table: %w", err)
	}
	return nil
}

func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) (int64, error) {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO comments (project_id, user_id, parent_comment_id, content, is_active, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		comment.ProjectID,
		comment.UserID,
		comment.ParentCommentID,
		comment.Content,
		comment.IsActive,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("comment last insert id: %w", err)
	}
	comment.ID = id
	return id, nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (*domain.Comment, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+commentColumns+`
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.id = ?`, id)
	return scanComment(row)
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id int64, content string) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE comments SET content = ?, updated_at = ? WHERE id = ?`,
		content, time.Now().UTC(), id,
	); err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) SoftDelete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
UPDATE comments SET is_active = 0, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id,
	); err != nil {
		return fmt.Errorf("soft delete comment: %w", err)
	}
	return nil
}

func (r *CommentRepository) ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]domain.Comment, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM comments
WHERE project_id = ? AND is_active = 1 AND parent_comment_id IS NULL`,
		projectID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count comments: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT `+commentColumns+`
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.project_id = ? AND c.is_active = 1 AND c.parent_comment_id IS NULL
ORDER BY c.created_at DESC
LIMIT ? OFFSET ?`, projectID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, 0, err
		}
		comments = append(comments, *comment)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for i := range comments {
		replies, err := r.listReplies(ctx, comments[i].ID)
		if err != nil {
			return nil, 0, err
		}
		comments[i].Replies = replies
	}
	return comments, total, nil
}

func (r *CommentRepository) CountByProject(ctx context.Context, projectID int64) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM comments WHERE project_id = ? AND is_active = 1`,
		projectID,
	).Scan(&total); err != nil {
		return 0, fmt.Errorf("count project comments: %w", err)
	}
	return total, nil
}

func (r *CommentRepository) listReplies(ctx context.Context, parentID int64) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+commentColumns+`
FROM comments c
JOIN users u ON u.id = c.user_id
WHERE c.parent_comment_id = ? AND c.is_active = 1
ORDER BY c.created_at ASC`, parentID)
	if err != nil {
		return nil, fmt.Errorf("query replies: %w", err)
	}
	defer rows.Close()

	var replies []domain.Comment
	for rows.Next() {
		reply, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		replies = append(replies, *reply)
	}
	return replies, rows.Err()
}

func scanComment(row interface {
	Scan(dest ...any) error
}) (*domain.Comment, error) {
	var comment domain.Comment
	if err := row.Scan(
		&comment.ID,
		&comment.ProjectID,
		&comment.UserID,
		&comment.ParentCommentID,
		&comment.Content,
		&comment.IsActive,
		&comment.CreatedAt,
		&comment.UpdatedAt,
		&comment.UserName,
		&comment.UserEmail,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment not found")
		}
		return nil, fmt.Errorf("scan comment: %w", err)
	}
	return &comment, nil
}
