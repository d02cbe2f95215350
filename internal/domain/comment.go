package domain

import "time"

// Comment is a user comment on a project, optionally replying to another comment.
type Comment struct {
	ID              int64
	ProjectID       int64
	UserID          int64
	ParentCommentID *int64
	Content         string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	UserName        string
	UserEmail       string
	Replies         []Comment
}
