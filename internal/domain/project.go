package domain

import "time"

// Project represents a portfolio project entry.
type Project struct {
	ID           int64
	Title        string
	Description  string
	Image        string
	Technologies []string
	GithubURL    string
	LiveURL      string
	Views        int64
	IsActive     bool
	CreatedBy    int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Likes        []ProjectLike
	CommentCount int64
}

// ProjectLike records that a user liked a project.
type ProjectLike struct {
	ProjectID int64
	UserID    int64
	CreatedAt time.Time
}

// LikedBy reports whether the given user appears in the like list.
func (p *Project) LikedBy(userID int64) bool {
	for _, like := range p.Likes {
		if like.UserID == userID {
			return true
		}
	}
	return false
}
