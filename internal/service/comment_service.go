package service

import (
	"context"
	"errors"
	"strings"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
)

var (
	// ErrCommentNotFound is returned when no comment matches the lookup.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrNotCommentAuthor indicates the caller does not own the comment.
	ErrNotCommentAuthor = errors.New("not the comment author")
)

// CommentService manages comments and replies on projects.
type CommentService interface {
	Create(ctx context.Context, userID, projectID int64, parentCommentID *int64, content string) (*domain.Comment, error)
	Update(ctx context.Context, id, userID int64, content string) (*domain.Comment, error)
	Delete(ctx context.Context, id, userID int64, isOwner bool) error
	ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]domain.Comment, int64, error)
}

type commentService struct {
	comments repository.CommentRepository
	projects repository.ProjectRepository
}

func NewCommentService(comments repository.CommentRepository, projects repository.ProjectRepository) CommentService {
	return &commentService{
		comments: comments,
		projects: projects,
	}
}

func (s *commentService) Create(ctx context.Context, userID, projectID int64, parentCommentID *int64, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > 500 {
		return nil, errors.New("comment must be between 1 and 500 characters")
	}

	if _, err := s.projects.Get(ctx, projectID); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	if parentCommentID != nil {
		parent, err := s.comments.Get(ctx, *parentCommentID)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "not found") {
				return nil, ErrCommentNotFound
			}
			return nil, err
		}
		if parent.ProjectID != projectID {
			return nil, errors.New("parent comment belongs to another project")
		}
	}

	comment := &domain.Comment{
		ProjectID:       projectID,
		UserID:          userID,
		ParentCommentID: parentCommentID,
		Content:         content,
		IsActive:        true,
	}

	if _, err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.comments.Get(ctx, comment.ID)
}

func (s *commentService) Update(ctx context.Context, id, userID int64, content string) (*domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > 500 {
		return nil, errors.New("comment must be between 1 and 500 characters")
	}

	comment, err := s.getActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrNotCommentAuthor
	}

	if err := s.comments.UpdateContent(ctx, id, content); err != nil {
		return nil, err
	}
	return s.comments.Get(ctx, id)
}

func (s *commentService) Delete(ctx context.Context, id, userID int64, isOwner bool) error {
	comment, err := s.getActive(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != userID && !isOwner {
		return ErrNotCommentAuthor
	}
	return s.comments.SoftDelete(ctx, id)
}

func (s *commentService) ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]domain.Comment, int64, error) {
	return s.comments.ListByProject(ctx, projectID, limit, offset)
}

func (s *commentService) getActive(ctx context.Context, id int64) (*domain.Comment, error) {
	comment, err := s.comments.Get(ctx, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	if !comment.IsActive {
		return nil, ErrCommentNotFound
	}
	return comment, nil
}
