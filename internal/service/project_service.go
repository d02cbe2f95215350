package service

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
)

// ErrProjectNotFound is returned when no project matches the lookup.
var ErrProjectNotFound = errors.New("project not found")

// ProjectInput carries the owner-editable project fields.
type ProjectInput struct {
	Title        string
	Description  string
	Image        string
	Technologies []string
	GithubURL    string
	LiveURL      string
}

// ProjectService coordinates project level operations backed by repositories.
type ProjectService interface {
	Create(ctx context.Context, createdBy int64, input ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id int64, input ProjectInput) (*domain.Project, error)
	Get(ctx context.Context, id int64) (*domain.Project, error)
	View(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, filter repository.ProjectFilter, limit, offset int) ([]domain.Project, int64, error)
	Delete(ctx context.Context, id int64) error
	ToggleLike(ctx context.Context, projectID, userID int64) (liked bool, err error)
}

type projectService struct {
	projects repository.ProjectRepository
	comments repository.CommentRepository
}

func NewProjectService(projects repository.ProjectRepository, comments repository.CommentRepository) ProjectService {
	return &projectService{
		projects: projects,
		comments: comments,
	}
}

func validateProjectInput(input ProjectInput) error {
	title := strings.TrimSpace(input.Title)
	if len(title) < 3 || len(title) > 100 {
		return errors.New("title must be between 3 and 100 characters")
	}
	description := strings.TrimSpace(input.Description)
	if len(description) < 10 || len(description) > 1000 {
		return errors.New("description must be between 10 and 1000 characters")
	}
	if !isURL(input.Image) {
		return errors.New("image must be a valid URL")
	}
	if len(input.Technologies) == 0 {
		return errors.New("at least one technology is required")
	}
	if input.GithubURL != "" && !isURL(input.GithubURL) {
		return errors.New("github url is invalid")
	}
	if input.LiveURL != "" && !isURL(input.LiveURL) {
		return errors.New("live url is invalid")
	}
	return nil
}

func isURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

func (s *projectService) Create(ctx context.Context, createdBy int64, input ProjectInput) (*domain.Project, error) {
	if err := validateProjectInput(input); err != nil {
		return nil, err
	}

	technologies := make([]string, 0, len(input.Technologies))
	for _, tech := range input.Technologies {
		if t := strings.TrimSpace(tech); t != "" {
			technologies = append(technologies, t)
		}
	}

	project := &domain.Project{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Image:        input.Image,
		Technologies: technologies,
		GithubURL:    input.GithubURL,
		LiveURL:      input.LiveURL,
		IsActive:     true,
		CreatedBy:    createdBy,
	}

	if _, err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) Update(ctx context.Context, id int64, input ProjectInput) (*domain.Project, error) {
	if err := validateProjectInput(input); err != nil {
		return nil, err
	}

	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	project.Title = strings.TrimSpace(input.Title)
	project.Description = strings.TrimSpace(input.Description)
	project.Image = input.Image
	project.Technologies = input.Technologies
	project.GithubURL = input.GithubURL
	project.LiveURL = input.LiveURL

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *projectService) Get(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	count, err := s.comments.CountByProject(ctx, id)
	if err != nil {
		return nil, err
	}
	project.CommentCount = count
	return project, nil
}

// View returns the project after bumping its view counter.
func (s *projectService) View(ctx context.Context, id int64) (*domain.Project, error) {
	if err := s.projects.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *projectService) List(ctx context.Context, filter repository.ProjectFilter, limit, offset int) ([]domain.Project, int64, error) {
	projects, total, err := s.projects.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range projects {
		count, err := s.comments.CountByProject(ctx, projects[i].ID)
		if err != nil {
			return nil, 0, err
		}
		projects[i].CommentCount = count
	}
	return projects, total, nil
}

func (s *projectService) Delete(ctx context.Context, id int64) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.projects.SoftDelete(ctx, id)
}

// ToggleLike flips the user's like on a project and reports the resulting state.
func (s *projectService) ToggleLike(ctx context.Context, projectID, userID int64) (bool, error) {
	project, err := s.get(ctx, projectID)
	if err != nil {
		return false, err
	}

	if project.LikedBy(userID) {
		if err := s.projects.RemoveLike(ctx, projectID, userID); err != nil {
			return false, err
		}
		return false, nil
	}
	if err := s.projects.AddLike(ctx, projectID, userID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *projectService) get(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	if !project.IsActive {
		return nil, ErrProjectNotFound
	}
	return project, nil
}
