package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
)

type fakeProjects struct {
	nextID int64
	byID   map[int64]*domain.Project
}

var _ repository.ProjectRepository = (*fakeProjects)(nil)

func newFakeProjects() *fakeProjects {
	return &fakeProjects{nextID: 1, byID: map[int64]*domain.Project{}}
}

func (f *fakeProjects) Init(context.Context) error { return nil }

func (f *fakeProjects) Create(_ context.Context, project *domain.Project) (int64, error) {
	project.ID = f.nextID
	f.nextID++
	clone := *project
	f.byID[clone.ID] = &clone
	return clone.ID, nil
}

func (f *fakeProjects) Update(_ context.Context, project *domain.Project) error {
	if _, ok := f.byID[project.ID]; !ok {
		return errors.New("project not found")
	}
	clone := *project
	f.byID[clone.ID] = &clone
	return nil
}

func (f *fakeProjects) Get(_ context.Context, id int64) (*domain.Project, error) {
	project, ok := f.byID[id]
	if !ok {
		return nil, errors.New("project not found")
	}
	clone := *project
	clone.Likes = append([]domain.ProjectLike(nil), project.Likes...)
	return &clone, nil
}

func (f *fakeProjects) List(_ context.Context, filter repository.ProjectFilter, limit, offset int) ([]domain.Project, int64, error) {
	var projects []domain.Project
	for _, project := range f.byID {
		if !project.IsActive {
			continue
		}
		if filter.Search != "" && !strings.Contains(project.Title, filter.Search) {
			continue
		}
		projects = append(projects, *project)
	}
	return projects, int64(len(projects)), nil
}

func (f *fakeProjects) SoftDelete(_ context.Context, id int64) error {
	project, ok := f.byID[id]
	if !ok {
		return errors.New("project not found")
	}
	project.IsActive = false
	return nil
}

func (f *fakeProjects) IncrementViews(_ context.Context, id int64) error {
	project, ok := f.byID[id]
	if !ok {
		return errors.New("project not found")
	}
	project.Views++
	return nil
}

func (f *fakeProjects) AddLike(_ context.Context, projectID, userID int64) error {
	project, ok := f.byID[projectID]
	if !ok {
		return errors.New("project not found")
	}
	project.Likes = append(project.Likes, domain.ProjectLike{ProjectID: projectID, UserID: userID})
	return nil
}

func (f *fakeProjects) RemoveLike(_ context.Context, projectID, userID int64) error {
	project, ok := f.byID[projectID]
	if !ok {
		return errors.New("project not found")
	}
	kept := project.Likes[:0]
	for _, like := range project.Likes {
		if like.UserID != userID {
			kept = append(kept, like)
		}
	}
	project.Likes = kept
	return nil
}

type fakeComments struct {
	nextID int64
	byID   map[int64]*domain.Comment
}

var _ repository.CommentRepository = (*fakeComments)(nil)

func newFakeComments() *fakeComments {
	return &fakeComments{nextID: 1, byID: map[int64]*domain.Comment{}}
}

func (f *fakeComments) Init(context.Context) error { return nil }

func (f *fakeComments) Create(_ context.Context, comment *domain.Comment) (int64, error) {
	comment.ID = f.nextID
	f.nextID++
	clone := *comment
	f.byID[clone.ID] = &clone
	return clone.ID, nil
}

func (f *fakeComments) Get(_ context.Context, id int64) (*domain.Comment, error) {
	comment, ok := f.byID[id]
	if !ok {
		return nil, errors.New("comment not found")
	}
	clone := *comment
	return &clone, nil
}

func (f *fakeComments) UpdateContent(_ context.Context, id int64, content string) error {
	comment, ok := f.byID[id]
	if !ok {
		return errors.New("comment not found")
	}
	comment.Content = content
	return nil
}

func (f *fakeComments) SoftDelete(_ context.Context, id int64) error {
	comment, ok := f.byID[id]
	if !ok {
		return errors.New("comment not found")
	}
	comment.IsActive = false
	return nil
}

func (f *fakeComments) ListByProject(_ context.Context, projectID int64, limit, offset int) ([]domain.Comment, int64, error) {
	var comments []domain.Comment
	for _, comment := range f.byID {
		if comment.ProjectID == projectID && comment.IsActive && comment.ParentCommentID == nil {
			comments = append(comments, *comment)
		}
	}
	return comments, int64(len(comments)), nil
}

func (f *fakeComments) CountByProject(_ context.Context, projectID int64) (int64, error) {
	var count int64
	for _, comment := range f.byID {
		if comment.ProjectID == projectID && comment.IsActive {
			count++
		}
	}
	return count, nil
}

func validProjectInput() ProjectInput {
	return ProjectInput{
		Title:        "Portfolio Site",
		Description:  "A personal portfolio with projects and comments.",
		Image:        "https://cdn.example.com/shot.png",
		Technologies: []string{"Go", "SQLite"},
		GithubURL:    "https://github.com/example/portfolio",
	}
}

func TestProjectCreateAndGet(t *testing.T) {
	svc := NewProjectService(newFakeProjects(), newFakeComments())

	created, err := svc.Create(context.Background(), 1, validProjectInput())
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.True(t, created.IsActive)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Portfolio Site", got.Title)
	require.Zero(t, got.CommentCount)
}

func TestProjectCreateValidation(t *testing.T) {
	svc := NewProjectService(newFakeProjects(), newFakeComments())

	bad := []func(*ProjectInput){
		func(p *ProjectInput) { p.Title = "ab" },
		func(p *ProjectInput) { p.Description = "too short" },
		func(p *ProjectInput) { p.Image = "not-a-url" },
		func(p *ProjectInput) { p.Technologies = nil },
		func(p *ProjectInput) { p.GithubURL = "ftp://example.com/repo" },
	}
	for _, mutate := range bad {
		input := validProjectInput()
		mutate(&input)
		_, err := svc.Create(context.Background(), 1, input)
		require.Error(t, err)
	}
}

func TestProjectViewIncrements(t *testing.T) {
	svc := NewProjectService(newFakeProjects(), newFakeComments())

	created, err := svc.Create(context.Background(), 1, validProjectInput())
	require.NoError(t, err)

	viewed, err := svc.View(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), viewed.Views)

	viewed, err = svc.View(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), viewed.Views)
}

func TestProjectDeleteHidesFromLookups(t *testing.T) {
	svc := NewProjectService(newFakeProjects(), newFakeComments())

	created, err := svc.Create(context.Background(), 1, validProjectInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.ErrorIs(t, err, ErrProjectNotFound)
	require.ErrorIs(t, svc.Delete(context.Background(), created.ID), ErrProjectNotFound)
}

func TestProjectToggleLike(t *testing.T) {
	svc := NewProjectService(newFakeProjects(), newFakeComments())

	created, err := svc.Create(context.Background(), 1, validProjectInput())
	require.NoError(t, err)

	liked, err := svc.ToggleLike(context.Background(), created.ID, 7)
	require.NoError(t, err)
	require.True(t, liked)

	liked, err = svc.ToggleLike(context.Background(), created.ID, 7)
	require.NoError(t, err)
	require.False(t, liked)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Empty(t, got.Likes)
}

func TestProjectGetCountsComments(t *testing.T) {
	projects := newFakeProjects()
	comments := newFakeComments()
	projectSvc := NewProjectService(projects, comments)
	commentSvc := NewCommentService(comments, projects)

	created, err := projectSvc.Create(context.Background(), 1, validProjectInput())
	require.NoError(t, err)

	_, err = commentSvc.Create(context.Background(), 7, created.ID, nil, "Nice work!")
	require.NoError(t, err)

	got, err := projectSvc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), got.CommentCount)
}
