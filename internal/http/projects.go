package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
	"portfolio-hub/internal/service"
)

type projectRequest struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description" binding:"required"`
	Image        string   `json:"image" binding:"required"`
	Technologies []string `json:"technologies" binding:"required"`
	GithubURL    string   `json:"githubUrl"`
	LiveURL      string   `json:"liveUrl"`
}

type ProjectResponse struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Image         string   `json:"image"`
	Technologies  []string `json:"technologies"`
	GithubURL     string   `json:"githubUrl,omitempty"`
	LiveURL       string   `json:"liveUrl,omitempty"`
	Views         int64    `json:"views"`
	LikeCount     int      `json:"likeCount"`
	CommentCount  int64    `json:"commentCount"`
	IsLikedByUser bool     `json:"isLikedByUser"`
	CreatedBy     string   `json:"createdBy"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

func (r projectRequest) toInput() service.ProjectInput {
	return service.ProjectInput{
		Title:        r.Title,
		Description:  r.Description,
		Image:        r.Image,
		Technologies: r.Technologies,
		GithubURL:    r.GithubURL,
		LiveURL:      r.LiveURL,
	}
}

func projectToResponse(project domain.Project, viewer *domain.User) ProjectResponse {
	resp := ProjectResponse{
		ID:           strconv.FormatInt(project.ID, 10),
		Title:        project.Title,
		Description:  project.Description,
		Image:        project.Image,
		Technologies: project.Technologies,
		GithubURL:    project.GithubURL,
		LiveURL:      project.LiveURL,
		Views:        project.Views,
		LikeCount:    len(project.Likes),
		CommentCount: project.CommentCount,
		CreatedBy:    strconv.FormatInt(project.CreatedBy, 10),
		CreatedAt:    project.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    project.UpdatedAt.Format(time.RFC3339),
	}
	if resp.Technologies == nil {
		resp.Technologies = []string{}
	}
	if viewer != nil {
		resp.IsLikedByUser = project.LikedBy(viewer.ID)
	}
	return resp
}

func (h *Handler) listProjects(c *gin.Context) {
	limit, offset, page := parsePagination(c, 12)
	filter := repository.ProjectFilter{
		Search:     c.Query("search"),
		Technology: c.Query("technology"),
	}

	projects, total, err := h.projects.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	viewer := currentUser(c)
	resp := make([]ProjectResponse, len(projects))
	for i := range projects {
		resp[i] = projectToResponse(projects[i], viewer)
	}

	c.JSON(http.StatusOK, gin.H{
		"projects":    resp,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

func (h *Handler) getProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	project, err := h.projects.View(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	viewer := currentUser(c)
	if viewer != nil {
		h.recordActivity(c, viewer.ID, domain.ActionViewProject, domain.TargetProject, &project.ID, nil)
	}

	c.JSON(http.StatusOK, gin.H{"project": projectToResponse(*project, viewer)})
}

func (h *Handler) createProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	user := currentUser(c)
	project, err := h.projects.Create(c.Request.Context(), user.ID, req.toInput())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": projectToResponse(*project, user),
	})
}

func (h *Handler) updateProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	project, err := h.projects.Update(c.Request.Context(), id, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project updated successfully",
		"project": projectToResponse(*project, currentUser(c)),
	})
}

func (h *Handler) deleteProject(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projects.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}

func (h *Handler) toggleLike(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user := currentUser(c)
	liked, err := h.projects.ToggleLike(c.Request.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	action := domain.ActionUnlike
	if liked {
		action = domain.ActionLike
	}
	h.recordActivity(c, user.ID, action, domain.TargetProject, &id, nil)

	project, err := h.projects.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":   liked,
		"project": projectToResponse(*project, user),
	})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return 0, false
	}
	return id, true
}
