package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/service"
)

type createCommentRequest struct {
	Content         string `json:"content" binding:"required"`
	ProjectID       string `json:"projectId" binding:"required"`
	ParentCommentID string `json:"parentCommentId"`
}

type CommentResponse struct {
	ID              string            `json:"id"`
	ProjectID       string            `json:"projectId"`
	ParentCommentID *string           `json:"parentCommentId,omitempty"`
	Content         string            `json:"content"`
	User            CommentUser       `json:"user"`
	CreatedAt       string            `json:"createdAt"`
	UpdatedAt       string            `json:"updatedAt"`
	Replies         []CommentResponse `json:"replies,omitempty"`
}

type CommentUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func commentToResponse(comment domain.Comment) CommentResponse {
	resp := CommentResponse{
		ID:        strconv.FormatInt(comment.ID, 10),
		ProjectID: strconv.FormatInt(comment.ProjectID, 10),
		Content:   comment.Content,
		User: CommentUser{
			ID:    strconv.FormatInt(comment.UserID, 10),
			Name:  comment.UserName,
			Email: comment.UserEmail,
		},
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
		UpdatedAt: comment.UpdatedAt.Format(time.RFC3339),
	}
	if comment.ParentCommentID != nil {
		v := strconv.FormatInt(*comment.ParentCommentID, 10)
		resp.ParentCommentID = &v
	}
	for _, reply := range comment.Replies {
		resp.Replies = append(resp.Replies, commentToResponse(reply))
	}
	return resp
}

func (h *Handler) listComments(c *gin.Context) {
	projectID, ok := pathID(c, "projectId")
	if !ok {
		return
	}
	limit, offset, page := parsePagination(c, 20)

	comments, total, err := h.comments.ListByProject(c.Request.Context(), projectID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = commentToResponse(comments[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"comments":    resp,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

func (h *Handler) createComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	projectID, err := strconv.ParseInt(req.ProjectID, 10, 64)
	if err != nil || projectID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid projectId"})
		return
	}

	var parentID *int64
	if req.ParentCommentID != "" {
		id, err := strconv.ParseInt(req.ParentCommentID, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid parentCommentId"})
			return
		}
		parentID = &id
	}

	user := currentUser(c)
	comment, err := h.comments.Create(c.Request.Context(), user.ID, projectID, parentID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		case errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Parent comment not found"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		}
		return
	}

	h.recordActivity(c, user.ID, domain.ActionComment, domain.TargetProject, &projectID, nil)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": commentToResponse(*comment),
	})
}

func (h *Handler) updateComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), id, currentUser(c).ID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
		case errors.Is(err, service.ErrNotCommentAuthor):
			c.JSON(http.StatusForbidden, gin.H{"message": "You can only edit your own comments"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment updated successfully",
		"comment": commentToResponse(*comment),
	})
}

func (h *Handler) deleteComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user := currentUser(c)
	err := h.comments.Delete(c.Request.Context(), id, user.ID, user.Role == domain.RoleOwner)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Comment not found"})
		case errors.Is(err, service.ErrNotCommentAuthor):
			c.JSON(http.StatusForbidden, gin.H{"message": "You can only delete your own comments"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
