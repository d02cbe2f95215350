package http

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"portfolio-hub/internal/domain"
	"portfolio-hub/internal/repository"
	"portfolio-hub/internal/service"
	"portfolio-hub/internal/storage"
)

const maxUploadBytes = 10 << 20 // 10 MiB per asset

type ActivityResponse struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	TargetType string         `json:"targetType,omitempty"`
	TargetID   *string        `json:"targetId,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	IPAddress  string         `json:"ipAddress,omitempty"`
	UserAgent  string         `json:"userAgent,omitempty"`
	CreatedAt  string         `json:"createdAt"`
	User       CommentUser    `json:"user"`
}

func activityToResponse(activity domain.Activity) ActivityResponse {
	resp := ActivityResponse{
		ID:         strconv.FormatInt(activity.ID, 10),
		Action:     string(activity.Action),
		TargetType: string(activity.TargetType),
		Metadata:   activity.Metadata,
		IPAddress:  activity.IPAddress,
		UserAgent:  activity.UserAgent,
		CreatedAt:  activity.CreatedAt.Format(time.RFC3339),
		User: CommentUser{
			ID:    strconv.FormatInt(activity.UserID, 10),
			Name:  activity.UserName,
			Email: activity.UserEmail,
		},
	}
	if activity.TargetID != nil {
		v := strconv.FormatInt(*activity.TargetID, 10)
		resp.TargetID = &v
	}
	return resp
}

func (h *Handler) listActivities(c *gin.Context) {
	limit, offset, page := parsePagination(c, 50)

	filter := domain.ActivityFilter{}
	if raw := c.Query("user"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid user filter"})
			return
		}
		filter.UserID = &id
	}
	if action := c.Query("action"); action != "" && action != "all" {
		filter.Action = domain.ActivityAction(action)
	}
	if target := c.Query("targetType"); target != "" && target != "all" {
		filter.TargetType = domain.TargetType(target)
	}
	if raw := c.Query("startDate"); raw != "" {
		since, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid startDate"})
			return
		}
		filter.Since = since
	}
	if raw := c.Query("endDate"); raw != "" {
		until, err := parseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid endDate"})
			return
		}
		filter.Until = until
	}

	activities, total, err := h.activities.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	resp := make([]ActivityResponse, len(activities))
	for i := range activities {
		resp[i] = activityToResponse(activities[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"activities":  resp,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

func (h *Handler) activityStats(c *gin.Context) {
	stats, err := h.activities.Stats(c.Request.Context(), c.DefaultQuery("period", "7d"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidStatsPeriod) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid period"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	counts := make(map[string]int64, len(stats.Counts))
	for action, count := range stats.Counts {
		counts[string(action)] = count
	}

	c.JSON(http.StatusOK, gin.H{
		"period": stats.Period,
		"since":  stats.Since.Format(time.RFC3339),
		"counts": counts,
		"total":  stats.Total,
	})
}

func (h *Handler) listUsers(c *gin.Context) {
	limit, offset, page := parsePagination(c, 10)

	filter := repository.UserFilter{Search: c.Query("search")}
	if role := c.Query("role"); role != "" && role != "all" {
		filter.Role = domain.Role(role)
	}

	users, total, err := h.users.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = userToResponse(&users[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"users":       resp,
		"totalPages":  totalPages(total, limit),
		"currentPage": page,
		"total":       total,
	})
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	viewer := currentUser(c)
	if viewer.ID != user.ID {
		h.recordActivity(c, viewer.ID, domain.ActionViewProfile, domain.TargetUser, &user.ID, nil)
	}

	c.JSON(http.StatusOK, gin.H{"user": userToResponse(user)})
}

func (h *Handler) uploadAsset(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Storage service not configured"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "file field is required"})
		return
	}
	if header.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"message": "file is too large"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType := mime.TypeByExtension(ext)
	key := h.keyPrefix
	if key != "" {
		key += "/"
	}
	key += fmt.Sprintf("%s%s", uuid.NewString(), ext)

	location, err := h.storage.UploadObject(c.Request.Context(), storage.UploadInput{
		Bucket:      h.bucket,
		Key:         key,
		ContentType: contentType,
		Body:        file,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}

	url, err := h.storage.GetObjectURL(c.Request.Context(), h.bucket, key, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Upload failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"location": location,
		"key":      key,
		"url":      url,
	})
}

func (h *Handler) listObjects(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Storage service not configured"})
		return
	}

	objects, err := h.storage.ListObjects(c.Request.Context(), h.bucket, c.Query("prefix"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	resp := make([]StorageObjectResponse, len(objects))
	for i := range objects {
		resp[i] = objectToResponse(objects[i])
	}
	c.JSON(http.StatusOK, gin.H{"objects": resp})
}

func (h *Handler) deleteObjects(c *gin.Context) {
	if h.storage == nil || h.bucket == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Storage service not configured"})
		return
	}

	prefix := strings.TrimSpace(c.Query("prefix"))
	if prefix == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "prefix is required"})
		return
	}

	if err := h.storage.DeletePrefix(c.Request.Context(), h.bucket, prefix); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": prefix})
}

type StorageObjectResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
}

func objectToResponse(obj storage.ObjectInfo) StorageObjectResponse {
	resp := StorageObjectResponse{
		Key:  obj.Key,
		Size: obj.Size,
	}
	if obj.LastModified != nil && !obj.LastModified.IsZero() {
		v := obj.LastModified.Format(time.RFC3339)
		resp.LastModified = &v
	}
	return resp
}
