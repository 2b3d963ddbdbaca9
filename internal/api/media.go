package api

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/db"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
)

// Request/Response DTOs

// RegisterMediaRequest represents a request to register a media item in the catalog
type RegisterMediaRequest struct {
	Title        string  `json:"title" binding:"required"`
	FilePath     string  `json:"file_path" binding:"required"`
	Duration     *int64  `json:"duration,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}

// UpdateMediaRequest represents a request to update media display metadata
type UpdateMediaRequest struct {
	Title        *string `json:"title,omitempty"`
	ThumbnailURL *string `json:"thumbnail_url,omitempty"`
}

// MediaListResponse represents the media catalog listing
type MediaListResponse struct {
	Items []*models.MediaItem `json:"items"`
	Total int                 `json:"total"`
}

// MediaHandler handles media catalog API requests
type MediaHandler struct {
	repos            *db.Repositories
	supportedFormats map[string]bool
}

// NewMediaHandler creates a new media handler instance
func NewMediaHandler(repos *db.Repositories, supportedFormats []string) *MediaHandler {
	formats := make(map[string]bool, len(supportedFormats))
	for _, f := range supportedFormats {
		formats[strings.ToLower(strings.TrimPrefix(f, "."))] = true
	}
	return &MediaHandler{
		repos:            repos,
		supportedFormats: formats,
	}
}

// supportedFormat checks the file extension against the configured formats.
// Locators without an extension are accepted; the collaborator probes them.
func (h *MediaHandler) supportedFormat(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if ext == "" {
		return true
	}
	return h.supportedFormats[ext]
}

// RegisterMedia handles POST /api/media
func (h *MediaHandler) RegisterMedia(c *gin.Context) {
	var req RegisterMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	if !h.supportedFormat(req.FilePath) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unsupported_format",
			Message: "File format is not supported",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item := models.NewMediaItem(req.Title, req.FilePath)
	item.Duration = req.Duration
	item.ThumbnailURL = req.ThumbnailURL

	if err := h.repos.Media.Create(ctx, item); err != nil {
		logger.Log.Error().
			Err(err).
			Str("file_path", req.FilePath).
			Msg("Failed to register media item")

		if errors.Is(err, db.ErrDuplicate) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "duplicate_path",
				Message: "A media item with this file path already exists",
			})
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "create_failed",
			Message: "Failed to register media item",
		})
		return
	}

	logger.Log.Info().
		Str("media_id", item.ID.String()).
		Str("title", item.Title).
		Msg("Media item registered")

	c.JSON(http.StatusCreated, item)
}

// ListMedia handles GET /api/media
func (h *MediaHandler) ListMedia(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.repos.Media.List(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list media items")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve media catalog",
		})
		return
	}

	c.JSON(http.StatusOK, MediaListResponse{
		Items: items,
		Total: len(items),
	})
}

// GetMedia handles GET /api/media/:id
func (h *MediaHandler) GetMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid media ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.repos.Media.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Media item not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("media_id", id.String()).
			Msg("Failed to get media item")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve media item",
		})
		return
	}

	c.JSON(http.StatusOK, item)
}

// UpdateMedia handles PUT /api/media/:id
func (h *MediaHandler) UpdateMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid media ID format",
		})
		return
	}

	var req UpdateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.repos.Media.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Media item not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("media_id", id.String()).
			Msg("Failed to get media item for update")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve media item",
		})
		return
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.ThumbnailURL != nil {
		item.ThumbnailURL = req.ThumbnailURL
	}

	if err := h.repos.Media.Update(ctx, item); err != nil {
		logger.Log.Error().
			Err(err).
			Str("media_id", id.String()).
			Msg("Failed to update media item")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "update_failed",
			Message: "Failed to update media item",
		})
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteMedia handles DELETE /api/media/:id
func (h *MediaHandler) DeleteMedia(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid media ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repos.Media.Delete(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Media item not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("media_id", id.String()).
			Msg("Failed to delete media item")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete media item",
		})
		return
	}

	logger.Log.Info().
		Str("media_id", id.String()).
		Msg("Media item deleted")

	c.JSON(http.StatusOK, DeleteResponse{
		Message: "Media item deleted successfully",
	})
}

// SetupMediaRoutes registers media catalog routes
func SetupMediaRoutes(apiGroup *gin.RouterGroup, repos *db.Repositories, supportedFormats []string) {
	handler := NewMediaHandler(repos, supportedFormats)

	apiGroup.POST("/media", handler.RegisterMedia)
	apiGroup.GET("/media", handler.ListMedia)
	apiGroup.GET("/media/:id", handler.GetMedia)
	apiGroup.PUT("/media/:id", handler.UpdateMedia)
	apiGroup.DELETE("/media/:id", handler.DeleteMedia)
}
