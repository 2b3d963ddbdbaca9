package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/db"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
	"github.com/holosmedia/holos/internal/playlist"
)

// Request/Response DTOs

// AddPlaylistItemRequest represents a request to append a catalog item to the playlist
type AddPlaylistItemRequest struct {
	MediaID string `json:"media_id" binding:"required"`
}

// ReorderPlaylistRequest represents a request to move one item to a new position
type ReorderPlaylistRequest struct {
	FromIndex int `json:"from_index"`
	ToIndex   int `json:"to_index"`
}

// SetPlayModeRequest represents a request to switch end-of-list handling
type SetPlayModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SetPlayingRequest represents a request to toggle the playing flag
type SetPlayingRequest struct {
	Playing bool `json:"playing"`
}

// SetCurrentIndexRequest represents a request to jump the cursor
type SetCurrentIndexRequest struct {
	Index int `json:"index"`
}

// CursorResponse reports the cursor position after a navigation operation
type CursorResponse struct {
	CurrentIndex int `json:"current_index"`
}

// SavePlaylistRequest represents a request to save the live playlist under a name
type SavePlaylistRequest struct {
	Name string `json:"name" binding:"required"`
}

// SavedPlaylistListResponse represents the saved playlist collection
type SavedPlaylistListResponse struct {
	Playlists []*models.SavedPlaylist `json:"playlists"`
}

// PlaylistHandler handles live playlist and saved playlist API requests
type PlaylistHandler struct {
	coord *playlist.Coordinator
	saved *playlist.SavedService
	repos *db.Repositories
}

// NewPlaylistHandler creates a new playlist handler instance
func NewPlaylistHandler(coord *playlist.Coordinator, saved *playlist.SavedService, repos *db.Repositories) *PlaylistHandler {
	return &PlaylistHandler{
		coord: coord,
		saved: saved,
		repos: repos,
	}
}

// GetPlaylist handles GET /api/playlist
func (h *PlaylistHandler) GetPlaylist(c *gin.Context) {
	c.JSON(http.StatusOK, h.coord.Snapshot())
}

// GetCurrentItem handles GET /api/playlist/current
func (h *PlaylistHandler) GetCurrentItem(c *gin.Context) {
	item, ok := h.coord.CurrentItem()
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "empty_playlist",
			Message: "The playlist is empty",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item":          item,
		"current_index": h.coord.CurrentIndex(),
	})
}

// AddItem handles POST /api/playlist/items
func (h *PlaylistHandler) AddItem(c *gin.Context) {
	var req AddPlaylistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	mediaID, err := uuid.Parse(req.MediaID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_media_id",
			Message: "Invalid media ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.repos.Media.GetByID(ctx, mediaID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "media_not_found",
				Message: "Media item not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("media_id", mediaID.String()).
			Msg("Failed to look up media item for playlist add")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve media item",
		})
		return
	}

	if !h.coord.Add(ctx, *item) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "playlist_full",
			Message: "The playlist is at capacity",
		})
		return
	}

	logger.Log.Info().
		Str("media_id", mediaID.String()).
		Int("length", h.coord.Len()).
		Msg("Item added to playlist")

	c.JSON(http.StatusCreated, h.coord.Snapshot())
}

// RemoveItem handles DELETE /api/playlist/items/:id
func (h *PlaylistHandler) RemoveItem(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid item ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if !h.coord.Remove(ctx, id) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Item is not in the playlist",
		})
		return
	}

	c.JSON(http.StatusOK, h.coord.Snapshot())
}

// Reorder handles PUT /api/playlist/reorder
func (h *PlaylistHandler) Reorder(c *gin.Context) {
	var req ReorderPlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.coord.Reorder(ctx, req.FromIndex, req.ToIndex); err != nil {
		if playlist.IsIndexOutOfRange(err) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "index_out_of_range",
				Message: "Reorder indices are out of range",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Int("from_index", req.FromIndex).
			Int("to_index", req.ToIndex).
			Msg("Failed to reorder playlist")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "reorder_failed",
			Message: "Failed to reorder playlist",
		})
		return
	}

	c.JSON(http.StatusOK, h.coord.Snapshot())
}

// Clear handles POST /api/playlist/clear
func (h *PlaylistHandler) Clear(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	h.coord.Clear(ctx)

	logger.Log.Info().Msg("Playlist cleared")

	c.JSON(http.StatusOK, h.coord.Snapshot())
}

// Advance handles POST /api/playlist/advance
func (h *PlaylistHandler) Advance(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	index, err := h.coord.Advance(ctx)
	if err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "empty_playlist",
			Message: "The playlist is empty",
		})
		return
	}

	c.JSON(http.StatusOK, CursorResponse{CurrentIndex: index})
}

// Previous handles POST /api/playlist/previous
func (h *PlaylistHandler) Previous(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	index, err := h.coord.Previous(ctx)
	if err != nil {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "empty_playlist",
			Message: "The playlist is empty",
		})
		return
	}

	c.JSON(http.StatusOK, CursorResponse{CurrentIndex: index})
}

// ItemEnded handles POST /api/playlist/item-ended, the playback surface's
// end-of-item signal
func (h *PlaylistHandler) ItemEnded(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	h.coord.OnItemEnded(ctx)

	c.JSON(http.StatusOK, CursorResponse{CurrentIndex: h.coord.CurrentIndex()})
}

// SetMode handles PUT /api/playlist/mode
func (h *PlaylistHandler) SetMode(c *gin.Context) {
	var req SetPlayModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.coord.SetPlayMode(ctx, models.PlayMode(req.Mode)); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_mode",
			Message: "Play mode must be 'loop' or 'manual'",
		})
		return
	}

	c.JSON(http.StatusOK, h.coord.Snapshot())
}

// SetPlaying handles PUT /api/playlist/playing
func (h *PlaylistHandler) SetPlaying(c *gin.Context) {
	var req SetPlayingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	h.coord.SetPlaying(ctx, req.Playing)

	c.JSON(http.StatusOK, h.coord.Snapshot())
}

// SetCurrent handles PUT /api/playlist/current
func (h *PlaylistHandler) SetCurrent(c *gin.Context) {
	var req SetCurrentIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.coord.SetCurrentIndex(ctx, req.Index); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "index_out_of_range",
			Message: "Index is out of range",
		})
		return
	}

	c.JSON(http.StatusOK, CursorResponse{CurrentIndex: req.Index})
}

// SavePlaylist handles POST /api/playlists
func (h *PlaylistHandler) SavePlaylist(c *gin.Context) {
	var req SavePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	saved, err := h.saved.SaveNamed(ctx, req.Name)
	if err != nil {
		if playlist.IsEmptyPlaylist(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "empty_playlist",
				Message: "Cannot save an empty playlist",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("name", req.Name).
			Msg("Failed to save playlist")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "save_failed",
			Message: "Failed to save playlist",
		})
		return
	}

	logger.Log.Info().
		Str("playlist_id", saved.ID.String()).
		Str("name", saved.Name).
		Int("item_count", saved.ItemCount).
		Msg("Playlist saved")

	c.JSON(http.StatusCreated, saved)
}

// ListSavedPlaylists handles GET /api/playlists
func (h *PlaylistHandler) ListSavedPlaylists(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	playlists, err := h.saved.ListSaved(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to list saved playlists")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve saved playlists",
		})
		return
	}

	c.JSON(http.StatusOK, SavedPlaylistListResponse{Playlists: playlists})
}

// DeleteSavedPlaylist handles DELETE /api/playlists/:id
func (h *PlaylistHandler) DeleteSavedPlaylist(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid playlist ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.saved.DeleteNamed(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Saved playlist not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("playlist_id", id.String()).
			Msg("Failed to delete saved playlist")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "delete_failed",
			Message: "Failed to delete saved playlist",
		})
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{
		Message: "Saved playlist deleted successfully",
	})
}

// RestoreSavedPlaylist handles POST /api/playlists/:id/restore
func (h *PlaylistHandler) RestoreSavedPlaylist(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid playlist ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.saved.Restore(ctx, id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Saved playlist not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("playlist_id", id.String()).
			Msg("Failed to restore saved playlist")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "restore_failed",
			Message: "Failed to restore saved playlist",
		})
		return
	}

	logger.Log.Info().
		Str("playlist_id", id.String()).
		Msg("Saved playlist restored")

	c.JSON(http.StatusOK, h.coord.Snapshot())
}

// SetupPlaylistRoutes registers live playlist and saved playlist routes
func SetupPlaylistRoutes(apiGroup *gin.RouterGroup, coord *playlist.Coordinator, saved *playlist.SavedService, repos *db.Repositories) {
	handler := NewPlaylistHandler(coord, saved, repos)

	// Live playlist
	apiGroup.GET("/playlist", handler.GetPlaylist)
	apiGroup.GET("/playlist/current", handler.GetCurrentItem)
	apiGroup.POST("/playlist/items", handler.AddItem)
	apiGroup.DELETE("/playlist/items/:id", handler.RemoveItem)
	apiGroup.PUT("/playlist/reorder", handler.Reorder)
	apiGroup.POST("/playlist/clear", handler.Clear)
	apiGroup.POST("/playlist/advance", handler.Advance)
	apiGroup.POST("/playlist/previous", handler.Previous)
	apiGroup.POST("/playlist/item-ended", handler.ItemEnded)
	apiGroup.PUT("/playlist/mode", handler.SetMode)
	apiGroup.PUT("/playlist/playing", handler.SetPlaying)
	apiGroup.PUT("/playlist/current", handler.SetCurrent)

	// Saved playlists
	apiGroup.POST("/playlists", handler.SavePlaylist)
	apiGroup.GET("/playlists", handler.ListSavedPlaylists)
	apiGroup.DELETE("/playlists/:id", handler.DeleteSavedPlaylist)
	apiGroup.POST("/playlists/:id/restore", handler.RestoreSavedPlaylist)
}
