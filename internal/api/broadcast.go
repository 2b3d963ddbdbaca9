package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/broadcast"
	"github.com/holosmedia/holos/internal/channel"
	"github.com/holosmedia/holos/internal/logger"
	"github.com/holosmedia/holos/internal/models"
)

// Request/Response DTOs

// StopBroadcastRequest represents an optional stop reason
type StopBroadcastRequest struct {
	Reason string `json:"reason,omitempty"`
}

// TransmitConfigRequest represents a request to configure an additional output
type TransmitConfigRequest struct {
	Protocol    string `json:"protocol" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// BroadcastHandler handles broadcast lifecycle API requests
type BroadcastHandler struct {
	manager        *broadcast.Manager
	channelService *channel.Service
}

// NewBroadcastHandler creates a new broadcast handler instance
func NewBroadcastHandler(manager *broadcast.Manager, channelService *channel.Service) *BroadcastHandler {
	return &BroadcastHandler{
		manager:        manager,
		channelService: channelService,
	}
}

// collaboratorStatus maps a manager error to an HTTP status. Collaborator
// failures surface as 502 so the operator can tell a gateway problem from
// a local one.
func collaboratorStatus(err error) (int, ErrorResponse) {
	if errors.Is(err, broadcast.ErrCollaboratorUnreachable) {
		return http.StatusBadGateway, ErrorResponse{
			Error:   "collaborator_unreachable",
			Message: "The broadcast collaborator could not be reached",
		}
	}
	if errors.Is(err, broadcast.ErrCollaboratorRejected) {
		return http.StatusBadGateway, ErrorResponse{
			Error:   "collaborator_rejected",
			Message: err.Error(),
		}
	}
	return 0, ErrorResponse{}
}

// StartBroadcast handles POST /api/channels/:id/broadcast/start
func (h *BroadcastHandler) StartBroadcast(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid channel ID format",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	ch, err := h.channelService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, channel.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Channel not found",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Str("channel_id", id.String()).
			Msg("Failed to get channel for broadcast start")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to retrieve channel",
		})
		return
	}

	session, err := h.manager.Activate(ctx, ch)
	if err != nil {
		if errors.Is(err, broadcast.ErrEmptyPlaylist) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "empty_playlist",
				Message: "Cannot start a broadcast with an empty playlist",
			})
			return
		}

		if errors.Is(err, broadcast.ErrOperationInFlight) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "operation_in_flight",
				Message: "Another start or stop is already running",
			})
			return
		}

		if errors.Is(err, broadcast.ErrInvalidTransition) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "invalid_state",
				Message: "The broadcast cannot be started from its current state",
			})
			return
		}

		if status, resp := collaboratorStatus(err); status != 0 {
			c.JSON(status, resp)
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "start_failed",
			Message: "Failed to start broadcast",
		})
		return
	}

	snap := session.Snapshot()
	c.JSON(http.StatusOK, snap)
}

// StopBroadcast handles POST /api/channels/:id/broadcast/stop
func (h *BroadcastHandler) StopBroadcast(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid channel ID format",
		})
		return
	}

	var req StopBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	session, err := h.manager.Deactivate(ctx, id, req.Reason)
	if err != nil {
		if errors.Is(err, broadcast.ErrNotLive) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "not_live",
				Message: "No live broadcast for this channel",
			})
			return
		}

		if errors.Is(err, broadcast.ErrOperationInFlight) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "operation_in_flight",
				Message: "Another start or stop is already running",
			})
			return
		}

		if status, resp := collaboratorStatus(err); status != 0 {
			c.JSON(status, resp)
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "stop_failed",
			Message: "Failed to stop broadcast",
		})
		return
	}

	snap := session.Snapshot()
	c.JSON(http.StatusOK, snap)
}

// GetBroadcastStatus handles GET /api/channels/:id/broadcast/status.
// It returns the in-memory session; the manager's poller keeps the
// telemetry fresh, so no collaborator round trip happens here.
func (h *BroadcastHandler) GetBroadcastStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid channel ID format",
		})
		return
	}

	session, ok := h.manager.GetSession(id)
	if !ok {
		c.JSON(http.StatusOK, models.NewBroadcastSession(id).Snapshot())
		return
	}

	snap := session.Snapshot()
	c.JSON(http.StatusOK, snap)
}

// ConfigureTransmission handles POST /api/channels/:id/broadcast/transmit
func (h *BroadcastHandler) ConfigureTransmission(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid channel ID format",
		})
		return
	}

	var req TransmitConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	resp, err := h.manager.ConfigureTransmission(ctx, id, req.Protocol, req.Destination)
	if err != nil {
		if errors.Is(err, broadcast.ErrUnsupportedProtocol) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "unsupported_protocol",
				Message: "Protocol must be one of: ip, udp, rtmp, hls, dash",
			})
			return
		}

		if errors.Is(err, broadcast.ErrInvalidDestination) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_destination",
				Message: "Destination must be a URL or a host:port pair",
			})
			return
		}

		if status, errResp := collaboratorStatus(err); status != 0 {
			c.JSON(status, errResp)
			return
		}

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "transmit_failed",
			Message: "Failed to configure transmission",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SetupBroadcastRoutes registers broadcast lifecycle routes
func SetupBroadcastRoutes(apiGroup *gin.RouterGroup, manager *broadcast.Manager, channelService *channel.Service) {
	handler := NewBroadcastHandler(manager, channelService)

	apiGroup.POST("/channels/:id/broadcast/start", handler.StartBroadcast)
	apiGroup.POST("/channels/:id/broadcast/stop", handler.StopBroadcast)
	apiGroup.GET("/channels/:id/broadcast/status", handler.GetBroadcastStatus)
	apiGroup.POST("/channels/:id/broadcast/transmit", handler.ConfigureTransmission)
}
