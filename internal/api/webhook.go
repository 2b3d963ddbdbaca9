package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/holosmedia/holos/internal/broadcast"
	"github.com/holosmedia/holos/internal/logger"
)

// signatureHeader carries the collaborator's shared-secret signature
const signatureHeader = "X-FFmpeg-Signature"

// WebhookEvent represents an out-of-band event pushed by the collaborator
type WebhookEvent struct {
	ChannelID string `json:"channelId"`
	Event     string `json:"event"`
	Status    string `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// WebhookResponse acknowledges a processed event
type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// WebhookHandler ingests collaborator lifecycle events
type WebhookHandler struct {
	manager *broadcast.Manager
	apiKey  string
}

// NewWebhookHandler creates a new webhook handler instance
func NewWebhookHandler(manager *broadcast.Manager, apiKey string) *WebhookHandler {
	return &WebhookHandler{
		manager: manager,
		apiKey:  apiKey,
	}
}

// Receive handles POST /api/webhooks/broadcast. The signature header must
// match the configured collaborator API key; anything else is rejected and
// logged without touching session state.
func (h *WebhookHandler) Receive(c *gin.Context) {
	signature := c.GetHeader(signatureHeader)
	if h.apiKey == "" || subtle.ConstantTimeCompare([]byte(signature), []byte(h.apiKey)) != 1 {
		logger.Log.Warn().
			Str("remote_addr", c.ClientIP()).
			Msg("Webhook rejected: invalid signature")

		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "invalid_signature",
			Message: "Webhook signature verification failed",
		})
		return
	}

	var event WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil || event.ChannelID == "" || event.Event == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_payload",
			Message: "Webhook payload must carry channelId and event",
		})
		return
	}

	logger.Log.Info().
		Str("channel_id", event.ChannelID).
		Str("event", event.Event).
		Str("status", event.Status).
		Str("error", event.Error).
		Msg("Collaborator webhook received")

	if channelID, err := uuid.Parse(event.ChannelID); err == nil && isTerminalWebhookEvent(event) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		h.manager.MarkStopped(ctx, channelID)
	}

	c.JSON(http.StatusOK, WebhookResponse{
		Success: true,
		Message: "Webhook processed successfully",
	})
}

// isTerminalWebhookEvent reports whether the event means the stream has
// ended on the collaborator side
func isTerminalWebhookEvent(event WebhookEvent) bool {
	switch event.Event {
	case "stream.stopped", "stream.failed", "stream.finished":
		return true
	}
	switch event.Status {
	case "stopped", "error", "failed", "finished":
		return true
	}
	return false
}

// SetupWebhookRoutes registers collaborator webhook routes
func SetupWebhookRoutes(apiGroup *gin.RouterGroup, manager *broadcast.Manager, apiKey string) {
	handler := NewWebhookHandler(manager, apiKey)

	apiGroup.POST("/webhooks/broadcast", handler.Receive)
}
