package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/holosmedia/holos/internal/license"
	"github.com/holosmedia/holos/internal/logger"
)

// Request/Response DTOs

// ActivateRequest represents an activation key submission
type ActivateRequest struct {
	Key string `json:"key" binding:"required"`
}

// ActivateResponse represents a successful activation with a session token
type ActivateResponse struct {
	Valid     bool      `json:"valid"`
	KeyID     string    `json:"key_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token"`
}

// ValidateLicenseRequest represents a license key submission
type ValidateLicenseRequest struct {
	LicenseKey string `json:"license_key" binding:"required"`
}

// EntitlementStatusResponse reports the stored entitlement state
type EntitlementStatusResponse struct {
	MachineID      string     `json:"machine_id"`
	Activated      bool       `json:"activated"`
	ActivationEnds *time.Time `json:"activation_ends,omitempty"`
	Licensed       bool       `json:"licensed"`
	LicenseLevel   string     `json:"license_level,omitempty"`
	LicenseEnds    *time.Time `json:"license_ends,omitempty"`
}

// KeysHandler handles activation and license key API requests
type KeysHandler struct {
	service *license.Service
}

// NewKeysHandler creates a new keys handler instance
func NewKeysHandler(service *license.Service) *KeysHandler {
	return &KeysHandler{service: service}
}

// Activate handles POST /api/keys/activate
func (h *KeysHandler) Activate(c *gin.Context) {
	var req ActivateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_key",
			Message: "An activation key is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	result, token, err := h.service.Activate(ctx, req.Key, c.ClientIP())
	if err != nil {
		if errors.Is(err, license.ErrKeyRejected) {
			message := "Activation key was rejected"
			if result != nil && result.Message != "" {
				message = result.Message
			}
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "key_rejected",
				Message: message,
			})
			return
		}

		if errors.Is(err, license.ErrValidatorUnreachable) {
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error:   "validator_unreachable",
				Message: "The key validation service could not be reached",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Msg("Failed to validate activation key")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "activation_failed",
			Message: "Failed to validate activation key",
		})
		return
	}

	c.JSON(http.StatusOK, ActivateResponse{
		Valid:     true,
		KeyID:     result.KeyID,
		ExpiresAt: result.ExpiresAt,
		Token:     token,
	})
}

// ValidateLicense handles POST /api/keys/license
func (h *KeysHandler) ValidateLicense(c *gin.Context) {
	var req ValidateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_key",
			Message: "A license key is required",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	result, err := h.service.ValidateLicense(ctx, req.LicenseKey)
	if err != nil {
		if errors.Is(err, license.ErrKeyRejected) {
			message := "License key was rejected"
			if result != nil && result.Message != "" {
				message = result.Message
			}
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "key_rejected",
				Message: message,
			})
			return
		}

		if errors.Is(err, license.ErrValidatorUnreachable) {
			c.JSON(http.StatusBadGateway, ErrorResponse{
				Error:   "validator_unreachable",
				Message: "The key validation service could not be reached",
			})
			return
		}

		logger.Log.Error().
			Err(err).
			Msg("Failed to validate license key")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "validation_failed",
			Message: "Failed to validate license key",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Status handles GET /api/keys/status
func (h *KeysHandler) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	machineID, err := h.service.MachineID(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to load machine identity")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to load entitlement status",
		})
		return
	}

	activation, lic, err := h.service.Status(ctx)
	if err != nil {
		logger.Log.Error().
			Err(err).
			Msg("Failed to load entitlement status")

		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "query_failed",
			Message: "Failed to load entitlement status",
		})
		return
	}

	resp := EntitlementStatusResponse{MachineID: machineID}
	if activation != nil {
		resp.Activated = true
		resp.ActivationEnds = &activation.ExpiresAt
	}
	if lic != nil {
		resp.Licensed = true
		resp.LicenseLevel = lic.Level
		resp.LicenseEnds = &lic.ExpiresAt
	}

	c.JSON(http.StatusOK, resp)
}

// SetupKeysRoutes registers activation and license routes
func SetupKeysRoutes(apiGroup *gin.RouterGroup, service *license.Service) {
	handler := NewKeysHandler(service)

	apiGroup.POST("/keys/activate", handler.Activate)
	apiGroup.POST("/keys/license", handler.ValidateLicense)
	apiGroup.GET("/keys/status", handler.Status)
}
