package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/alaalsalam/hisabi-backend/internal/core/ports/services"
	"github.com/alaalsalam/hisabi-backend/internal/dto"
	"github.com/alaalsalam/hisabi-backend/internal/middleware"
)

// authHandler handles device registration and token issuance.
type authHandler struct {
	authService portssvc.AuthSvcFacade
}

// newAuthHandler creates a new authHandler.
func newAuthHandler(as portssvc.AuthSvcFacade) *authHandler {
	return &authHandler{authService: as}
}

// registerAuthRoutes registers the public device authentication routes.
func registerAuthRoutes(r *gin.Engine, authService portssvc.AuthSvcFacade) {
	h := newAuthHandler(authService)

	auth := r.Group("/auth")
	{
		auth.POST("/devices", h.registerDevice)
		auth.POST("/login", h.login)
	}
}

// registerProtectedAuthRoutes registers auth routes that require a valid token.
func registerProtectedAuthRoutes(rg *gin.RouterGroup, authService portssvc.AuthSvcFacade) {
	h := newAuthHandler(authService)
	rg.DELETE("/devices/:device_id", h.revokeDevice)
}

// registerDevice godoc
// @Summary Register a device
// @Description Registers a device for a user. Only the bcrypt hash of the secret is stored.
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   device body dto.RegisterDeviceRequest true "Device details"
// @Success 201 {object} map[string]string
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Device already registered"
// @Router /auth/devices [post]
func (h *authHandler) registerDevice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterDevice", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	device, err := h.authService.RegisterDevice(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Failed to register device", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	logger.Info("Device registered", slog.String("device_id", device.DeviceID))
	c.JSON(http.StatusCreated, gin.H{"device_id": device.DeviceID, "status": string(device.Status)})
}

// login godoc
// @Summary Exchange device credentials for a bearer token
// @Description Validates the device secret and returns a signed JWT.
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   credentials body dto.DeviceLoginRequest true "Device credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 403 {object} map[string]string "Device revoked"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.DeviceLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Login", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	token, err := h.authService.IssueToken(c.Request.Context(), req)
	if err != nil {
		logger.Warn("Login failed", slog.String("device_id", req.DeviceID), slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}

// revokeDevice godoc
// @Summary Revoke a device
// @Description Revokes one of the caller's devices; its tokens stop working immediately.
// @Tags auth
// @Produce  json
// @Param   device_id path string true "Device ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Device belongs to another user"
// @Failure 404 {object} map[string]string "Device not found"
// @Security BearerAuth
// @Router /auth/devices/{device_id} [delete]
func (h *authHandler) revokeDevice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	deviceID := c.Param("device_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.authService.RevokeDevice(c.Request.Context(), userID, deviceID); err != nil {
		logger.Warn("Failed to revoke device", slog.String("device_id", deviceID), slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
