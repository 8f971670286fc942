package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/alaalsalam/hisabi-backend/internal/core/ports/services"
	"github.com/alaalsalam/hisabi-backend/internal/dto"
	"github.com/alaalsalam/hisabi-backend/internal/middleware"
)

// syncHandler handles the push/pull synchronization endpoints.
type syncHandler struct {
	syncService portssvc.SyncSvcFacade
}

// newSyncHandler creates a new syncHandler.
func newSyncHandler(ss portssvc.SyncSvcFacade) *syncHandler {
	return &syncHandler{syncService: ss}
}

// registerSyncRoutes registers the sync endpoints.
func registerSyncRoutes(rg *gin.RouterGroup, syncService portssvc.SyncSvcFacade) {
	h := newSyncHandler(syncService)

	sync := rg.Group("/sync")
	{
		sync.POST("/push", h.push)
		sync.POST("/pull", h.pull)
	}
}

// push godoc
// @Summary Push a batch of mutations
// @Description Applies a batch of client mutations in order. Item outcomes are independent; the call succeeds even when individual items fail. Retried op_ids return their original outcome.
// @Tags sync
// @Accept  json
// @Produce  json
// @Param   batch body dto.SyncPushRequest true "Push batch"
// @Success 200 {object} dto.SyncPushResponse
// @Failure 400 {object} map[string]string "Invalid input or batch too large"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not a member or role too low"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Security BearerAuth
// @Router /sync/push [post]
func (h *syncHandler) push(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SyncPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Push", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// The token's device claim is authoritative over the request body.
	if deviceID, ok := middleware.GetDeviceIDFromContext(c); ok {
		req.DeviceID = deviceID
	}

	resp, err := h.syncService.Push(c.Request.Context(), userID, req)
	if err != nil {
		logger.Warn("Push rejected", slog.String("wallet_id", req.WalletID), slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// pull godoc
// @Summary Pull incremental changes
// @Description Returns changes (tombstones included) since the request cursor, grouped by entity kind, plus the cursor for the next pull.
// @Tags sync
// @Accept  json
// @Produce  json
// @Param   request body dto.SyncPullRequest true "Pull request"
// @Success 200 {object} dto.SyncPullResponse
// @Failure 400 {object} map[string]string "Invalid cursor"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Security BearerAuth
// @Router /sync/pull [post]
func (h *syncHandler) pull(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.SyncPullRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Pull", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if deviceID, ok := middleware.GetDeviceIDFromContext(c); ok {
		req.DeviceID = deviceID
	}

	resp, err := h.syncService.Pull(c.Request.Context(), userID, req)
	if err != nil {
		logger.Warn("Pull rejected", slog.String("wallet_id", req.WalletID), slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
