package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alaalsalam/hisabi-backend/internal/core/domain"
	portssvc "github.com/alaalsalam/hisabi-backend/internal/core/ports/services"
	"github.com/alaalsalam/hisabi-backend/internal/dto"
	"github.com/alaalsalam/hisabi-backend/internal/middleware"
)

// walletHandler handles HTTP requests related to wallets and memberships.
type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

// newWalletHandler creates a new walletHandler.
func newWalletHandler(ws portssvc.WalletSvcFacade) *walletHandler {
	return &walletHandler{walletService: ws}
}

// registerWalletRoutes registers routes for wallets and their members.
func registerWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := newWalletHandler(walletService)

	wallets := rg.Group("/wallets")
	{
		wallets.POST("", h.createWallet)
		wallets.GET("", h.listUserWallets)
	}

	walletSpecific := rg.Group("/wallets/:wallet_id")
	{
		walletSpecific.GET("", h.getWallet)

		members := walletSpecific.Group("/members")
		{
			members.GET("", h.listMembers)
			members.POST("", h.addMember)
			members.PUT("/:user_id", h.changeMemberRole)
			members.DELETE("/:user_id", h.removeMember)
		}
	}
}

// createWallet godoc
// @Summary Create a new wallet
// @Description Creates a wallet with the caller as its sole owner.
// @Tags wallets
// @Accept  json
// @Produce  json
// @Param   wallet body dto.CreateWalletRequest true "Wallet details"
// @Success 201 {object} dto.WalletResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Wallet already exists"
// @Security BearerAuth
// @Router /wallets [post]
func (h *walletHandler) createWallet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateWallet", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wallet, err := h.walletService.CreateWallet(c.Request.Context(), req, userID)
	if err != nil {
		logger.Error("Failed to create wallet", slog.String("error", err.Error()))
		respondServiceError(c, err)
		return
	}

	logger.Info("Wallet created", slog.String("wallet_id", wallet.WalletID))
	c.JSON(http.StatusCreated, dto.ToWalletResponse(wallet))
}

// listUserWallets godoc
// @Summary List wallets for current user
// @Description Retrieves the wallets the authenticated user is an active member of.
// @Tags wallets
// @Produce  json
// @Success 200 {object} dto.ListWalletsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /wallets [get]
func (h *walletHandler) listUserWallets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wallets, err := h.walletService.ListUserWallets(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.ListWalletsResponse{Wallets: make([]dto.WalletResponse, 0, len(wallets))}
	for i := range wallets {
		resp.Wallets = append(resp.Wallets, dto.ToWalletResponse(&wallets[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// getWallet godoc
// @Summary Get a wallet
// @Description Retrieves one wallet the caller is a member of.
// @Tags wallets
// @Produce  json
// @Param   wallet_id path string true "Wallet ID"
// @Success 200 {object} dto.WalletResponse
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Security BearerAuth
// @Router /wallets/{wallet_id} [get]
func (h *walletHandler) getWallet(c *gin.Context) {
	walletID := c.Param("wallet_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	wallet, err := h.walletService.FindWalletByID(c.Request.Context(), walletID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletResponse(wallet))
}

// listMembers godoc
// @Summary List wallet members
// @Description Retrieves the membership list of a wallet, removed memberships included.
// @Tags wallets
// @Produce  json
// @Param   wallet_id path string true "Wallet ID"
// @Success 200 {array} dto.MemberResponse
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Security BearerAuth
// @Router /wallets/{wallet_id}/members [get]
func (h *walletHandler) listMembers(c *gin.Context) {
	walletID := c.Param("wallet_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	members, err := h.walletService.ListMembers(c.Request.Context(), walletID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := make([]dto.MemberResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, dto.ToMemberResponse(m))
	}
	c.JSON(http.StatusOK, resp)
}

// addMember godoc
// @Summary Add a wallet member
// @Description Adds a user to a wallet with a role (requires admin).
// @Tags wallets
// @Accept  json
// @Produce  json
// @Param   wallet_id path string true "Wallet ID"
// @Param   member body dto.AddMemberRequest true "User ID and role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Caller is not admin"
// @Failure 404 {object} map[string]string "Wallet not found"
// @Security BearerAuth
// @Router /wallets/{wallet_id}/members [post]
func (h *walletHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("wallet_id")

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddMember", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.walletService.AddMember(c.Request.Context(), walletID, userID, req); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// changeMemberRole godoc
// @Summary Change a member's role
// @Description Changes the role of an existing wallet member (requires admin).
// @Tags wallets
// @Accept  json
// @Produce  json
// @Param   wallet_id path string true "Wallet ID"
// @Param   user_id path string true "Target user ID"
// @Param   role body dto.ChangeMemberRoleRequest true "New role"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Caller is not admin"
// @Failure 404 {object} map[string]string "Membership not found"
// @Security BearerAuth
// @Router /wallets/{wallet_id}/members/{user_id} [put]
func (h *walletHandler) changeMemberRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	walletID := c.Param("wallet_id")
	targetUserID := c.Param("user_id")

	var req dto.ChangeMemberRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ChangeMemberRole", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.walletService.ChangeMemberRole(c.Request.Context(), walletID, userID, targetUserID, domain.WalletRole(req.Role)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// removeMember godoc
// @Summary Remove a wallet member
// @Description Marks a membership as removed (requires admin). The owner cannot be removed.
// @Tags wallets
// @Produce  json
// @Param   wallet_id path string true "Wallet ID"
// @Param   user_id path string true "Target user ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Owner cannot be removed"
// @Failure 403 {object} map[string]string "Caller is not admin"
// @Failure 404 {object} map[string]string "Membership not found"
// @Security BearerAuth
// @Router /wallets/{wallet_id}/members/{user_id} [delete]
func (h *walletHandler) removeMember(c *gin.Context) {
	walletID := c.Param("wallet_id")
	targetUserID := c.Param("user_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.walletService.RemoveMember(c.Request.Context(), walletID, userID, targetUserID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
