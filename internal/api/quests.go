package api

import (
	"errors"
	"net/http"

	"aetheria_skylands/internal/model"
	"aetheria_skylands/internal/service"
	"aetheria_skylands/pkg/auth"
	"aetheria_skylands/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type questRoutes struct {
	qs service.QuestServiceI
	a  *auth.WalletAuth
}

func NewQuestRoutes(handler *gin.RouterGroup, qs service.QuestServiceI, a *auth.WalletAuth) {
	r := &questRoutes{qs: qs, a: a}
	h := handler.Group("/quests")
	h.Use(a.WalletAuthMiddleware())
	{
		h.POST("/socials", r.CompleteSocialQuest)
		h.POST("/mint", r.MintNFT)
	}
}

type SocialQuestRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	Platform      string `json:"platform" binding:"required"`
}

func (r *questRoutes) CompleteSocialQuest(c *gin.Context) {
	log := logger.Logger()

	var req SocialQuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if !requireOwnWallet(c, req.WalletAddress) {
		return
	}

	account, err := r.qs.CompleteSocialQuest(c.Request.Context(), req.WalletAddress, model.SocialPlatform(req.Platform))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		case errors.Is(err, service.ErrInvalidPlatform):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown social platform"})
		default:
			log.Error("failed to complete social quest", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete social quest"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    accountJSON(account),
	})
}

type MintRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}

func (r *questRoutes) MintNFT(c *gin.Context) {
	log := logger.Logger()

	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if !requireOwnWallet(c, req.WalletAddress) {
		return
	}

	account, mintedNow, err := r.qs.MintNFT(c.Request.Context(), req.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		case errors.Is(err, service.ErrEarlyAccessRequired):
			c.JSON(http.StatusForbidden, gin.H{"error": "early access payment required"})
		case errors.Is(err, service.ErrSocialQuestsIncomplete):
			c.JSON(http.StatusForbidden, gin.H{"error": "social quests not completed"})
		default:
			log.Error("failed to mint", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mint"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"minted_now": mintedNow,
		"user":       accountJSON(account),
	})
}
