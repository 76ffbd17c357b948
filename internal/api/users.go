package api

import (
	"errors"
	"net/http"
	"strings"

	"aetheria_skylands/internal/middleware"
	"aetheria_skylands/internal/model"
	"aetheria_skylands/internal/service"
	"aetheria_skylands/pkg/auth"
	"aetheria_skylands/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type userRoutes struct {
	us service.UserServiceI
	a  *auth.WalletAuth
}

func NewUserRoutes(handler *gin.RouterGroup, us service.UserServiceI, a *auth.WalletAuth) {
	r := &userRoutes{us: us, a: a}
	h := handler.Group("/users")
	{
		h.GET("/leaderboard", r.GetLeaderboard)
		h.GET("/:wallet", r.GetAccount)

		protected := h.Group("/")
		protected.Use(a.WalletAuthMiddleware())
		{
			protected.POST("/", r.RegisterAccount)
			protected.GET("/:wallet/referrals", middleware.OwnWalletParam(), r.GetAccountReferrals)
		}
	}
}

type RegisterAccountRequest struct {
	Username   string  `json:"username" binding:"required"`
	ReferredBy *string `json:"referredBy"`
}

func (r *userRoutes) RegisterAccount(c *gin.Context) {
	log := logger.Logger()

	var req RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	wallet, ok := auth.AuthedWallet(c)
	if !ok {
		log.Error("wallet address not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	account, err := r.us.RegisterAccount(c.Request.Context(), wallet, req.Username, req.ReferredBy)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountExists):
			c.JSON(http.StatusConflict, gin.H{"error": "wallet or username already registered"})
		case errors.Is(err, service.ErrUnknownReferralCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown referral code"})
		case errors.Is(err, service.ErrSelfReferral):
			c.JSON(http.StatusBadRequest, gin.H{"error": "self-referral is not allowed"})
		default:
			log.Error("failed to register account", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register account"})
		}
		return
	}

	c.JSON(http.StatusCreated, accountJSON(account))
}

func (r *userRoutes) GetAccount(c *gin.Context) {
	log := logger.Logger()

	wallet := strings.ToLower(c.Param("wallet"))
	account, err := r.us.GetAccount(c.Request.Context(), wallet)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no account associated with the provided wallet"})
			return
		}
		log.Error("failed to get account", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get account"})
		return
	}

	c.JSON(http.StatusOK, accountJSON(account))
}

func (r *userRoutes) GetLeaderboard(c *gin.Context) {
	log := logger.Logger()

	entries, err := r.us.GetLeaderboard(c.Request.Context())
	if err != nil {
		log.Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	response := make([]gin.H, len(entries))
	for i, entry := range entries {
		response[i] = gin.H{
			"username":     entry.Username,
			"points":       entry.Points,
			"invite_count": entry.InviteCount,
		}
	}

	c.JSON(http.StatusOK, response)
}

func (r *userRoutes) GetAccountReferrals(c *gin.Context) {
	log := logger.Logger()

	wallet := strings.ToLower(c.Param("wallet"))
	refs, err := r.us.GetAccountReferrals(c.Request.Context(), wallet)
	if err != nil {
		if errors.Is(err, service.ErrAccountNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
			return
		}
		log.Error("failed to get account referrals", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get account referrals"})
		return
	}

	response := make([]gin.H, len(refs))
	for i, ref := range refs {
		response[i] = gin.H{
			"username":       ref.Username,
			"points":         ref.Points,
			"has_minted_nft": ref.HasMintedNFT,
			"created_at":     ref.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, response)
}

func accountJSON(account *model.Account) gin.H {
	return gin.H{
		"walletAddress":      account.WalletAddress,
		"username":           account.Username,
		"referralCode":       account.ReferralCode,
		"referredBy":         account.ReferredBy,
		"inviteCount":        account.InviteCount,
		"points":             account.Points,
		"hasPaidEarlyAccess": account.HasPaidEarlyAccess,
		"socialsFollowed": gin.H{
			"twitter":  account.TwitterFollowed,
			"telegram": account.TelegramFollowed,
		},
		"hasMintedNFT":      account.HasMintedNFT,
		"nftReferralsCount": account.NFTReferralsCount,
		"isVip":             account.IsVip,
		"createdAt":         account.CreatedAt,
	}
}

// requireOwnWallet rejects body-addressed mutations targeting a wallet
// other than the one the session token was issued for.
func requireOwnWallet(c *gin.Context, walletAddress string) bool {
	authed, ok := auth.AuthedWallet(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}
	if strings.ToLower(walletAddress) != authed {
		c.JSON(http.StatusForbidden, gin.H{"error": "wallet does not match session"})
		return false
	}
	return true
}
