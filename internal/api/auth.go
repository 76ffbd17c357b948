package api

import (
	"errors"
	"net/http"

	"aetheria_skylands/internal/service"
	"aetheria_skylands/pkg/auth"
	"aetheria_skylands/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

type authRoutes struct {
	ps service.PaymentServiceI
	a  *auth.WalletAuth
}

func NewAuthRoutes(handler *gin.RouterGroup, ps service.PaymentServiceI, a *auth.WalletAuth) {
	r := &authRoutes{ps: ps, a: a}
	h := handler.Group("/auth")
	{
		h.POST("/nonce", r.IssueNonce)
		h.POST("/login", r.Login)

		protected := h.Group("/")
		protected.Use(a.WalletAuthMiddleware())
		{
			protected.POST("/mint", r.UpdateMintStatus)
		}
	}
}

type NonceRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}

func (r *authRoutes) IssueNonce(c *gin.Context) {
	log := logger.Logger()

	var req NonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	nonce, err := r.a.IssueNonce(c.Request.Context(), req.WalletAddress)
	if err != nil {
		log.Error("failed to issue nonce", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue nonce"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

type LoginRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	PublicKey     string `json:"publicKey" binding:"required"`
	Signature     string `json:"signature" binding:"required"`
}

func (r *authRoutes) Login(c *gin.Context) {
	log := logger.Logger()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	token, err := r.a.Login(c.Request.Context(), req.WalletAddress, req.PublicKey, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrNonceNotFound):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "nonce not found or expired"})
		case errors.Is(err, auth.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		default:
			log.Error("failed to log in", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

type MintStatusRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	UpdateField   string `json:"updateField" binding:"required"`
}

// UpdateMintStatus is the status-advance endpoint polled by the client
// after a wallet transaction is submitted. Only the paid-early-access flag
// can be advanced through it; the flip itself is delegated to the payment
// reconciler.
func (r *authRoutes) UpdateMintStatus(c *gin.Context) {
	log := logger.Logger()

	var req MintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.UpdateField != "hasPaidEarlyAccess" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported update field"})
		return
	}

	if !requireOwnWallet(c, req.WalletAddress) {
		return
	}

	account, _, err := r.ps.ConfirmEarlyAccessPayment(c.Request.Context(), req.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		case errors.Is(err, service.ErrPaymentPending):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Payment pending..."})
		default:
			log.Error("failed to confirm payment", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to confirm payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    accountJSON(account),
	})
}
