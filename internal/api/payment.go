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

type paymentRoutes struct {
	ps service.PaymentServiceI
	a  *auth.WalletAuth
}

func NewPaymentRoutes(handler *gin.RouterGroup, ps service.PaymentServiceI, a *auth.WalletAuth) {
	r := &paymentRoutes{ps: ps, a: a}
	h := handler.Group("/payment")
	h.Use(a.WalletAuthMiddleware())
	{
		h.POST("/verify-mint", r.VerifyMint)
	}
}

type VerifyMintRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}

// VerifyMint reports whether the early access payment has been observed,
// flipping the flag on first sight. 402 means "not yet" and is the signal
// the client poll loop retries on.
func (r *paymentRoutes) VerifyMint(c *gin.Context) {
	log := logger.Logger()

	var req VerifyMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Error("failed to bind request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if !requireOwnWallet(c, req.WalletAddress) {
		return
	}

	account, status, err := r.ps.ConfirmEarlyAccessPayment(c.Request.Context(), req.WalletAddress)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccountNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "account not found"})
		case errors.Is(err, service.ErrPaymentPending):
			c.JSON(http.StatusPaymentRequired, gin.H{"success": false, "error": "payment not verified yet"})
		default:
			log.Error("failed to verify payment", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to verify payment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  string(status),
		"user":    accountJSON(account),
	})
}
