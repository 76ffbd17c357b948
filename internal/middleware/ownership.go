package middleware

import (
	"net/http"
	"strings"

	"aetheria_skylands/pkg/auth"
	"aetheria_skylands/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
)

// OwnWalletParam only lets a session act on its own account: the :wallet
// route parameter must match the wallet the token was issued for.
func OwnWalletParam() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authed, ok := auth.AuthedWallet(c)
		if !ok {
			log.Error("wallet address not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		requested := strings.ToLower(c.Param("wallet"))
		if requested != "" && requested != authed {
			log.Info("wallet ownership mismatch",
				zap.String("authed", authed),
				zap.String("requested", requested))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "wallet does not match session"})
			return
		}

		c.Next()
	}
}
