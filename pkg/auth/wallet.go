package auth

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"aetheria_skylands/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	noncePrefix     = "wallet_nonce:"
	defaultNonceTTL = 5 * time.Minute
	defaultTokenTTL = 24 * time.Hour

	// WalletContextKey is where the middleware stores the authenticated
	// wallet address.
	WalletContextKey = "wallet_address"
)

var (
	ErrNonceNotFound    = errors.New("nonce not found or expired")
	ErrInvalidSignature = errors.New("invalid signature")
)

type Config struct {
	JWTSecret string `yaml:"jwtSecret"`
	TokenTTL  time.Duration
	NonceTTL  time.Duration
}

// WalletAuth proves wallet ownership: the server issues a single-use nonce,
// the wallet signs it, and a successful verification yields a JWT bound to
// the wallet address. Every state-mutating route runs behind the resulting
// middleware so knowing an address alone is not enough to claim an account.
type WalletAuth struct {
	secret   []byte
	tokenTTL time.Duration
	nonceTTL time.Duration
	redis    *redis.Client
}

func NewWalletAuth(cfg Config, redisClient *redis.Client) *WalletAuth {
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = defaultTokenTTL
	}
	if cfg.NonceTTL == 0 {
		cfg.NonceTTL = defaultNonceTTL
	}

	return &WalletAuth{
		secret:   []byte(cfg.JWTSecret),
		tokenTTL: cfg.TokenTTL,
		nonceTTL: cfg.NonceTTL,
		redis:    redisClient,
	}
}

// IssueNonce creates a fresh single-use nonce for the wallet. Re-issuing
// replaces any previous nonce.
func (w *WalletAuth) IssueNonce(ctx context.Context, walletAddress string) (string, error) {
	nonce := uuid.NewString()
	key := noncePrefix + strings.ToLower(walletAddress)

	if err := w.redis.Set(ctx, key, nonce, w.nonceTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}
	return nonce, nil
}

// Login consumes the wallet's nonce and, when the ed25519 signature over it
// checks out, returns a session token. The nonce is deleted on retrieval so
// a captured signature cannot be replayed.
func (w *WalletAuth) Login(ctx context.Context, walletAddress, publicKeyB64, signatureB64 string) (string, error) {
	key := noncePrefix + strings.ToLower(walletAddress)

	nonce, err := w.redis.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNonceNotFound
		}
		return "", fmt.Errorf("failed to load nonce: %w", err)
	}

	publicKey, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil || len(publicKey) != ed25519.PublicKeySize {
		return "", ErrInvalidSignature
	}
	signature, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return "", ErrInvalidSignature
	}

	if !ed25519.Verify(ed25519.PublicKey(publicKey), []byte(nonce), signature) {
		return "", ErrInvalidSignature
	}

	return w.issueToken(walletAddress)
}

func (w *WalletAuth) issueToken(walletAddress string) (string, error) {
	claims := jwt.MapClaims{
		"sub": strings.ToLower(walletAddress),
		"exp": time.Now().Add(w.tokenTTL).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(w.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (w *WalletAuth) parseToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return w.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid token claims")
	}
	wallet, _ := claims["sub"].(string)
	if wallet == "" {
		return "", fmt.Errorf("token has no wallet subject")
	}
	return wallet, nil
}

// WalletAuthMiddleware rejects requests without a valid session token and
// stores the authenticated wallet address on the gin context.
func (w *WalletAuth) WalletAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Info("missing authorization header")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Info("invalid authorization header format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}

		wallet, err := w.parseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			log.Info("invalid session token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid session token"})
			return
		}

		c.Set(WalletContextKey, wallet)
		c.Next()
	}
}

// AuthedWallet returns the wallet address set by the middleware.
func AuthedWallet(c *gin.Context) (string, bool) {
	wallet, ok := c.Get(WalletContextKey)
	if !ok {
		return "", false
	}
	s, ok := wallet.(string)
	return s, ok
}
