package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"aetheria_skylands/internal/api"
	"aetheria_skylands/internal/repository"
	"aetheria_skylands/internal/service"
	"aetheria_skylands/internal/ton"
	"aetheria_skylands/pkg/auth"
	"aetheria_skylands/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	repo, err := repository.New(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		cancel()
		zapLogger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	cancel()

	indexerClient := ton.NewClient(cfg.Indexer)
	verifier, err := ton.NewVerifier(indexerClient, cfg.Payment)
	if err != nil {
		zapLogger.Fatal("Failed to initialize payment verifier", zap.Error(err))
	}

	userService := service.NewUserService(repo, cfg.Rewards)
	paymentService := service.NewPaymentService(repo, verifier)
	questService := service.NewQuestService(repo, cfg.Rewards)

	walletAuth := auth.NewWalletAuth(cfg.Auth, redisClient)

	router := gin.New()
	router.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
	}
	config.AllowHeaders = []string{"*"}
	config.AllowCredentials = true
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	a := router.Group("/api")
	api.NewAuthRoutes(a, paymentService, walletAuth)
	api.NewUserRoutes(a, userService, walletAuth)
	api.NewPaymentRoutes(a, paymentService, walletAuth)
	api.NewQuestRoutes(a, questService, walletAuth)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	zapLogger.Info("Starting server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("Failed to start server", zap.Error(err))
	}
}
