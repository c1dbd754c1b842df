package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/asalkic/zgrada-server/internal/api"
	"github.com/asalkic/zgrada-server/internal/config"
	"github.com/asalkic/zgrada-server/internal/logger"
	"github.com/asalkic/zgrada-server/internal/repository"
	"github.com/asalkic/zgrada-server/internal/service"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Set up structured logging
	logg, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer logg.Sync()

	// Set up database connection and apply migrations
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		logg.Fatal("Failed to set up database", zap.Error(err))
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service
	svc := service.NewDefaultService(repo, logg, cfg.Auth.JWTSecret, cfg.Auth.SetupKey, cfg.Auth.TokenTTL)

	// Create API handler
	handler := api.NewHandler(svc, []byte(cfg.Auth.JWTSecret))

	// Set up Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestIDMiddleware(), api.RequestLogger(logg))

	// Set up routes
	handler.SetupRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	logg.Info("Starting server", zap.String("addr", serverAddr))
	if err := http.ListenAndServe(serverAddr, router); err != nil {
		logg.Fatal("Failed to start server", zap.Error(err))
	}
}
