package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/octostats/octostats/internal/github"
	"github.com/octostats/octostats/internal/handlers"
	"github.com/octostats/octostats/internal/middleware"
	"github.com/octostats/octostats/internal/repositories"
	"github.com/octostats/octostats/internal/services"
	"github.com/octostats/octostats/pkg/config"
	"github.com/octostats/octostats/pkg/database"
	"github.com/octostats/octostats/pkg/logger"
	"github.com/octostats/octostats/pkg/token"
)

func main() {
	if err := config.Load(); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init()
	gin.SetMode(config.AppConfig.Server.Mode)

	if err := database.Init(); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Initialize dependencies
	githubClient := github.NewClient(
		config.AppConfig.GitHub.RequestsPerMinute,
		github.WithRetryPolicy(
			config.AppConfig.GitHub.SearchMaxRetries,
			time.Duration(config.AppConfig.GitHub.SearchMaxWaitSeconds)*time.Second,
		),
	)

	userRepo := repositories.NewUserRepository(database.DB)
	tokens := token.NewProvider(
		config.AppConfig.Auth.JWTSecret,
		time.Duration(config.AppConfig.Auth.TokenTTLSeconds)*time.Second,
	)

	authService := services.NewAuthService(githubClient, userRepo, tokens, config.AppConfig.Auth.EncryptionKey)
	statsService := services.NewStatsService(githubClient)
	searchService := services.NewSearchService(githubClient)
	profileService := services.NewProfileService(githubClient)

	router := gin.Default()
	setupRoutes(router, authService, statsService, searchService, profileService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Infof("Server starting on :%s", config.AppConfig.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Forced shutdown: %v", err)
	}
	logger.Info("Server stopped")
}

func setupRoutes(
	router *gin.Engine,
	authService *services.AuthService,
	statsService *services.StatsService,
	searchService *services.SearchService,
	profileService *services.ProfileService,
) {
	authHandler := handlers.NewAuthHandler(authService)
	statsHandler := handlers.NewStatsHandler(statsService)
	usersHandler := handlers.NewUsersHandler(profileService, searchService, statsService)

	router.GET("/health", handlers.Health)
	router.POST("/authenticate", authHandler.Authenticate)

	protected := router.Group("/")
	protected.Use(middleware.AuthRequired(authService))
	{
		protected.GET("/user/repositories", statsHandler.Repositories)
		protected.GET("/user/stars", statsHandler.Stars)
		protected.GET("/user/commits", statsHandler.Commits)
		protected.GET("/user/pulls", statsHandler.Pulls)
		protected.GET("/user/languages", statsHandler.Languages)
		protected.GET("/user/stats/export", statsHandler.Export)
		protected.PUT("/user/following/:username", usersHandler.Follow)
		protected.DELETE("/user/following/:username", usersHandler.Unfollow)
		protected.GET("/users/search", usersHandler.Search)
		protected.GET("/users/:username", usersHandler.Get)
		protected.GET("/users/:username/commits", usersHandler.Commits)
	}
}
