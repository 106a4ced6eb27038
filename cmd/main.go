package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/velmir/quizduel-server/config"
	"github.com/velmir/quizduel-server/db"
	"github.com/velmir/quizduel-server/handlers"
	"github.com/velmir/quizduel-server/realtime"
	"github.com/velmir/quizduel-server/repositories"
	api "github.com/velmir/quizduel-server/routes"
	"github.com/velmir/quizduel-server/services"
	"github.com/velmir/quizduel-server/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	questionBank, err := services.LoadQuestionBank(cfg.QuestionsPath)
	if err != nil {
		logger.Error("failed to load question bank", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("question bank loaded", slog.Int("questions", len(questionBank.Questions())))

	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("R2 uploader initialized")

	wsHub := realtime.NewHub()
	go wsHub.Run()
	logger.Info("websocket hub started")

	txManager := repositories.NewTxManager(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	questionSetRepo := repositories.NewPostgresQuestionSetRepository(dbConn)
	assetRepo := repositories.NewPostgresPublicAssetRepository(dbConn)
	logger.Info("repositories initialized")

	assetService := services.NewAssetService(assetRepo, uploader, logger)
	authService := services.NewAuthService(userRepo, []byte(cfg.JWTSecretKey))
	userService := services.NewUserService(userRepo)
	questionSetService := services.NewQuestionSetService(questionSetRepo)
	matchService := services.NewMatchService(txManager, matchRepo, userRepo, questionBank, assetService, wsHub, logger)
	matchmakingService := services.NewMatchmakingService(txManager, matchRepo, userRepo, wsHub, logger)
	logger.Info("services initialized")

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	matchHandler := handlers.NewMatchHandler(matchService, matchmakingService)
	questionSetHandler := handlers.NewQuestionSetHandler(questionSetService)
	assetHandler := handlers.NewAssetHandler(assetService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authHandler,
		userHandler,
		matchHandler,
		questionSetHandler,
		assetHandler,
		webSocketHandler,
		[]byte(cfg.JWTSecretKey),
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
