package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ahirvonen/chatserver/internal/config"
	"github.com/ahirvonen/chatserver/internal/database"
	"github.com/ahirvonen/chatserver/internal/migrate"
	postgresrepo "github.com/ahirvonen/chatserver/internal/repository/postgres"
	"github.com/ahirvonen/chatserver/internal/service"
	"github.com/ahirvonen/chatserver/internal/transport/http/handlers"
	"github.com/ahirvonen/chatserver/internal/transport/http/middleware"
)

func main() {
	cfg := config.Load()

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Schema
	if err := migrate.Up(ctx, cfg.DSN()); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	// Database
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("connect to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("connected to database")

	db := &postgresrepo.DB{Pool: pool}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(db)
	messageRepo := postgresrepo.NewMessageRepo(db)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	messageService := service.NewMessageService(messageRepo)
	syncService := service.NewSyncService(messageRepo)

	// Registration is admin-gated; seed the bootstrap admin if configured.
	if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail); err != nil {
		logger.Fatal("seed admin", zap.Error(err))
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	userHandler := handlers.NewUserHandler(authService, logger)
	messageHandler := handlers.NewMessageHandler(messageService, logger)
	syncHandler := handlers.NewSyncHandler(syncService, logger)

	// Middleware
	auth := middleware.Auth(authService)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Protected - Users
	mux.Handle("POST /api/v1/users", auth(http.HandlerFunc(userHandler.Register)))
	mux.Handle("GET /api/v1/users/{username}", auth(http.HandlerFunc(userHandler.Profile)))
	mux.Handle("PATCH /api/v1/users/{username}", auth(http.HandlerFunc(userHandler.Update)))
	mux.Handle("PUT /api/v1/users/{username}/password", auth(http.HandlerFunc(userHandler.ChangePassword)))
	mux.Handle("DELETE /api/v1/users/{username}", auth(http.HandlerFunc(userHandler.Delete)))

	// Protected - Channels and messages
	mux.Handle("GET /api/v1/channels", auth(http.HandlerFunc(messageHandler.Channels)))
	mux.Handle("POST /api/v1/channels/{channel}/messages", auth(http.HandlerFunc(messageHandler.Post)))
	mux.Handle("GET /api/v1/channels/{channel}/messages", auth(http.HandlerFunc(syncHandler.Fetch)))
	mux.Handle("PATCH /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Edit)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Delete)))

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    addr,
		Handler: middleware.Logging(logger)(mux),
	}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	logger.Info("starting server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server", zap.Error(err))
	}
}
