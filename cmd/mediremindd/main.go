package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"mediremind-backend/config"
	"mediremind-backend/internal/api"
	"mediremind-backend/internal/auth"
	"mediremind-backend/internal/db"
	"mediremind-backend/internal/notification"
	"mediremind-backend/internal/poller"
	"mediremind-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "mediremind ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.JWTSecret == "" {
		logger.Fatalf("auth.jwt_secret must be configured")
	}

	// Missing VAPID keys disable push delivery rather than failing startup.
	var webpushOptions *webpush.Options
	if cfg.Push.Configured() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		logger.Println("push notifications: ENABLED")
	} else {
		logger.Println("push notifications: DISABLED (no VAPID keys configured)")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	tokens := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Delivery channels and the background poller
	pusher := notification.NewPusher(webpushOptions)
	emailSender := notification.NewEmailSender(cfg.SMTP)
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, pusher, emailSender)

	reminderPoller := poller.New(cfg, appStore, pool)
	go reminderPoller.Run(ctx)

	// Initialize router
	router := api.NewRouter(ctx, appStore, webpushOptions, tokens, cfg)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Stop the poller and close open streams before draining the server.
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
