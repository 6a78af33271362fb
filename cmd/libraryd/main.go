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

	"library-reservation-backend/config"
	"library-reservation-backend/internal/api"
	"library-reservation-backend/internal/auth"
	"library-reservation-backend/internal/db"
	"library-reservation-backend/internal/reservation"
	"library-reservation-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "library-backend ", log.LstdFlags)

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

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	if err := db.SeedAdmin(gormDB, &cfg.Auth); err != nil {
		logger.Fatalf("failed to seed admin account: %v", err)
	}

	// Create the store and service layers
	appStore := store.NewGormStore(gormDB)
	svc := reservation.NewService(appStore, cfg.Policy, reservation.RealClock{})
	logger.Println("data store initialized")

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	// Initialize router
	router := api.NewRouter(appStore, svc, tokens, cfg)
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

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
