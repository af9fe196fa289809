package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"utitriage/internal/config"
	"utitriage/internal/container"
	"utitriage/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Create dependency injection container
	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Close()

	// Load the model bundle once; a partial bundle never serves predictions
	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Error loading models: %v", err)
	}

	// Initialize web server
	server, err := ui.NewServer(appContainer.Predictor, ui.Options{
		GinMode:                  appConfig.Server.GinMode,
		MaxConcurrentAssessments: appConfig.Server.MaxConcurrentAssessments,
		RequestTimeout:           appConfig.Server.RequestTimeout,
		Logger:                   appContainer.Logger,
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Run(ctx, ":"+appConfig.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
