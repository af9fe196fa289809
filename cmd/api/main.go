package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"utitriage/internal/api"
	"utitriage/internal/config"
	"utitriage/internal/container"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	defer appContainer.Close()

	// no predictions are served without a complete bundle
	if err := appContainer.Init(ctx); err != nil {
		log.Fatalf("Error loading models: %v", err)
	}

	handler := api.NewHandler(appContainer.Predictor, appContainer.Logger)
	router := api.NewRouter(handler, api.RouterOptions{
		MaxConcurrent:  appConfig.Server.MaxConcurrentAssessments,
		RequestTimeout: appConfig.Server.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Server.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Starting API server on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
