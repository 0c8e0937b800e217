package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/jchen2215/promptforge/api"
	"github.com/jchen2215/promptforge/auth"
	"github.com/jchen2215/promptforge/config"
	"github.com/jchen2215/promptforge/conversation"
	"github.com/jchen2215/promptforge/index"
	"github.com/jchen2215/promptforge/llm"
	"github.com/jchen2215/promptforge/policy"
	"github.com/jchen2215/promptforge/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting prompt-forge backend...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Store backend: %s", cfg.StoreBackend)
	log.Printf("Model: %s", cfg.ModelName)

	ctx := context.Background()

	// Initialize store
	var sessionStore store.SessionStore
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		sessionStore, err = store.NewSQLiteStore(cfg.DatabaseURL)
	case config.BackendFile:
		sessionStore, err = store.NewFileStore(cfg.SessionsDir)
	default:
		log.Fatalf("Unknown store backend: %s", cfg.StoreBackend)
	}
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer sessionStore.Close()

	// Initialize metadata index
	idx, err := index.New(cfg.IndexPath)
	if err != nil {
		log.Fatalf("Failed to initialize session index: %v", err)
	}

	// Initialize Gemini client
	llmClient, err := llm.NewClient(ctx, cfg.GeminiAPIKey, cfg.ModelName, cfg.LLMTimeout)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	// Initialize policy engine
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize services
	authSvc := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry)
	svc := conversation.New(sessionStore, llmClient, idx)
	h := api.NewHandler(svc, authSvc, policyEngine)

	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	h.RegisterRoutes(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Stopped")
}
