package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/psyrax/pokeprices/internal/api"
	"github.com/psyrax/pokeprices/internal/database"
	"github.com/psyrax/pokeprices/internal/services"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./pokeprices.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	settings := services.NewSettingsStore(db)

	// Seed the stored API key from the environment on first run
	if envKey := os.Getenv("JUSTTCG_API_KEY"); envKey != "" {
		stored, err := settings.APIKey()
		if err == nil && stored == "" {
			if err := settings.SaveAPIKey(envKey); err != nil {
				log.Printf("Failed to seed API key from environment: %v", err)
			} else {
				log.Println("Seeded JustTCG API key from environment")
			}
		}
	}

	justTCG := services.NewJustTCGClient()
	exchangeRates := services.NewExchangeRateClient()

	cardRepo := services.NewCardRepository(db, justTCG)
	currencyRepo := services.NewCurrencyRepository(exchangeRates)
	refreshWorker := services.NewRefreshWorker(cardRepo)

	// Cancellable context for graceful shutdown; also bounds background
	// refresh runs started from the API.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := api.SetupRouter(ctx, cardRepo, currencyRepo, settings, refreshWorker)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
