// Package main provides the Crankshaft SaaS API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/kamilpajak/crankshaft/internal/api"
	"github.com/kamilpajak/crankshaft/internal/auth"
	"github.com/kamilpajak/crankshaft/internal/billing"
	"github.com/kamilpajak/crankshaft/internal/cache"
	"github.com/kamilpajak/crankshaft/internal/database"
	"github.com/kamilpajak/crankshaft/internal/embedding"
	"github.com/kamilpajak/crankshaft/internal/engine"
	"github.com/kamilpajak/crankshaft/internal/labortime"
	"github.com/kamilpajak/crankshaft/internal/llm"
	"github.com/kamilpajak/crankshaft/internal/registry"
	"github.com/kamilpajak/crankshaft/pkg/models"
)

func main() {
	var (
		port        = flag.String("port", getEnv("PORT", "8080"), "Server port")
		migrateOnly = flag.Bool("migrate", false, "Run migrations and exit")
	)
	flag.Parse()

	// Required environment variables
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.Migrate(dbURL); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations complete")

	if *migrateOnly {
		return
	}

	// Connect to database
	ctx := context.Background()
	db, err := database.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize auth verifier
	authDomain := os.Getenv("AUTH_DOMAIN")
	authAudience := os.Getenv("AUTH_AUDIENCE")
	if authDomain == "" {
		log.Fatal("AUTH_DOMAIN is required (e.g., https://yourapp.kinde.com)")
	}

	authVerifier, err := auth.NewVerifier(auth.Config{
		Domain:   authDomain,
		Audience: authAudience,
	})
	if err != nil {
		log.Fatalf("Failed to create auth verifier: %v", err)
	}

	// Initialize billing client
	stripeSecretKey := os.Getenv("STRIPE_SECRET_KEY")
	stripeWebhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if stripeSecretKey == "" {
		log.Fatal("STRIPE_SECRET_KEY is required")
	}
	billingClient := billing.NewClient(billing.Config{
		SecretKey:     stripeSecretKey,
		WebhookSecret: stripeWebhookSecret,
		PriceIDs: billing.PriceIDs{
			Team:       os.Getenv("STRIPE_PRICE_TEAM"),
			Enterprise: os.Getenv("STRIPE_PRICE_ENTERPRISE"),
		},
	})

	// Initialize diagnosis engine
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	if anthropicKey == "" {
		log.Fatal("ANTHROPIC_API_KEY is required")
	}
	synth := llm.NewAnthropicClient(anthropicKey, os.Getenv("ANTHROPIC_MODEL"))

	var embedder embedding.Client
	if openaiKey := os.Getenv("OPENAI_API_KEY"); openaiKey != "" {
		embedder = embedding.NewOpenAIClient(openaiKey, os.Getenv("OPENAI_EMBEDDING_MODEL"))
	} else {
		log.Println("OPENAI_API_KEY not set; retrieval degrades to exact fault-code lookup")
	}

	eng := engine.New(engine.Config{
		Cases:     db,
		Embedder:  embedder,
		Synth:     synth,
		Registry:  registryManager(db),
		LaborTime: laborTimeManager(db),
		Runs:      db,
		Outcomes:  db,
	})

	// Create API server
	server := api.NewServer(api.Config{
		DB:            db,
		Engine:        eng,
		AuthVerifier:  authVerifier,
		BillingClient: billingClient,
	})

	// Create HTTP server
	addr := fmt.Sprintf(":%s", *port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped")
}

// registryManager builds the cache-backed NHTSA recall/complaint lookup.
// Cache keys are "make|model|year" as produced by cache.Key.
func registryManager(db *database.DB) *cache.Manager[models.RegistryData] {
	client := registry.NewClient()
	return cache.New(db, cache.SourceRegistry, cache.RegistryTTL, func(ctx context.Context, key string) (models.RegistryData, error) {
		parts := strings.Split(key, "|")
		if len(parts) != 3 {
			return models.RegistryData{}, fmt.Errorf("malformed registry key %q", key)
		}
		year, err := strconv.Atoi(parts[2])
		if err != nil {
			return models.RegistryData{}, fmt.Errorf("malformed registry key %q: %w", key, err)
		}
		return client.Fetch(ctx, parts[0], parts[1], year)
	})
}

// laborTimeManager builds the cache-backed labor-guide lookup. Cache keys
// are "year|make|model|procedure". Without a configured guide URL, or with
// no installed browsers, the manager is nil and the engine keeps stored
// labor figures.
func laborTimeManager(db *database.DB) *cache.Manager[models.LaborEstimate] {
	guideURL := os.Getenv("LABOR_GUIDE_URL")
	if guideURL == "" {
		log.Println("LABOR_GUIDE_URL not set; labor estimates come from stored cases")
		return nil
	}
	if !labortime.IsAvailable() {
		log.Println("playwright browsers not installed; labor estimates come from stored cases")
		return nil
	}
	client := labortime.NewBrowserClient(guideURL)
	return cache.New(db, cache.SourceLaborTime, cache.LaborTimeTTL, func(ctx context.Context, key string) (models.LaborEstimate, error) {
		parts := strings.SplitN(key, "|", 4)
		if len(parts) != 4 {
			return models.LaborEstimate{}, fmt.Errorf("malformed labor-time key %q", key)
		}
		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return models.LaborEstimate{}, fmt.Errorf("malformed labor-time key %q: %w", key, err)
		}
		return client.Fetch(ctx, year, parts[1], parts[2], parts[3])
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
