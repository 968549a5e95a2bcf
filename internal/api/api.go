// Package api provides the SaaS API server.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/kamilpajak/crankshaft/internal/auth"
	"github.com/kamilpajak/crankshaft/internal/billing"
	"github.com/kamilpajak/crankshaft/internal/database"
	"github.com/kamilpajak/crankshaft/internal/engine"
	"github.com/kamilpajak/crankshaft/pkg/models"
)

// Diagnoser is the engine surface the API depends on.
type Diagnoser interface {
	Run(ctx context.Context, query models.DiagnosticQuery, shopID *uuid.UUID) (*models.DiagnosisResult, error)
	RecordOutcome(ctx context.Context, input engine.OutcomeInput) (*models.OutcomeRecord, error)
	AccuracyStats(ctx context.Context) (*models.AccuracyStats, error)
}

// Server is the API server.
type Server struct {
	db            *database.DB
	engine        Diagnoser
	authVerifier  *auth.Verifier
	billingClient *billing.Client
	usageChecker  *billing.UsageChecker
	mux           *http.ServeMux
}

// Config holds API server configuration.
type Config struct {
	DB            *database.DB
	Engine        Diagnoser
	AuthVerifier  *auth.Verifier
	BillingClient *billing.Client
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	s := &Server{
		db:            cfg.DB,
		engine:        cfg.Engine,
		authVerifier:  cfg.AuthVerifier,
		billingClient: cfg.BillingClient,
		usageChecker:  billing.NewUsageChecker(cfg.DB),
		mux:           http.NewServeMux(),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	authMiddleware := auth.Middleware(s.authVerifier)

	// Public endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Auth endpoints (protected - user must be authenticated)
	s.mux.HandleFunc("POST /api/auth/sync", s.withAuth(authMiddleware, s.handleAuthSync))

	// Protected endpoints
	s.mux.HandleFunc("GET /api/me", s.withAuth(authMiddleware, s.handleGetMe))
	s.mux.HandleFunc("GET /api/shops", s.withAuth(authMiddleware, s.handleListShops))
	s.mux.HandleFunc("POST /api/shops", s.withAuth(authMiddleware, s.handleCreateShop))
	s.mux.HandleFunc("GET /api/shops/{shopID}", s.withAuth(authMiddleware, s.handleGetShop))
	s.mux.HandleFunc("POST /api/shops/{shopID}/diagnose", s.withAuth(authMiddleware, s.handleDiagnose))
	s.mux.HandleFunc("GET /api/shops/{shopID}/runs/{runID}", s.withAuth(authMiddleware, s.handleGetRun))
	s.mux.HandleFunc("GET /api/shops/{shopID}/usage", s.withAuth(authMiddleware, s.handleGetUsage))
	s.mux.HandleFunc("POST /api/outcomes", s.withAuth(authMiddleware, s.handleRecordOutcome))
	s.mux.HandleFunc("GET /api/stats", s.withAuth(authMiddleware, s.handleGetStats))

	// Billing endpoints
	s.mux.HandleFunc("POST /api/billing/checkout", s.withAuth(authMiddleware, s.handleCreateCheckout))
	s.mux.HandleFunc("POST /api/billing/portal", s.withAuth(authMiddleware, s.handleCreatePortal))
	s.mux.Handle("POST /api/billing/webhook", s.createWebhookHandler())
}

func (s *Server) withAuth(middleware func(http.Handler) http.Handler, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware(http.HandlerFunc(handler)).ServeHTTP(w, r)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
