package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anhbaysgalan1/arena/internal/auth"
	"github.com/anhbaysgalan1/arena/internal/config"
	"github.com/anhbaysgalan1/arena/internal/database"
	"github.com/anhbaysgalan1/arena/internal/funds"
	"github.com/anhbaysgalan1/arena/internal/handlers"
	"github.com/anhbaysgalan1/arena/internal/ledger"
	custommiddleware "github.com/anhbaysgalan1/arena/internal/middleware"
	"github.com/anhbaysgalan1/arena/internal/notify"
	"github.com/anhbaysgalan1/arena/internal/tournaments"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type LedgerServer struct {
	config              *config.Config
	db                  *database.DB
	ledgerService       *ledger.Service
	jwtManager          *auth.JWTManager
	authMiddleware      *auth.AuthMiddleware
	roleMiddleware      *auth.RoleMiddleware
	apiRateLimiter      *custommiddleware.RateLimiter
	operatorRateLimiter *custommiddleware.RateLimiter
	server              *http.Server
}

func NewLedgerServer() (*LedgerServer, error) {
	// Load configuration
	cfg := config.Load()

	// Setup database
	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := db.AutoMigrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Setup collaborator clients
	fundsService := funds.NewService(cfg)
	tournamentClient := tournaments.NewClient(cfg)

	// Setup event dispatcher
	redisClient, err := notify.NewRedisClient(cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	dispatcher := notify.NewDispatcher(redisClient)

	// Setup ledger service
	ledgerService := ledger.NewService(db, fundsService, tournamentClient, tournamentClient, dispatcher, cfg.PayoutTimeout)

	// Setup JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, "arena-ledger")
	authMiddleware := auth.NewAuthMiddleware(jwtManager)
	roleMiddleware := auth.NewRoleMiddleware()

	// Setup rate limiters
	apiRateLimiter := custommiddleware.NewAPIRateLimiter()
	operatorRateLimiter := custommiddleware.NewOperatorRateLimiter()

	return &LedgerServer{
		config:              cfg,
		db:                  db,
		ledgerService:       ledgerService,
		jwtManager:          jwtManager,
		authMiddleware:      authMiddleware,
		roleMiddleware:      roleMiddleware,
		apiRateLimiter:      apiRateLimiter,
		operatorRateLimiter: operatorRateLimiter,
	}, nil
}

func (s *LedgerServer) Start() error {
	// Setup router
	router := s.setupRouter()

	// Create HTTP server
	s.server = &http.Server{
		Addr:    ":" + s.config.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		slog.Info("Starting ledger server", "port", s.config.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	return s.Shutdown()
}

func (s *LedgerServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	// Close database connection
	if err := s.db.Close(); err != nil {
		slog.Error("Failed to close database connection", "error", err)
	}

	// Close rate limiters
	s.apiRateLimiter.Close()
	s.operatorRateLimiter.Close()

	slog.Info("Server shutdown complete")
	return nil
}

func (s *LedgerServer) setupRouter() chi.Router {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(auth.SecurityHeaders)
	r.Use(s.apiRateLimiter.Limit) // Apply global rate limiting

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure properly for production
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		ledgerHandler := handlers.NewLedgerHandler(s.ledgerService)

		// Authenticated wallet and read routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware.RequireAuth)
			r.Mount("/", ledgerHandler.Routes())
		})

		// Operator routes with tighter rate limiting
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware.RequireAuth)
			r.Use(s.roleMiddleware.RequireOperator)
			r.Use(s.operatorRateLimiter.Limit)
			r.Mount("/operator", ledgerHandler.OperatorRoutes())
		})
	})

	return r
}
