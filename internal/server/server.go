// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer — it connects handlers, middleware, and routes.
// Think of it as the control centre that decides:
// - Which URL patterns map to which handler functions
// - What middleware runs on which routes
// - How the server starts and stops gracefully
//
// WHY SEPARATE FROM main.go?
// Keeping server setup in its own package makes it:
// - Testable (we can create a test server without running main)
// - Reusable (multiple entry points could use the same server config)
// - Clean (main.go stays minimal — just "start the server")
//
// DEPENDENCY INJECTION FLOW:
// main.go loads config → passed to Server
// Server.New() creates: sqlite.DB → auth services → domain services → handlers
//
// This is the "composition root" pattern — all dependencies are wired
// in one place (New/setupRoutes), rather than scattered across the codebase.
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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hiroyoshii/twitter-clone-api/internal/auth"
	"github.com/hiroyoshii/twitter-clone-api/internal/config"
	"github.com/hiroyoshii/twitter-clone-api/internal/handler"
	"github.com/hiroyoshii/twitter-clone-api/internal/middleware"
	"github.com/hiroyoshii/twitter-clone-api/internal/model"
	"github.com/hiroyoshii/twitter-clone-api/internal/monitoring"
	sqliteRepo "github.com/hiroyoshii/twitter-clone-api/internal/repository/sqlite"
	"github.com/hiroyoshii/twitter-clone-api/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database connection. When the server shuts down we
// must close it to flush the WAL and release the file lock; this is
// handled in Start() during graceful shutdown.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server with the full dependency chain assembled:
//
//  1. Open the database (sqlite.New runs migrations)
//  2. Build the auth primitives (session codec, password hasher)
//  3. Build the service layer on the repository interfaces
//  4. Build handlers on the services and wire routes
//
// Each layer only receives what it needs: services get repository
// interfaces (not the concrete sqlite.DB), handlers get services.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo to avoid confusion with
// the sqlite driver package.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close() // Clean up DB if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Router exposes the configured mux so tests can drive the full stack
// through httptest without opening a real listener.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /                              → Welcome message (public)
// GET    /metrics                       → Prometheus metrics (public)
// POST   /auth/register                 → Create account (public)
// POST   /auth/login                    → Authenticate, set session cookie (public)
// POST   /auth/logout                   → Clear session cookie
// GET    /auth/me                       → Own user record
// GET    /tweets                        → Paginated timeline
// POST   /tweets                        → Post a tweet
// GET    /tweets/{id}                   → Tweet detail
// DELETE /tweets/{id}                   → Delete own tweet
// POST   /tweets/{id}/like              → Like (same for /retweet, /bookmark)
// DELETE /tweets/{id}/like              → Unlike (same for /retweet, /bookmark)
// GET    /tweets/{id}/replies           → One level of the reply tree
// POST   /tweets/{id}/replies           → Post a reply
// GET    /replies/{id}                  → Reply detail
// DELETE /replies/{id}                  → Delete own reply (and subtree)
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
// 1. RequestID — assigns unique ID to each request (for tracing)
// 2. RealIP — extracts real client IP from proxy headers
// 3. Recoverer — catches panics and returns 500 instead of crashing
// 4. Logger — logs each request with timing info
// 5. InstrumentHandler — feeds the Prometheus request histogram
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID) // Adds X-Request-ID header
	s.router.Use(chimiddleware.RealIP)    // Extracts real IP from X-Forwarded-For
	s.router.Use(chimiddleware.Recoverer) // Recovers from panics, returns 500

	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(monitoring.InstrumentHandler)

	// === Auth primitives ===
	sessions, err := auth.NewSessionService(s.config.SecretKey, s.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating session service: %w", err)
	}
	passwords := auth.NewPasswordService(s.config.BcryptCost)

	// === Services and handlers ===
	// s.db implements all three repository interfaces.
	authService := service.NewAuthService(s.db, sessions, passwords, s.logger)
	tweetService := service.NewTweetService(s.db, s.logger)
	replyService := service.NewReplyService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, sessions, s.config.SessionCookieName, s.logger)
	tweetHandler := handler.NewTweetHandler(tweetService, s.logger)
	replyHandler := handler.NewReplyHandler(replyService, s.logger)

	requireAuth := auth.RequireAuth(sessions, s.config.SessionCookieName)

	// === Public routes ===
	s.router.Get("/", handler.Welcome)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/me", authHandler.HandleMe)
		})
	})

	// === Authenticated routes ===
	s.router.Route("/tweets", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/", tweetHandler.HandleList)
		r.Post("/", tweetHandler.HandleCreate)
		r.Get("/{id}", tweetHandler.HandleGet)
		r.Delete("/{id}", tweetHandler.HandleDelete)

		// The three toggles share one handler parameterised by kind.
		for _, kind := range []model.InteractionKind{model.KindLike, model.KindRetweet, model.KindBookmark} {
			r.Post("/{id}/"+string(kind), tweetHandler.HandleAddInteraction(kind))
			r.Delete("/{id}/"+string(kind), tweetHandler.HandleRemoveInteraction(kind))
		}

		r.Get("/{id}/replies", replyHandler.HandleList)
		r.Post("/{id}/replies", replyHandler.HandleCreate)
	})

	s.router.Route("/replies", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/{id}", replyHandler.HandleGet)
		r.Delete("/{id}", replyHandler.HandleDelete)
	})

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
// 1. Stop accepting new HTTP connections
// 2. Wait for in-flight requests to finish (30s timeout)
// 3. Close the database connection (flushes WAL, releases file lock)
//
// The `defer s.db.Close()` ensures step 3 happens even if something panics.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to receive OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Channel to receive server errors
	serverErrors := make(chan error, 1)

	// Start the server in a goroutine (so it doesn't block)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give in-flight requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
