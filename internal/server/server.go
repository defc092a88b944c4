// Package server wires the application together: router, middleware, routes,
// and the HTTP server lifecycle.
//
// This is the composition root — the one place where concrete dependencies
// are assembled: sqlite.DB → services → handlers → routes. Each layer only
// receives what it needs (services get repository interfaces, handlers get
// services), so nothing below this package knows about the wiring.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/queregalo/queregalo/internal/handler"
	"github.com/queregalo/queregalo/internal/middleware"
	sqliteRepo "github.com/queregalo/queregalo/internal/repository/sqlite"
	"github.com/queregalo/queregalo/internal/service"
)

// Config holds server configuration, loaded from the environment in main.
type Config struct {
	Port      int
	DBPath    string
	StaticDir string // optional: serve the SPA frontend from this directory
}

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, builds the service and handler
// chain, and registers all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
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

	s.setupRoutes()

	return s, nil
}

// Router exposes the configured router; used by the end-to-end handler tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes configures middleware and all route handlers.
//
// Middleware order matters: RequestID and RealIP enrich the request,
// Recoverer turns panics into 500s, then logging and metrics observe the
// final status code.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics())

	// Dependency chain: *sqlite.DB satisfies all three repository
	// interfaces; services receive the interfaces, handlers the services.
	groupService := service.NewGroupService(s.db, s.logger)
	userService := service.NewUserService(s.db, s.db, s.logger)
	giftService := service.NewGiftService(s.db, s.db, s.logger)

	groupHandler := handler.NewGroupHandler(groupService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	giftHandler := handler.NewGiftHandler(giftService, s.logger)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/groups", groupHandler.HandleCreate)
		r.Get("/groups/{groupID}", groupHandler.HandleGet)

		r.Post("/groups/{groupID}/users", userHandler.HandleJoin)
		r.Get("/groups/{groupID}/users", userHandler.HandleList)

		r.Post("/groups/{groupID}/users/{userID}/gifts", giftHandler.HandleCreate)
		r.Get("/groups/{groupID}/users/{userID}/gifts", giftHandler.HandleListByUser)
		r.Get("/groups/{groupID}/gifts", giftHandler.HandleListByGroup)

		r.Put("/gifts/{giftID}", giftHandler.HandleUpdate)
		r.Put("/gifts/{giftID}/lock", giftHandler.HandleLock)
		r.Put("/gifts/{giftID}/unlock", giftHandler.HandleUnlock)
		r.Delete("/gifts/{giftID}", giftHandler.HandleDelete)
	})

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.Handle("/metrics", promhttp.Handler())

	// Optional SPA frontend: serve files from StaticDir, falling back to
	// index.html for unknown paths so client-side routes deep-link.
	if s.config.StaticDir != "" {
		s.router.Get("/*", s.serveStatic)
	}
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	urlPath := r.URL.Path
	if urlPath == "/" {
		urlPath = "/index.html"
	}
	if strings.Contains(urlPath, "..") {
		http.NotFound(w, r)
		return
	}

	filePath := filepath.Join(s.config.StaticDir, filepath.Clean(urlPath))
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(s.config.StaticDir, "index.html"))
		return
	}

	http.ServeFile(w, r, filePath)
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, let in-flight requests finish
// (up to 30s), close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
