// Package server is the composition root: it opens the database, wires
// repositories into services and services into handlers, and owns the router
// and the server lifecycle.
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
	"github.com/go-chi/cors"

	"github.com/hayato-dev/discussboard/internal/auth"
	"github.com/hayato-dev/discussboard/internal/config"
	"github.com/hayato-dev/discussboard/internal/handler"
	"github.com/hayato-dev/discussboard/internal/llm"
	"github.com/hayato-dev/discussboard/internal/middleware"
	sqliteRepo "github.com/hayato-dev/discussboard/internal/repository/sqlite"
	"github.com/hayato-dev/discussboard/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed before exit.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain. Handlers
// only see services, services only see the repository interfaces.
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
	s.setupRoutes()

	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// The API is consumed by a separately hosted frontend, so CORS is open.
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	passwords := auth.NewPasswordService()
	accountService := service.NewAccountService(s.db, passwords, s.logger)
	threadService := service.NewThreadService(s.db, s.db, s.logger)

	// Without an API key the suggestion service falls back to the local
	// keyword rules, so the endpoint works either way.
	var completer service.Completer
	if s.config.OpenAIKey != "" {
		completer = llm.NewClient(s.config.OpenAIKey, s.config.OpenAIBaseURL)
	}
	suggestionService := service.NewSuggestionService(completer, s.logger)

	authHandler := handler.NewAuthHandler(accountService, s.logger)
	threadHandler := handler.NewThreadHandler(threadService, suggestionService, s.logger)

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/check-username", authHandler.HandleCheckUsername)
			r.Post("/register", authHandler.HandleRegister)
			r.Post("/login", authHandler.HandleLogin)
			r.Post("/update", authHandler.HandleUpdateProfile)
			r.Post("/change-password", authHandler.HandleChangePassword)
		})

		r.Route("/threads", func(r chi.Router) {
			r.Get("/", threadHandler.HandleList)
			r.Get("/category-suggestions", threadHandler.HandleSuggestCategories)
			r.Post("/", threadHandler.HandleCreate)
			r.Post("/comment", threadHandler.HandlePostComment)
			r.Post("/reaction", threadHandler.HandleToggleReaction)
		})
	})
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests, close the database.
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
			slog.String("database", s.config.DBPath),
			slog.Bool("llmEnabled", s.config.OpenAIKey != ""),
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
