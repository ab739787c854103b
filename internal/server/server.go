// Package server assembles the application: it opens the store, wires
// repositories into services and services into handlers, and maps every
// route. It is the composition root; nothing outside this package and main
// constructs concrete dependencies.
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

	"github.com/sakif/safari-community/internal/auth"
	"github.com/sakif/safari-community/internal/config"
	"github.com/sakif/safari-community/internal/handler"
	"github.com/sakif/safari-community/internal/middleware"
	sqliteRepo "github.com/sakif/safari-community/internal/repository/sqlite"
	"github.com/sakif/safari-community/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL is flushed before exit.
type Server struct {
	router *chi.Mux
	cfg    config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full dependency chain and registers all routes.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Uploaded images are served back from the same directory they are
	// written to.
	fileServer := http.FileServer(http.Dir(s.cfg.UploadsDir))
	s.router.Handle("/static/uploads/*", http.StripPrefix("/static/uploads/", fileServer))

	tokens, err := auth.NewTokenService(s.cfg.JWTSecret, s.cfg.JWTAlgorithm, s.cfg.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	google := auth.NewGoogleProvider(s.cfg.GoogleClientID, s.cfg.GoogleClientSecret, s.cfg.GoogleRedirectURL)
	passwords := auth.NewPasswordService()

	users := sqliteRepo.NewUserStore(s.db)
	categories := sqliteRepo.NewCategoryStore(s.db)
	programs := sqliteRepo.NewProgramStore(s.db)
	presets := sqliteRepo.NewPresetStore(s.db)
	posts := sqliteRepo.NewPostStore(s.db)
	comments := sqliteRepo.NewCommentStore(s.db)

	authSvc := service.NewAuthService(users, tokens, passwords, google, s.logger)
	categorySvc := service.NewCategoryService(categories, programs, s.logger)
	programSvc := service.NewProgramService(programs, categories, s.logger)
	presetSvc := service.NewPresetService(presets, categories, s.logger)
	postSvc := service.NewPostService(posts, comments, presets, s.logger)

	authH := handler.NewAuthHandler(authSvc, s.cfg.TokenTTL, s.logger)
	categoryH := handler.NewCategoryHandler(categorySvc, s.logger)
	programH := handler.NewProgramHandler(programSvc, s.logger)
	presetH := handler.NewPresetHandler(presetSvc, postSvc, s.logger)
	postH := handler.NewPostHandler(postSvc, s.cfg.UploadsDir, s.logger)

	requireAuth := auth.RequireAuth(tokens)
	optionalAuth := auth.OptionalAuth(tokens)

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authH.HandleGoogleLogin)
		r.Get("/google/callback", authH.HandleGoogleCallback)
		r.Post("/register", authH.HandleRegister)
		r.Post("/login", authH.HandleLogin)
		r.Post("/logout", authH.HandleLogout)
		r.With(requireAuth).Get("/me", authH.HandleMe)
	})

	s.router.Route("/categories", func(r chi.Router) {
		r.Get("/", categoryH.HandleList)
		r.Get("/{id}", categoryH.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", categoryH.HandleCreate)
			r.Put("/{id}", categoryH.HandleUpdate)
			r.Delete("/{id}", categoryH.HandleDelete)
		})
	})

	s.router.Route("/programs", func(r chi.Router) {
		r.Get("/", programH.HandleList)
		r.Get("/{id}", programH.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", programH.HandleCreate)
			r.Put("/{id}", programH.HandleUpdate)
			r.Delete("/{id}", programH.HandleDelete)
		})
	})

	s.router.Route("/presets", func(r chi.Router) {
		r.Get("/", presetH.HandleList)
		r.Get("/{id}", presetH.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", presetH.HandleCreate)
			r.Put("/{id}", presetH.HandleUpdate)
			r.Delete("/{id}", presetH.HandleDelete)
			r.Post("/{id}/share", presetH.HandleShare)
		})
	})

	s.router.Route("/posts", func(r chi.Router) {
		r.Get("/", postH.HandleList)
		// Optional auth: public posts stay anonymous-readable, a private
		// post is visible to its creator.
		r.With(optionalAuth).Get("/{id}", postH.HandleGet)
		r.Get("/{id}/comments", postH.HandleListComments)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", postH.HandleCreate)
			r.Put("/{id}", postH.HandleUpdate)
			r.Delete("/{id}", postH.HandleDelete)
			r.Post("/{id}/reaction", postH.HandleReaction)
			r.Post("/{id}/scrap", postH.HandleScrap)
			r.Post("/{id}/comments", postH.HandleAddComment)
			r.Delete("/{id}/comments/{commentID}", postH.HandleDeleteComment)
			r.Post("/{id}/comments/{commentID}/reaction", postH.HandleCommentReaction)
		})
	})

	return nil
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Close releases the server's resources without going through Start.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, drain in-flight requests, close
// the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         s.cfg.HTTPAddress,
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
			slog.String("address", s.cfg.HTTPAddress),
			slog.String("database", s.cfg.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("server: graceful shutdown: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
