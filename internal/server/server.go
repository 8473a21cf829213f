// Package server wires the dependency graph and defines all routes. It is
// the composition root: handlers, services, and stores are constructed here
// and nowhere else.
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

	"github.com/sakif/gift-registry/internal/auth"
	"github.com/sakif/gift-registry/internal/config"
	"github.com/sakif/gift-registry/internal/handler"
	"github.com/sakif/gift-registry/internal/mailer"
	"github.com/sakif/gift-registry/internal/middleware"
	sqliteRepo "github.com/sakif/gift-registry/internal/repository/sqlite"
	"github.com/sakif/gift-registry/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during graceful shutdown so the WAL gets flushed.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	auths  *service.AuthService
}

// New creates a Server and assembles the full dependency chain:
// stores → services → handlers → routes.
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
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Stores share the one connection.
	users := sqliteRepo.NewUserStore(s.db)
	wishlists := sqliteRepo.NewWishlistStore(s.db)
	items := sqliteRepo.NewItemStore(s.db)
	reservations := sqliteRepo.NewReservationStore(s.db)
	friends := sqliteRepo.NewFriendStore(s.db)
	comments := sqliteRepo.NewCommentStore(s.db)

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	mail := mailer.New(mailer.Config{
		Host:     s.config.SMTPHost,
		Port:     s.config.SMTPPort,
		Username: s.config.SMTPUsername,
		Password: s.config.SMTPPassword,
		From:     s.config.SMTPFrom,
	}, s.logger)
	if mail == nil {
		s.logger.Warn("SMTP not configured — email disabled")
	}

	access := service.NewAccessService(wishlists, items, reservations, friends, comments, s.logger)
	projection := service.NewProjectionService(wishlists, reservations, s.logger)
	wishlistSvc := service.NewWishlistService(access, projection, wishlists, items, s.logger)
	reservationSvc := service.NewReservationService(access, items, wishlists, reservations, s.logger)
	commentSvc := service.NewCommentService(access, items, wishlists, comments, s.logger)
	friendSvc := service.NewFriendService(users, friends, s.logger)
	s.auths = service.NewAuthService(users, tokens, passwords, mail, s.config.AdminEmail, s.logger)

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authHandler := handler.NewAuthHandler(s.auths, github, users, s.logger)
	wishlistHandler := handler.NewWishlistHandler(wishlistSvc, users, s.logger)
	itemHandler := handler.NewItemHandler(wishlistSvc, users, s.logger)
	reservationHandler := handler.NewReservationHandler(reservationSvc, users, s.logger)
	commentHandler := handler.NewCommentHandler(commentSvc, users, s.logger)
	friendHandler := handler.NewFriendHandler(friendSvc, users, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		if github != nil {
			r.Get("/github/login", authHandler.HandleGitHubLogin)
			r.Get("/github/callback", authHandler.HandleGitHubCallback)
		}
	})

	// Every /api route requires a valid token. Anonymous callers see
	// nothing — even public wishlists need an account to browse.
	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)

		r.Post("/wishlists", wishlistHandler.HandleCreate)
		r.Get("/wishlists", wishlistHandler.HandleList)
		r.Get("/wishlists/{id}", wishlistHandler.HandleGet)
		r.Put("/wishlists/{id}", wishlistHandler.HandleUpdate)
		r.Delete("/wishlists/{id}", wishlistHandler.HandleDelete)
		r.Post("/wishlists/{id}/items", wishlistHandler.HandleAddItem)
		r.Get("/wishlists/{id}/items", wishlistHandler.HandleListItems)

		r.Get("/items/{id}", itemHandler.HandleGet)
		r.Put("/items/{id}", itemHandler.HandleUpdate)
		r.Delete("/items/{id}", itemHandler.HandleDelete)

		r.Post("/items/{id}/reservations", reservationHandler.HandleCreate)
		r.Get("/reservations", reservationHandler.HandleListMine)
		r.Delete("/reservations", reservationHandler.HandleClearMine)
		r.Delete("/reservations/{id}", reservationHandler.HandleDelete)

		r.Get("/items/{id}/comments", commentHandler.HandleList)
		r.Post("/items/{id}/comments", commentHandler.HandleCreate)
		r.Put("/comments/{id}", commentHandler.HandleUpdate)
		r.Delete("/comments/{id}", commentHandler.HandleDelete)

		r.Get("/users/{id}/wishlists", wishlistHandler.HandleListByUser)
		r.Get("/users/{id}/reservations", reservationHandler.HandleListForUser)
		r.Delete("/users/{id}/reservations", reservationHandler.HandleClearForUser)

		r.Post("/friends", friendHandler.HandleAdd)
		r.Get("/friends", friendHandler.HandleList)
		r.Delete("/friends/{id}", friendHandler.HandleRemove)
	})

	return nil
}

// ServeHTTP dispatches to the router, so a Server can be driven directly by
// httptest without binding a port.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs the admin bootstrap, serves HTTP, and shuts down gracefully on
// SIGINT/SIGTERM: stop accepting connections, drain in-flight requests,
// then close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	if err := s.auths.BootstrapAdmin(context.Background()); err != nil {
		return fmt.Errorf("admin bootstrap: %w", err)
	}

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
