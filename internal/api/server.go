package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kophyo6929/homietv/internal/api/handlers"
	"github.com/kophyo6929/homietv/internal/api/middleware"
	"github.com/kophyo6929/homietv/internal/config"
	"github.com/kophyo6929/homietv/internal/controllers"
	"github.com/kophyo6929/homietv/internal/models"
	"github.com/kophyo6929/homietv/internal/services/auth"
	"github.com/kophyo6929/homietv/internal/services/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// Deps carries everything the route handlers need
type Deps struct {
	DB      *models.Database
	Auth    *auth.Service
	Store   *storage.Store
	Catalog *controllers.CatalogController
	Ads     *controllers.AdsController
	Content *controllers.ContentController
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, deps Deps, logger *logrus.Logger) (*Server, error) {
	renderer, err := handlers.NewRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to build renderer: %w", err)
	}

	s := &Server{logger: logger}

	mux := http.NewServeMux()
	s.setupRoutes(mux, deps, renderer)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      middleware.Logging(middleware.Metrics(mux), logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, deps Deps, renderer *handlers.Renderer) {
	homeHandler := handlers.NewHomeHandler(deps.Catalog, deps.Ads, deps.Auth, renderer, s.logger)
	mux.HandleFunc("/", homeHandler.ServeHTTP)

	videoHandler := handlers.NewVideoHandler(deps.DB, deps.Ads, deps.Auth, renderer, s.logger)
	mux.HandleFunc("/video/", videoHandler.ServeHTTP)

	authHandler := handlers.NewAuthHandler(deps.Auth, renderer, s.logger)
	mux.HandleFunc("/auth", authHandler.ServePage)
	mux.HandleFunc("/auth/login", authHandler.Login)
	mux.HandleFunc("/auth/logout", authHandler.Logout)

	adminHandler := handlers.NewAdminHandler(deps.DB, deps.Content, deps.Auth, renderer, s.logger)
	mux.HandleFunc("/admin", adminHandler.ServePanel)
	mux.HandleFunc("/admin/videos/save", adminHandler.SaveVideo)
	mux.HandleFunc("/admin/videos/delete", adminHandler.DeleteVideo)
	mux.HandleFunc("/admin/ads/save", adminHandler.SaveAd)
	mux.HandleFunc("/admin/ads/delete", adminHandler.DeleteAd)

	pagesHandler := handlers.NewPagesHandler(deps.Auth, renderer, s.logger)
	mux.HandleFunc("/contact", pagesHandler.Contact)
	mux.HandleFunc("/policy", pagesHandler.Policy)

	// Uploaded media served from disk under stable public URLs
	mux.Handle("/uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.Store.Dir()))))

	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	mux.Handle("/metrics", promhttp.Handler())
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
