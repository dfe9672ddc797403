package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/desajambearum/jambearum/internal/handler"
	"github.com/desajambearum/jambearum/internal/server/middleware"
	"github.com/desajambearum/jambearum/internal/service"
	"github.com/desajambearum/jambearum/internal/storage"
	"github.com/desajambearum/jambearum/internal/store"
	"github.com/desajambearum/jambearum/internal/ui"
)

// Config holds the HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	CORSOrigins     []string
	EnableUI        bool
	MaxBodySize     int64 // bytes
	LoginRateLimit  int   // login attempts per minute per IP, 0 = unlimited
	Version         string
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            3000,
		ShutdownTimeout: 30 * time.Second,
		CORSOrigins:     []string{"*"},
		EnableUI:        true,
		MaxBodySize:     10 * 1024 * 1024, // 10MB
		Version:         "dev",
	}
}

// Server is the top-level HTTP server for the village site. It owns the Chi
// router, the data store, the upload store and the session service.
type Server struct {
	cfg        Config
	router     chi.Router
	store      *store.Store
	authSvc    *service.AuthService
	uploads    *storage.LocalStore
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a new Server, wires up all routes and middleware, and returns
// it ready to listen. Call ListenAndServe to start accepting connections.
func New(cfg Config, st *store.Store, authSvc *service.AuthService, uploads *storage.LocalStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		store:   st,
		authSvc: authSvc,
		uploads: uploads,
		logger:  logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// --- Global middleware ---
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimw.Compress(5))
	if s.cfg.MaxBodySize > 0 {
		r.Use(chimw.RequestSize(s.cfg.MaxBodySize))
	}

	sysHandler := handler.NewSystemHandler(s.store, s.cfg.Version, s.logger)

	// --- Health checks and API description (no auth required) ---
	r.Get("/healthz", sysHandler.Health)
	r.Get("/readyz", sysHandler.Ready)
	r.Get("/openapi.json", sysHandler.OpenAPI)

	// --- API routes ---
	r.Route("/api", func(r chi.Router) {
		umkmHandler := handler.NewUMKMHandler(s.store, s.logger)
		imageHandler := handler.NewHomepageImageHandler(s.store, s.logger)
		settingsHandler := handler.NewSettingsHandler(s.store, s.logger)
		userHandler := handler.NewUserHandler(s.store, s.logger)
		uploadHandler := handler.NewUploadHandler(s.uploads, s.logger)

		// Public directory
		r.Get("/umkm", umkmHandler.ListPublic)
		r.Get("/umkm/{id}", umkmHandler.GetPublic)
		r.Get("/homepage-images", imageHandler.ListPublic)
		r.Get("/settings/public", settingsHandler.Public)
		r.Get("/users", userHandler.List)
		r.Post("/users", userHandler.Create)

		// Legacy upload path, kept next to /api/admin/upload under the same guard.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminSession(s.authSvc))
			r.Post("/upload", uploadHandler.Upload)
			r.Delete("/upload", uploadHandler.Delete)
		})

		r.Route("/admin", func(r chi.Router) {
			adminHandler := handler.NewAdminHandler(s.store, s.authSvc, s.logger)

			// Session endpoints are unauthenticated (login) or self-authenticated (logout, me)
			r.Group(func(r chi.Router) {
				if s.cfg.LoginRateLimit > 0 {
					r.Use(middleware.RateLimit(s.cfg.LoginRateLimit))
				}
				r.Post("/login", adminHandler.Login)
			})
			r.Post("/logout", adminHandler.Logout)
			r.Get("/me", adminHandler.Me)

			// Everything else requires an admin session
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdminSession(s.authSvc))

				r.Get("/stats", adminHandler.Stats)

				r.Get("/umkm", umkmHandler.List)
				r.Post("/umkm", umkmHandler.Create)
				r.Post("/umkm/bulk", umkmHandler.Bulk)
				r.Get("/umkm/{id}", umkmHandler.Get)
				r.Patch("/umkm/{id}", umkmHandler.Update)
				r.Delete("/umkm/{id}", umkmHandler.Delete)

				r.Get("/homepage-images", imageHandler.List)
				r.Post("/homepage-images", imageHandler.Create)
				r.Get("/homepage-images/{id}", imageHandler.Get)
				r.Patch("/homepage-images/{id}", imageHandler.Update)
				r.Delete("/homepage-images/{id}", imageHandler.Delete)

				r.Get("/settings/whatsapp", settingsHandler.GetWhatsApp)
				r.Post("/settings/whatsapp", settingsHandler.SetWhatsApp)

				r.Post("/upload", uploadHandler.Upload)
				r.Delete("/upload", uploadHandler.Delete)
			})
		})
	})

	// --- Uploaded images ---
	if s.uploads != nil {
		prefix := s.uploads.BaseURL
		if strings.HasPrefix(prefix, "/") {
			files := http.StripPrefix(prefix, http.FileServer(http.Dir(s.uploads.Dir)))
			r.Get(prefix+"/*", func(w http.ResponseWriter, r *http.Request) {
				if strings.HasSuffix(r.URL.Path, "/") {
					http.NotFound(w, r)
					return
				}
				files.ServeHTTP(w, r)
			})
		}
	}

	// --- Embedded pages ---
	if s.cfg.EnableUI {
		site, err := ui.NewSite()
		if err != nil {
			s.logger.Error("failed to create sub filesystem for UI", "error", err)
		} else {
			assets := site.Assets()
			r.Handle("/assets/*", assets)
			r.Handle("/favicon.svg", assets)

			for _, p := range ui.PublicPages {
				r.Get(p.Pattern, site.Shell(p.File))
			}

			// Admin pages: the guard runs before any of them
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminPageGuard(s.authSvc))
				r.Get("/admin", func(w http.ResponseWriter, r *http.Request) {
					http.Redirect(w, r, "/admin/dashboard", http.StatusTemporaryRedirect)
				})
				for _, p := range ui.AdminPages {
					r.Get(p.Pattern, site.Shell(p.File))
				}
				// Unknown admin pages still pass through the guard before 404ing
				r.Get("/admin/*", http.NotFound)
			})
		}
	}

	s.router = r
}

// ListenAndServe starts the HTTP server and blocks until a SIGINT or SIGTERM
// is received. It then performs a graceful shutdown, draining in-flight
// requests.
func (s *Server) ListenAndServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start server in background goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr, "version", s.cfg.Version)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server listen: %w", err)
	case <-ctx.Done():
		s.logger.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the underlying Chi router, useful for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ServeHTTP implements http.Handler, delegating to the router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
