// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	hberr "github.com/prmsu-dev/handbook/pkg/errors"
)

// APITitle is the OpenAPI title of the service.
const APITitle = "PRMSU Student Handbook Chatbot"

// Config holds HTTP server configuration.
type Config struct {
	ListenAddr   string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    RateLimitConfig
	// TrustedProxies lists CIDR ranges whose X-Forwarded-For headers are
	// honoured. Empty means forwarding headers are always ignored.
	TrustedProxies []string
	// Version is reported by the info endpoint and the OpenAPI document.
	Version string
}

// Server wraps a chi router with huma API and HTTP server.
type Server struct {
	router   chi.Router
	api      huma.API
	cfg      Config
	services *Services

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a Server with middleware, CORS and every handbook route
// registered against svc.
func New(cfg Config, svc *Services) (*Server, error) {
	if cfg.ListenAddr == "" {
		return nil, hberr.New(hberr.CodeServerConfigInvalid, "listen address is required")
	}
	if svc == nil {
		return nil, hberr.New(hberr.CodeServerConfigInvalid, "services are required")
	}
	if err := cfg.RateLimit.Validate(); err != nil {
		return nil, err
	}
	var trusted []*net.IPNet
	if len(cfg.TrustedProxies) > 0 {
		nets, err := parseTrustedProxies(cfg.TrustedProxies)
		if err != nil {
			return nil, err
		}
		trusted = nets
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 15 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	srv := &Server{
		cfg:      cfg,
		services: svc,
		done:     make(chan struct{}),
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Recoverer)
	if trusted != nil {
		r.Use(trustedProxyRealIP(trusted))
	}
	r.Use(requestIDMiddleware)
	r.Use(securityHeadersMiddleware)
	r.Use(requestLogMiddleware)
	r.Use(corsMiddleware(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware(cfg.RateLimit, srv.done))

	// Huma API with OpenAPI spec
	humaConfig := huma.DefaultConfig(APITitle, cfg.Version)
	humaConfig.Info.Description = "Answers questions about the PRMSU student handbook from a curated knowledge base"
	api := humachi.New(r, humaConfig)

	srv.router = r
	srv.api = api
	srv.registerRoutes()

	return srv, nil
}

// Handler returns the underlying http.Handler for testing.
func (s *Server) Handler() http.Handler {
	return s.router
}

// API returns the huma API for registering additional operations.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background goroutines. Start calls it on shutdown; callers
// that only use Handler must call it themselves.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Start runs the HTTP server and blocks until the context is cancelled,
// then performs graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return hberr.Errorf(hberr.CodeServerStartFailure, "listening on %s: %w", s.cfg.ListenAddr, err)
	}

	srv := &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	slog.Info("http server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err, ok := <-errCh:
		if ok && err != nil {
			return hberr.Errorf(hberr.CodeServerStartFailure, "serving: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return hberr.Errorf(hberr.CodeServerShutdownFailure, "shutting down: %w", err)
	}
	slog.Info("http server stopped")

	if err := <-errCh; err != nil {
		return hberr.Errorf(hberr.CodeServerStartFailure, "serving: %w", err)
	}
	return nil
}

func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	wildcard := false
	for _, o := range origins {
		if o == "*" {
			wildcard = true
			break
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
		// Browsers refuse credentials with a wildcard origin.
		AllowCredentials: !wildcard,
		MaxAge:           300,
	})
}
