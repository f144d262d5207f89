// Package api exposes the resolution stages over HTTP. Every request runs
// its own session; navigation state travels in the opaque keys.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"

	"github.com/netvlyx/vlyx/internal/resolver"
	"github.com/netvlyx/vlyx/internal/util"
)

const shutdownTimeout = 5 * time.Second

// Server routes API requests to the configured resolvers
type Server struct {
	baseURL     string
	defaultMode resolver.Mode
	resolvers   map[resolver.Mode]*resolver.Resolver
	router      chi.Router
}

// NewServer creates the API. The first resolver serves requests that do not
// ask for a mode; the others are reachable through ?mode= on /api/unlock.
func NewServer(baseURL string, def *resolver.Resolver, others ...*resolver.Resolver) *Server {
	s := &Server{
		baseURL:     baseURL,
		defaultMode: def.Mode(),
		resolvers:   map[resolver.Mode]*resolver.Resolver{def.Mode(): def},
	}
	for _, r := range others {
		if _, ok := s.resolvers[r.Mode()]; !ok {
			s.resolvers[r.Mode()] = r
		}
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/detail", s.handleDetail)
		r.Get("/episodes", s.handleEpisodes)
		r.Get("/servers", s.handleServers)
		r.Get("/unlock", s.handleUnlock)
		r.Get("/version", s.handleVersion)
	})
	return r
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		util.Info("api listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "api server")
	case <-ctx.Done():
	}

	util.Info("shutting down api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "api shutdown")
	}
	return nil
}

func (s *Server) resolverFor(mode string) (*resolver.Resolver, error) {
	if mode == "" {
		return s.resolvers[s.defaultMode], nil
	}
	m, err := resolver.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	r, ok := s.resolvers[m]
	if !ok {
		return nil, errors.Errorf("resolver mode %q is not enabled", m)
	}
	return r, nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			util.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
