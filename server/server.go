// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/healthhub/index"
	"github.com/poiesic/healthhub/ingestion"
	"github.com/poiesic/healthhub/rag"
	"github.com/poiesic/healthhub/source"
)

const (
	defaultRateLimit  = 20
	defaultRateWindow = time.Minute
	previewLimit      = 10
	reindexPoolSize   = 1
)

// Server serves the query and ingestion API.
type Server struct {
	engine      *rag.Engine
	client      *index.Client
	pipeline    *ingestion.Pipeline
	sources     []source.Config
	pool        *ants.Pool
	limiter     *ipRateLimiter
	allowOrigin string
	logger      *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRateLimit sets the per-IP request allowance per window.
// Defaults are 20 requests per minute.
func WithRateLimit(requests int, window time.Duration) Option {
	return func(s *Server) error {
		s.limiter = newIPRateLimiter(requests, window)
		return nil
	}
}

// WithAllowedOrigin sets the CORS origin. Default allows all origins.
func WithAllowedOrigin(origin string) Option {
	return func(s *Server) error {
		if origin != "" {
			s.allowOrigin = origin
		}
		return nil
	}
}

// New creates a server over the given engine, index client, pipeline,
// and source configuration.
func New(
	engine *rag.Engine,
	client *index.Client,
	pipeline *ingestion.Pipeline,
	sources []source.Config,
	opts ...Option,
) (*Server, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}
	if client == nil {
		return nil, ErrClientRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}

	pool, err := ants.NewPool(reindexPoolSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		engine:      engine,
		client:      client,
		pipeline:    pipeline,
		sources:     sources,
		pool:        pool,
		limiter:     newIPRateLimiter(defaultRateLimit, defaultRateWindow),
		allowOrigin: "*",
		logger:      slog.Default().With("component", "server"),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			pool.Release()
			return nil, err
		}
	}

	return s, nil
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{s.allowOrigin},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(s.limiter.middleware)

	r.Route("/api", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/example-queries", s.handleExampleQueries)
		r.Get("/sources", s.handleSources)
		r.Get("/sources/{id}/preview", s.handleSourcePreview)
		r.Get("/stats", s.handleStats)
		r.Get("/health", s.handleHealth)
		r.Post("/reindex", s.handleReindex)
	})

	return r
}

// ListenAndServe runs the HTTP server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Close releases the background worker pool.
func (s *Server) Close() {
	s.pool.Release()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
