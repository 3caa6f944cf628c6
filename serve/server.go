// Package serve hosts the NeuroChain pipeline over HTTP: script analysis,
// DSL generation from natural language, and run history.
package serve

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	neurochain "github.com/stellarzerolabs/neurochain"
)

// Server is the HTTP API server.
type Server struct {
	cfg       neurochain.Config
	store     Store
	adm       *Admission
	startedAt time.Time
}

// New creates a new Server.
func New(cfg neurochain.Config) *Server {
	return &Server{
		cfg: cfg,
		adm: NewAdmission(cfg.MaxInfer, cfg.MaxInferPerIP, cfg.IPBucketTTL),
	}
}

// Start initializes the store, registers routes, and listens for HTTP
// requests. It blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.startedAt = time.Now()

	store, err := NewSQLiteStore(s.cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	s.store = store
	if err := store.Init(); err != nil {
		return fmt.Errorf("init database: %w", err)
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	srv := &http.Server{
		Addr:    s.cfg.Addr(),
		Handler: corsMiddleware(recoverMiddleware(mux)),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("neurochain api listening", "addr", s.cfg.Addr())
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if err := store.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	return nil
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /api/health", s.handleHealth)
}

// recoverMiddleware turns a handler panic into a 500 instead of killing the
// connection. Each request runs its own interpreter, so one bad script never
// takes the process down.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panic", "path", r.URL.Path, "panic", rec)
				writeJSON(w, http.StatusInternalServerError,
					map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware adds permissive CORS headers. The API sits behind a
// same-origin reverse proxy in production.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
