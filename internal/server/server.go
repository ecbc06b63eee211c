// Package server exposes the matching engine and the roadmap generator over
// HTTP. Request and response bodies are JSON; errors use a {detail} envelope.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/spigell/optiplan-ai/internal/ai"
	"github.com/spigell/optiplan-ai/internal/matching"
	"go.uber.org/zap"
)

// RoadmapGenerator produces a task list from a free-text project description.
type RoadmapGenerator interface {
	Generate(ctx context.Context, projectDescription string) ([]ai.GeneratedTask, error)
}

type Server struct {
	engine  *matching.Engine
	roadmap RoadmapGenerator
	logger  *zap.Logger
	http    *http.Server
}

// New builds the server. roadmap may be nil; the generate-tasks endpoint then
// reports the generator as unconfigured instead of failing at startup.
func New(listen string, engine *matching.Engine, roadmap RoadmapGenerator, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		engine:  engine,
		roadmap: roadmap,
		logger:  logger,
	}

	s.http = &http.Server{
		Addr:              listen,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health-check", s.handleHealthCheck)

	mux.HandleFunc("POST /generate-tasks", s.handleGenerateTasks)

	mux.HandleFunc("POST /index-users", s.handleIndexUsers)
	mux.HandleFunc("POST /index-tasks", s.handleIndexTasks)

	mux.HandleFunc("POST /match-users-for-tasks", s.handleMatchUsersForTasks)
	mux.HandleFunc("POST /match-user-for-task", s.handleMatchUserForTask)
	mux.HandleFunc("POST /match-tasks-for-users", s.handleMatchTasksForUsers)
	mux.HandleFunc("POST /match-tasks-for-user", s.handleMatchTasksForUser)

	mux.HandleFunc("POST /delete-indexed-users", s.handleDeleteUsers)
	mux.HandleFunc("POST /delete-indexed-tasks", s.handleDeleteTasks)

	return s.withRequestLogging(mux)
}

// Handler returns the configured HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("listening", zap.String("address", s.http.Addr))
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
