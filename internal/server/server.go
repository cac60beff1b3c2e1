package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/tickdone/tickdone/internal/config"
	"github.com/tickdone/tickdone/internal/task"
	"github.com/tickdone/tickdone/pkg/cerr"
	"github.com/tickdone/tickdone/pkg/clog"
)

const version = "0.4.0"

type Server struct {
	server     *http.Server
	env        *config.Env
	taskServer *task.Server
}

func NewServer(env *config.Env, taskServer *task.Server) *Server {
	return &Server{
		env:        env,
		taskServer: taskServer,
	}
}

// Handler builds the full HTTP handler. Exposed separately so tests can
// mount it on httptest without binding a port.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			clog.SlogChiMiddleware(),
			cerr.NewJSONResponseChiMiddleware(),
		)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			cerr.SetNewJSONError(r.Context(), cerr.NotFound, "not found", nil)
		})
		r.Get("/health", s.handleHealth)
		s.taskServer.Mount(r)
	})

	return cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r)
}

// ListenAndServe starts the HTTP server. The provided context is used as
// the base context for all incoming requests, so cancelling it (e.g. on a
// shutdown signal) also cancels in-flight request contexts.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := net.JoinHostPort(s.env.HTTPHost, s.env.HTTPPort)
	slog.Info("starting server", "addr", addr)

	s.server = &http.Server{
		Addr:        addr,
		Handler:     s.Handler(),
		BaseContext: func(_ net.Listener) context.Context { return ctx },
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type healthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Storage   string    `json:"storage"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	cerr.SetJSONResponse(r.Context(), healthResponse{
		Status:    "healthy",
		Version:   version,
		Storage:   s.env.StorageEnv.Type,
		Timestamp: time.Now().UTC(),
	})
}
