package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/events"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/extract"
	"github.com/prudhvi1519/Simple-AI-Assisted-Personal-Job-Tracker/internal/store"
)

// Gate blocks new extractions while a rate-limit window is open.
// internal/cooldown provides the redis-backed implementation.
type Gate interface {
	Active(ctx context.Context) (int, bool)
	Arm(ctx context.Context, seconds int) error
}

// JobStore is the persistence surface the handlers need.
type JobStore interface {
	ListJobs(ctx context.Context) ([]store.Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*store.Job, error)
	CreateJob(ctx context.Context, j *store.Job) (*store.Job, error)
	UpdateJob(ctx context.Context, j *store.Job) (*store.Job, error)
	DeleteJob(ctx context.Context, id uuid.UUID) error
	ApplyPatch(ctx context.Context, id uuid.UUID, p extract.Patch) (*store.Job, error)
	InsertExtractionRun(ctx context.Context, jobID uuid.UUID, inputText string, res *extract.Result) (uuid.UUID, error)
	ListExtractionRuns(ctx context.Context, jobID uuid.UUID) ([]store.ExtractionRun, error)
}

// Deps carries everything the server needs. Gate and Events may be nil.
type Deps struct {
	Store     JobStore
	Extractor *extract.Extractor
	Fetcher   *extract.Fetcher
	Gate      Gate
	Events    *events.Publisher
	Logger    *slog.Logger
}

type Server struct {
	router    *chi.Mux
	http      *http.Server
	store     JobStore
	extractor *extract.Extractor
	fetcher   *extract.Fetcher
	gate      Gate
	events    *events.Publisher
	logger    *slog.Logger
}

func NewServer(port int, apiToken string, deps Deps) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		http:      &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: router},
		store:     deps.Store,
		extractor: deps.Extractor,
		fetcher:   deps.Fetcher,
		gate:      deps.Gate,
		events:    deps.Events,
		logger:    deps.Logger,
	}

	router.Get("/health", s.health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))

		r.Get("/jobs", s.listJobs)
		r.Post("/jobs", s.createJob)
		r.Get("/jobs/{id}", s.getJob)
		r.Patch("/jobs/{id}", s.updateJob)
		r.Delete("/jobs/{id}", s.deleteJob)
		r.Get("/jobs/{id}/runs", s.listRuns)

		r.Post("/jobs/{id}/extract", s.extractForJob)
		r.Post("/jobs/{id}/apply", s.applyToJob)
		r.Post("/extract", s.extractFreeform)
	})

	return s
}

func (s *Server) Start() error {
	s.logger.Info("API server starting", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// ServeHTTP exposes the router for handler tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// BearerAuthMiddleware rejects requests whose Authorization header doesn't
// carry the configured token. An empty token disables auth.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// cooldownActive reports the open rate-limit window, if any. No gate
// configured means no cooldown.
func (s *Server) cooldownActive(ctx context.Context) (int, bool) {
	if s.gate == nil {
		return 0, false
	}
	return s.gate.Active(ctx)
}

func (s *Server) armCooldown(ctx context.Context, seconds int) {
	if s.gate == nil {
		return
	}
	if err := s.gate.Arm(ctx, seconds); err != nil {
		s.logger.Warn("failed to arm cooldown", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// jobID parses the {id} route parameter. A second return of false means a
// 400 was already written.
func jobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid job id")
		return uuid.Nil, false
	}
	return id, true
}
