package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/syllabi/internal/calendar"
	"github.com/MikeSquared-Agency/syllabi/internal/drafts"
	"github.com/MikeSquared-Agency/syllabi/internal/processor"
	"github.com/MikeSquared-Agency/syllabi/internal/secrets"
	"github.com/MikeSquared-Agency/syllabi/internal/store"
)

// Sessions is the session workflow the HTTP layer drives.
type Sessions interface {
	Parse(ctx context.Context, text, draftKey string) (processor.Session, error)
	Revise(ctx context.Context, id uuid.UUID, correction string) (processor.Session, error)
	Sync(ctx context.Context, id uuid.UUID, tokens calendar.TokenSource) (calendar.SyncReport, error)
	Get(id uuid.UUID) (processor.Session, error)
	Discard(id uuid.UUID) error
	Len() int
}

// SyncHistory lists the recorded sync batches of a session.
type SyncHistory interface {
	ListSyncs(ctx context.Context, sessionID uuid.UUID) ([]store.SyncRun, error)
}

// Deps are the components behind the routes.
type Deps struct {
	Sessions Sessions
	APIKeys  secrets.Store
	Drafts   drafts.Store
	// CalendarToken is used for sync requests that carry no X-Calendar-Token.
	CalendarToken calendar.TokenSource
	// History is optional; without it the syncs route answers 404.
	History SyncHistory
}

type Server struct {
	router *chi.Mux
	port   int
	deps   Deps
	logger *slog.Logger
	http   *http.Server
}

func NewServer(port int, apiToken string, deps Deps, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		port:   port,
		deps:   deps,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/syllabi/status", s.status)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(apiToken))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Delete("/", s.deleteSession)
				r.Post("/revisions", s.reviseSession)
				r.Post("/sync", s.syncSession)
				r.Get("/calendar.ics", s.exportSession)
				r.Get("/syncs", s.listSyncs)
			})
		})

		r.Get("/settings/api-key", s.getAPIKey)
		r.Put("/settings/api-key", s.putAPIKey)

		r.Get("/drafts/{key}", s.getDraft)
		r.Put("/drafts/{key}", s.putDraft)
		r.Delete("/drafts/{key}", s.deleteDraft)
	})

	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":  "syllabi",
		"status":   "ok",
		"sessions": s.deps.Sessions.Len(),
	})
}
