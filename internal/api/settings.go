package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
	"github.com/MikeSquared-Agency/syllabi/internal/secrets"
)

type apiKeyRequest struct {
	APIKey string `json:"apiKey"`
}

type draftRequest struct {
	Text string `json:"text"`
}

// getAPIKey handles GET /api/v1/settings/api-key. The key itself is never
// returned.
func (s *Server) getAPIKey(w http.ResponseWriter, r *http.Request) {
	ok, err := secrets.Configured(r.Context(), s.deps.APIKeys)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"configured": ok})
}

// putAPIKey handles PUT /api/v1/settings/api-key
func (s *Server) putAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.APIKeys.Set(r.Context(), req.APIKey); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("api key updated")
	writeJSON(w, http.StatusOK, map[string]bool{"configured": true})
}

// getDraft handles GET /api/v1/drafts/{key}
func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	text, ok, err := s.deps.Drafts.Get(r.Context(), key)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !ok {
		s.writeError(w, r, apperr.NotFound("no draft saved under %q", key))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "text": text})
}

// putDraft handles PUT /api/v1/drafts/{key}
func (s *Server) putDraft(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Drafts.Set(r.Context(), chi.URLParam(r, "key"), req.Text); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteDraft handles DELETE /api/v1/drafts/{key}
func (s *Server) deleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Drafts.Remove(r.Context(), chi.URLParam(r, "key")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
