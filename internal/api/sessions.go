package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
	"github.com/MikeSquared-Agency/syllabi/internal/calendar"
	"github.com/MikeSquared-Agency/syllabi/internal/icsexport"
	"github.com/MikeSquared-Agency/syllabi/internal/processor"
	"github.com/MikeSquared-Agency/syllabi/internal/store"
)

// CalendarTokenHeader carries a per-request calendar access token.
const CalendarTokenHeader = "X-Calendar-Token"

type createSessionRequest struct {
	Text     string `json:"text"`
	DraftKey string `json:"draftKey,omitempty"`
}

type reviseRequest struct {
	Correction string `json:"correction"`
}

type sessionResponse struct {
	processor.Session
	Preview []string `json:"preview"`
}

func respondSession(s processor.Session) sessionResponse {
	return sessionResponse{Session: s, Preview: processor.Preview(s.Events)}
}

func sessionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.Input("invalid session id")
	}
	return id, nil
}

// createSession handles POST /api/v1/sessions
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.deps.Sessions.Parse(r.Context(), req.Text, req.DraftKey)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, respondSession(sess))
}

// getSession handles GET /api/v1/sessions/{id}
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, respondSession(sess))
}

// deleteSession handles DELETE /api/v1/sessions/{id}
func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Sessions.Discard(id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// reviseSession handles POST /api/v1/sessions/{id}/revisions
func (s *Server) reviseSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req reviseRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.deps.Sessions.Revise(r.Context(), id, req.Correction)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, respondSession(sess))
}

// syncSession handles POST /api/v1/sessions/{id}/sync
func (s *Server) syncSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var tokens calendar.TokenSource = s.deps.CalendarToken
	if t := strings.TrimSpace(r.Header.Get(CalendarTokenHeader)); t != "" {
		tokens = calendar.StaticToken(t)
	}

	report, err := s.deps.Sessions.Sync(r.Context(), id, tokens)
	if err != nil {
		s.writeSyncError(w, r, err, report)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// exportSession handles GET /api/v1/sessions/{id}/calendar.ics
func (s *Server) exportSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := s.deps.Sessions.Get(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	body, err := icsexport.Render(sess.ID, sess.Events, sess.UpdatedAt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="syllabus.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

// listSyncs handles GET /api/v1/sessions/{id}/syncs. History outlives the
// session, so a closed session still answers.
func (s *Server) listSyncs(w http.ResponseWriter, r *http.Request) {
	id, err := sessionID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.deps.History == nil {
		s.writeError(w, r, apperr.NotFound("sync history is not enabled"))
		return
	}
	runs, err := s.deps.History.ListSyncs(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []store.SyncRun{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessionId": id, "runs": runs})
}
