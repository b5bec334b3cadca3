package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
	"github.com/MikeSquared-Agency/syllabi/internal/calendar"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindInput:      http.StatusBadRequest,
	apperr.KindAuth:       http.StatusUnauthorized,
	apperr.KindConflict:   http.StatusConflict,
	apperr.KindNotFound:   http.StatusNotFound,
	apperr.KindValidation: http.StatusUnprocessableEntity,
	apperr.KindService:    http.StatusBadGateway,
	apperr.KindParse:      http.StatusBadGateway,
	apperr.KindSync:       http.StatusBadGateway,
}

type errorBody struct {
	Error  string               `json:"error"`
	Kind   apperr.Kind          `json:"kind,omitempty"`
	Report *calendar.SyncReport `json:"report,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps an error to its HTTP status. Unclassified errors are 500.
func statusFor(err error) int {
	if code, ok := statusByKind[apperr.KindOf(err)]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", code, "error", err)
	}

	body := errorBody{Error: err.Error(), Kind: apperr.KindOf(err)}
	if code == http.StatusInternalServerError {
		body.Error = "internal error"
	}
	writeJSON(w, code, body)
}

func (s *Server) writeSyncError(w http.ResponseWriter, r *http.Request, err error, report calendar.SyncReport) {
	var syncErr *calendar.SyncError
	if !errors.As(err, &syncErr) {
		s.writeError(w, r, err)
		return
	}
	s.logger.Warn("sync stopped part-way", "created", syncErr.Created, "total", syncErr.Total, "error", err)
	writeJSON(w, statusFor(err), errorBody{
		Error:  err.Error(),
		Kind:   apperr.KindSync,
		Report: &report,
	})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Input("invalid JSON: %v", err)
	}
	return nil
}
