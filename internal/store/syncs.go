package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/syllabi/internal/calendar"
)

type SyncRun struct {
	ID            uuid.UUID               `json:"id"`
	SessionID     uuid.UUID               `json:"sessionId"`
	Total         int                     `json:"total"`
	Created       int                     `json:"created"`
	FailedIndex   int                     `json:"failedIndex"`
	FailedSummary string                  `json:"failedSummary,omitempty"`
	Message       string                  `json:"message,omitempty"`
	Results       []calendar.CreatedEvent `json:"results"`
	CreatedAt     time.Time               `json:"createdAt"`
}

// RecordSync stores the outcome of one calendar batch.
func (s *Store) RecordSync(ctx context.Context, sessionID uuid.UUID, report calendar.SyncReport) (uuid.UUID, error) {
	results, err := json.Marshal(report.Results)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal results: %w", err)
	}

	id := uuid.New()
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sync_runs (id, session_id, total, created, failed_index, failed_summary, message, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, now())`,
		id, sessionID, report.Total, report.Created, report.FailedIndex, report.FailedSummary, report.Message, string(results),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert sync run: %w", err)
	}
	return id, nil
}

// ListSyncs returns a session's sync runs, oldest first.
func (s *Store) ListSyncs(ctx context.Context, sessionID uuid.UUID) ([]SyncRun, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, total, created, failed_index, failed_summary, message, results, created_at
		FROM sync_runs WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []SyncRun
	for rows.Next() {
		var r SyncRun
		var results []byte
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Total, &r.Created, &r.FailedIndex, &r.FailedSummary, &r.Message, &results, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sync run: %w", err)
		}
		if err := json.Unmarshal(results, &r.Results); err != nil {
			return nil, fmt.Errorf("decode sync results: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
