package calendar

import (
	"context"
	"fmt"

	"github.com/MikeSquared-Agency/syllabi/internal/apperr"
)

// SyncReport describes one batch submission.
type SyncReport struct {
	Total         int            `json:"total"`
	Created       int            `json:"created"`
	Results       []CreatedEvent `json:"results"`
	FailedIndex   int            `json:"failedIndex"`
	FailedSummary string         `json:"failedSummary,omitempty"`
	Message       string         `json:"message,omitempty"`
}

// Failed reports whether the batch stopped on an error.
func (r SyncReport) Failed() bool { return r.FailedIndex >= 0 }

// Skipped is the number of entries never attempted.
func (r SyncReport) Skipped() int {
	if !r.Failed() {
		return 0
	}
	return r.Total - r.FailedIndex - 1
}

// SyncError reports a batch that stopped part-way. Entries before Index are
// committed on the calendar; entries after it were never submitted.
type SyncError struct {
	Created int
	Total   int
	Index   int
	Summary string
	Message string
	Err     error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("added %d of %d events; event %d (%q) failed: %s",
		e.Created, e.Total, e.Index+1, e.Summary, e.Message)
}

func (e *SyncError) Unwrap() error { return e.Err }

func (e *SyncError) ErrorKind() apperr.Kind { return apperr.KindSync }

// SyncAll creates entries one at a time, in order, and stops at the first
// failure. Nothing already created is rolled back.
func (c *Client) SyncAll(ctx context.Context, token string, entries []Entry) (SyncReport, error) {
	report := SyncReport{
		Total:       len(entries),
		Results:     make([]CreatedEvent, 0, len(entries)),
		FailedIndex: -1,
	}
	if len(entries) == 0 {
		return report, nil
	}

	svc, err := c.service(ctx, token)
	if err != nil {
		return report, err
	}

	for i, entry := range entries {
		created, err := c.insert(ctx, svc, entry)
		if err != nil {
			report.FailedIndex = i
			report.FailedSummary = entry.Summary
			report.Message = err.Error()

			c.logger.Error("calendar sync stopped",
				"index", i,
				"summary", entry.Summary,
				"created", report.Created,
				"skipped", report.Skipped(),
				"error", err,
			)
			return report, &SyncError{
				Created: report.Created,
				Total:   report.Total,
				Index:   i,
				Summary: entry.Summary,
				Message: report.Message,
				Err:     err,
			}
		}
		created.Index = i
		report.Results = append(report.Results, created)
		report.Created++
	}

	c.logger.Info("calendar sync complete", "created", report.Created)
	return report, nil
}
