package types

import (
	"context"

	"greenremote-engine/internal/domain"
)

// Fetcher is one job feed. Fetch returns normalized records only; records
// the provider sent without an apply URL, title, or company are already
// dropped. A Fetch error means the whole source is unavailable for this
// run; the orchestrator records it and moves on to the next source.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.Job, error)
}

// IngestStatus is the last-run snapshot served by /api/ingest/status.
type IngestStatus struct {
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastAdded int    `json:"last_added"`
	Running   bool   `json:"running"`
}
