package httpapi

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"greenremote-engine/internal/events"
	"greenremote-engine/internal/feeds/types"
	"greenremote-engine/internal/ingest"
)

type IngestHandler struct {
	Hub          *events.Hub
	IngestStatus *atomic.Value // types.IngestStatus
	RunFeeds     func(ctx context.Context, group string) ingest.Summary
	RunTranslate func(ctx context.Context) (updated int, err error)

	// Single-flight gate for ingestion runs. IngestStatus.Running is a
	// display snapshot only; admission goes through a CAS here so two
	// concurrent requests cannot both start a run.
	running *atomic.Bool
}

func (h IngestHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.IngestStatus.Load().(types.IngestStatus)
	writeJSON(w, st)
}

func (h IngestHandler) FetchCore(w http.ResponseWriter, r *http.Request) {
	h.runGroup(w, r, GroupCore)
}

func (h IngestHandler) FetchExtra(w http.ResponseWriter, r *http.Request) {
	h.runGroup(w, r, GroupExtra)
}

// runGroup executes one ingestion pass synchronously. Requests that arrive
// while a run is in flight get a 409 rather than piling up concurrent runs.
func (h IngestHandler) runGroup(w http.ResponseWriter, r *http.Request, group string) {
	if !h.begin(w, r) {
		return
	}
	defer h.running.Store(false)

	sum := h.RunFeeds(r.Context(), group)
	h.record(r, sum)
	writeJSON(w, sum)
}

func (h IngestHandler) ScrapeLinkedIn(w http.ResponseWriter, r *http.Request) {
	if !h.begin(w, r) {
		return
	}
	defer h.running.Store(false)

	sum := h.RunFeeds(r.Context(), GroupLinkedIn)
	h.record(r, sum)

	fetched := 0
	errMsg := ""
	for _, s := range sum.Sources {
		fetched += s.Fetched
		if s.Err != "" && errMsg == "" {
			errMsg = s.Err
		}
	}
	out := map[string]any{"fetched": fetched, "inserted": sum.TotalInserted}
	if errMsg != "" {
		out["error"] = errMsg
	}
	writeJSON(w, out)
}

// begin claims the single-flight gate and marks the status snapshot. A
// false return means the 409 has already been written.
func (h IngestHandler) begin(w http.ResponseWriter, r *http.Request) bool {
	if !h.running.CompareAndSwap(false, true) {
		WriteError(w, r, http.StatusConflict, "ingest_running", "an ingestion run is already in progress")
		return false
	}

	st := h.IngestStatus.Load().(types.IngestStatus)
	h.IngestStatus.Store(types.IngestStatus{
		LastRunAt: time.Now().Format(time.RFC3339),
		Running:   true,
		LastOkAt:  st.LastOkAt,
	})
	return true
}

func (h IngestHandler) record(r *http.Request, sum ingest.Summary) {
	now := time.Now().Format(time.RFC3339)
	next := h.IngestStatus.Load().(types.IngestStatus)
	next.Running = false
	next.LastRunAt = now
	next.LastAdded = sum.TotalInserted
	next.LastError = ""
	for _, s := range sum.Sources {
		if s.Err != "" {
			next.LastError = s.Source + ": " + s.Err
			break
		}
	}
	if next.LastError == "" {
		next.LastOkAt = now
	}
	h.IngestStatus.Store(next)

	// Runs that changed nothing are not worth a UI refresh.
	if sum.TotalInserted > 0 {
		reqID := RequestIDFrom(r.Context())
		h.Hub.Publish(events.MakeEvent(reqID, "jobs_ingested", 1, sum))
	}
}

func (h IngestHandler) TranslateJobs(w http.ResponseWriter, r *http.Request) {
	updated, err := h.RunTranslate(r.Context())
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "storage_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"updated": updated})
}
