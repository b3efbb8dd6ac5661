package ingest

import (
	"context"
	"database/sql"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"greenremote-engine/internal/feeds/types"
	"greenremote-engine/internal/store"
	"greenremote-engine/internal/translate"
)

// SourceSummary is one source's outcome within a run. Err is the message
// only; a failed source never fails the run.
type SourceSummary struct {
	Source   string `json:"source"`
	Fetched  int    `json:"fetched"`
	Inserted int    `json:"inserted"`
	Err      string `json:"error,omitempty"`
}

type Summary struct {
	Sources       []SourceSummary `json:"sources"`
	TotalInserted int             `json:"total_inserted"`
}

// RunOnce pulls every fetcher in order, translates what it got, and writes
// rows one by one. Sources run sequentially so one slow or rate-limited
// provider cannot get the others throttled alongside it.
func RunOnce(ctx context.Context, db *sql.DB, tr *translate.Translator, fetchers []types.Fetcher) Summary {
	var sum Summary
	for _, f := range fetchers {
		s := runSource(ctx, db, tr, f)
		sum.Sources = append(sum.Sources, s)
		sum.TotalInserted += s.Inserted
	}
	return sum
}

func runSource(ctx context.Context, db *sql.DB, tr *translate.Translator, f types.Fetcher) SourceSummary {
	s := SourceSummary{Source: f.Name()}

	jobs, err := f.Fetch(ctx)
	if err != nil {
		s.Err = err.Error()
		log.Printf("[ingest] source=%s error: %v", f.Name(), err)
		return s
	}

	// Rows without an apply_url have no identity and can never be deduped.
	kept := jobs[:0]
	for _, j := range jobs {
		if j.ApplyURL == "" {
			continue
		}
		kept = append(kept, j)
	}
	s.Fetched = len(kept)

	if tr != nil {
		translate.EnsureJobsEnglish(ctx, tr, kept)
	}

	for _, j := range kept {
		added, err := store.InsertJobIgnore(ctx, db, j)
		if err != nil {
			log.Printf("[ingest] source=%s insert: %v", f.Name(), err)
			if s.Err == "" {
				s.Err = err.Error()
			}
			continue
		}
		if added {
			s.Inserted++
		}
	}

	log.Printf("[ingest] source=%s fetched=%d inserted=%d", f.Name(), s.Fetched, s.Inserted)
	return s
}

// TranslateBackfill walks every stored row and rewrites the text fields
// that are not English yet. Returns how many rows were updated.
func TranslateBackfill(ctx context.Context, db *sql.DB, tr *translate.Translator) (int, error) {
	rows, err := store.ListTextRows(ctx, db)
	if err != nil {
		return 0, err
	}

	var updated int64
	pace := rate.NewLimiter(rate.Every(350*time.Millisecond), 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(3)

	for _, r := range rows {
		r := r
		g.Go(func() error {
			fields := []*string{&r.Title, &r.Company, &r.Location, &r.Description}
			dirty := false
			for _, f := range fields {
				if *f == "" {
					continue
				}
				if err := pace.Wait(gctx); err != nil {
					return nil
				}
				res := tr.ToEnglish(gctx, *f)
				if res.Outcome == translate.OutcomeTranslated && res.Text != *f {
					*f = res.Text
					dirty = true
				}
			}
			if !dirty {
				return nil
			}
			if err := store.UpdateJobText(gctx, db, r); err != nil {
				log.Printf("[ingest] backfill id=%d: %v", r.ID, err)
				return nil
			}
			atomic.AddInt64(&updated, 1)
			return nil
		})
	}
	_ = g.Wait()
	return int(updated), nil
}
