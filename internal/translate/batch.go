package translate

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"greenremote-engine/internal/domain"
)

const maxInFlight = 3

// One shared limiter across workers keeps us well under MyMemory's
// anonymous request ceiling.
var pace = rate.NewLimiter(rate.Every(350*time.Millisecond), 1)

// EnsureJobsEnglish rewrites jobs in place so the user-facing fields are
// English. Fields inside one job go sequentially, jobs run concurrently
// with at most maxInFlight workers. Returns how many jobs changed.
func EnsureJobsEnglish(ctx context.Context, tr *Translator, jobs []domain.Job) int {
	if tr == nil || len(jobs) == 0 {
		return 0
	}

	var changed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)

	for i := range jobs {
		i := i
		g.Go(func() error {
			fields := []*string{
				&jobs[i].Title,
				&jobs[i].Company,
				&jobs[i].Location,
				&jobs[i].Description,
			}
			dirty := false
			for _, f := range fields {
				if *f == "" {
					continue
				}
				if err := pace.Wait(gctx); err != nil {
					return nil
				}
				res := tr.ToEnglish(gctx, *f)
				if res.Outcome == OutcomeTranslated && res.Text != *f {
					*f = res.Text
					dirty = true
				}
			}
			if dirty {
				atomic.AddInt64(&changed, 1)
			}
			return nil
		})
	}
	_ = g.Wait()
	return int(changed)
}
