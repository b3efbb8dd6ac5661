package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task on a fixed interval until ctx is cancelled. When runNow
// is set the first run starts immediately instead of one interval in.
func Every(ctx context.Context, interval time.Duration, name string, runNow bool, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	if runNow {
		go func() {
			if err := task(ctx); err != nil {
				log.Printf("[%s] error: %v", name, err)
			}
		}()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Printf("[%s] error: %v", name, err)
			}
		}
	}
}
