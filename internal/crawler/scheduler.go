package crawler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/leadscout/internal/model"
)

// SchedulerOptions configures the crawl scheduler.
type SchedulerOptions struct {
	Delay         time.Duration // politeness pause after each fetch
	MaxConcurrent int           // hard ceiling on in-flight fetches
}

// Scheduler runs batches of fetches with a concurrency ceiling and a
// per-slot politeness delay: after a worker's fetch completes, the slot
// stays occupied for Delay before it can pick up new work.
type Scheduler struct {
	fetcher Fetcher
	delay   time.Duration
	limit   int
}

// NewScheduler creates a Scheduler around the given fetcher.
func NewScheduler(fetcher Fetcher, opts SchedulerOptions) *Scheduler {
	if opts.Delay == 0 {
		opts.Delay = time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 5
	}
	return &Scheduler{
		fetcher: fetcher,
		delay:   opts.Delay,
		limit:   opts.MaxConcurrent,
	}
}

// CrawlMany fetches all URLs and returns one outcome per URL in
// completion order, not submission order. Individual failures never
// abort the batch.
func (s *Scheduler) CrawlMany(ctx context.Context, urls []string) []model.CrawlOutcome {
	var (
		mu       sync.Mutex
		outcomes []model.CrawlOutcome
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for _, u := range urls {
		u := u
		g.Go(func() error {
			outcome := s.fetcher.Fetch(gCtx, u)

			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()

			if !outcome.Success {
				zap.L().Debug("crawler: fetch recorded as failure",
					zap.String("url", u),
					zap.String("error", outcome.Error),
				)
			}

			// Hold the worker slot for the politeness delay before it
			// becomes eligible for the next URL.
			s.sleep(gCtx)
			return nil
		})
	}

	_ = g.Wait()

	zap.L().Info("crawler: batch complete",
		zap.Int("requested", len(urls)),
		zap.Int("fetched", countSuccesses(outcomes)),
	)

	return outcomes
}

func (s *Scheduler) sleep(ctx context.Context) {
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func countSuccesses(outcomes []model.CrawlOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Success {
			n++
		}
	}
	return n
}
