package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/config"
	"github.com/sells-group/leadscout/internal/crawler"
	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/pipeline"
	"github.com/sells-group/leadscout/internal/score"
	"github.com/sells-group/leadscout/internal/store"
	"github.com/sells-group/leadscout/internal/validate"
	"github.com/sells-group/leadscout/pkg/customsearch"
)

// buildPipeline wires a Pipeline from config.
func buildPipeline(cfg *config.Config) *pipeline.Pipeline {
	search := customsearch.NewClient(cfg.Search.Key, cfg.Search.EngineID,
		customsearch.WithBaseURL(cfg.Search.BaseURL),
		customsearch.WithRateLimit(cfg.Search.RateLimit),
	)

	fetcher := crawler.NewHTTPFetcher(crawler.HTTPOptions{
		Timeout:   time.Duration(cfg.Crawl.TimeoutSecs) * time.Second,
		MaxBodyKB: cfg.Crawl.MaxBodyKB,
	})

	scheduler := crawler.NewScheduler(fetcher, crawler.SchedulerOptions{
		Delay:         time.Duration(cfg.Crawl.DelayMs) * time.Millisecond,
		MaxConcurrent: cfg.Crawl.MaxConcurrent,
	})

	extractor := extract.NewExtractor(cfg.Extract.EmailBlacklist, cfg.Extract.ContactPaths)
	validator := validate.NewValidator(nil, cfg.Validate.DisposableDomains)
	scorer := score.NewScorer(cfg.Score.WebmailDomains)

	return pipeline.New(search, fetcher, scheduler, extractor, validator, scorer,
		pipeline.Options{
			DirectoryHosts:   cfg.Pipeline.DirectoryHosts,
			ContactPageLimit: cfg.Pipeline.ContactPageLimit,
		})
}

// openStore opens the configured lead sink.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite", "":
		st, err := store.NewSQLite(cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
