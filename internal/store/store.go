// Package store persists scraped lead batches. It is the caller-side
// sink for pipeline results; the pipeline itself never touches it.
package store

import (
	"context"

	"github.com/sells-group/leadscout/internal/model"
)

// Store defines the persistence interface for lead batches.
type Store interface {
	// SaveBatch inserts a batch and its leads. Leads whose email is
	// already stored (from any earlier batch) are skipped; the returned
	// batch's LeadCount reflects what was actually inserted.
	SaveBatch(ctx context.Context, prompt string, result model.ScrapeResult) (*model.Batch, error)

	ListBatches(ctx context.Context, limit int) ([]model.Batch, error)
	GetLeads(ctx context.Context, batchID string) ([]model.Lead, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
