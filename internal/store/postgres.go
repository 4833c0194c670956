package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadscout/internal/db"
	"github.com/sells-group/leadscout/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS batches (
	id            TEXT PRIMARY KEY,
	prompt        TEXT NOT NULL,
	lead_count    INTEGER NOT NULL DEFAULT 0,
	total_scraped INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leads (
	id         TEXT PRIMARY KEY,
	batch_id   TEXT NOT NULL REFERENCES batches(id),
	email      TEXT NOT NULL UNIQUE,
	company    TEXT,
	phone      TEXT,
	location   TEXT,
	website    TEXT NOT NULL,
	address    TEXT,
	lead_score INTEGER NOT NULL,
	verified   BOOLEAN NOT NULL DEFAULT false,
	source     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_leads_batch_id ON leads(batch_id);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_batches_created_at ON batches(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveBatch(ctx context.Context, prompt string, result model.ScrapeResult) (*model.Batch, error) {
	batchID := uuid.New().String()
	now := time.Now().UTC()

	if _, err := s.pool.Exec(ctx,
		`INSERT INTO batches (id, prompt, lead_count, total_scraped, created_at) VALUES ($1, $2, 0, $3, $4)`,
		batchID, prompt, result.TotalScraped, now,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: insert batch")
	}

	inserted := 0
	for _, lead := range result.Leads {
		tag, err := s.pool.Exec(ctx,
			`INSERT INTO leads
			 (id, batch_id, email, company, phone, location, website, address, lead_score, verified, source, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 ON CONFLICT (email) DO NOTHING`,
			uuid.New().String(), batchID, lead.Email, lead.Company, lead.Phone,
			lead.Location, lead.Website, lead.Address, lead.LeadScore,
			lead.Verified, lead.Source, now,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "postgres: insert lead %s", lead.Email)
		}
		inserted += int(tag.RowsAffected())
	}

	if _, err := s.pool.Exec(ctx,
		`UPDATE batches SET lead_count = $1 WHERE id = $2`,
		inserted, batchID,
	); err != nil {
		return nil, eris.Wrap(err, "postgres: update batch count")
	}

	return &model.Batch{
		ID:           batchID,
		Prompt:       prompt,
		LeadCount:    inserted,
		TotalScraped: result.TotalScraped,
		CreatedAt:    now,
	}, nil
}

func (s *PostgresStore) ListBatches(ctx context.Context, limit int) ([]model.Batch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, prompt, lead_count, total_scraped, created_at
		 FROM batches ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list batches")
	}
	defer rows.Close()

	var batches []model.Batch
	for rows.Next() {
		var b model.Batch
		if err := rows.Scan(&b.ID, &b.Prompt, &b.LeadCount, &b.TotalScraped, &b.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan batch")
		}
		batches = append(batches, b)
	}
	return batches, eris.Wrap(rows.Err(), "postgres: list batches iterate")
}

func (s *PostgresStore) GetLeads(ctx context.Context, batchID string) ([]model.Lead, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT email, company, phone, location, website, address, lead_score, verified, source
		 FROM leads WHERE batch_id = $1 ORDER BY created_at`,
		batchID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get leads for batch %s", batchID)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var lead model.Lead
		if err := rows.Scan(&lead.Email, &lead.Company, &lead.Phone, &lead.Location,
			&lead.Website, &lead.Address, &lead.LeadScore, &lead.Verified, &lead.Source); err != nil {
			return nil, eris.Wrap(err, "postgres: scan lead")
		}
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "postgres: get leads iterate")
}
