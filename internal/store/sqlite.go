package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadscout/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS batches (
	id            TEXT PRIMARY KEY,
	prompt        TEXT NOT NULL,
	lead_count    INTEGER NOT NULL DEFAULT 0,
	total_scraped INTEGER NOT NULL DEFAULT 0,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
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
	verified   INTEGER NOT NULL DEFAULT 0,
	source     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_leads_batch_id ON leads(batch_id);
CREATE INDEX IF NOT EXISTS idx_leads_email ON leads(email);
CREATE INDEX IF NOT EXISTS idx_batches_created_at ON batches(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveBatch(ctx context.Context, prompt string, result model.ScrapeResult) (*model.Batch, error) {
	batchID := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, prompt, lead_count, total_scraped, created_at) VALUES (?, ?, 0, ?, ?)`,
		batchID, prompt, result.TotalScraped, now,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: insert batch")
	}

	inserted := 0
	for _, lead := range result.Leads {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO leads
			 (id, batch_id, email, company, phone, location, website, address, lead_score, verified, source, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), batchID, lead.Email, lead.Company, lead.Phone,
			lead.Location, lead.Website, lead.Address, lead.LeadScore,
			boolToInt(lead.Verified), lead.Source, now,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert lead %s", lead.Email)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: rows affected")
		}
		inserted += int(n)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE batches SET lead_count = ? WHERE id = ?`,
		inserted, batchID,
	); err != nil {
		return nil, eris.Wrap(err, "sqlite: update batch count")
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit")
	}

	return &model.Batch{
		ID:           batchID,
		Prompt:       prompt,
		LeadCount:    inserted,
		TotalScraped: result.TotalScraped,
		CreatedAt:    now,
	}, nil
}

func (s *SQLiteStore) ListBatches(ctx context.Context, limit int) ([]model.Batch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, prompt, lead_count, total_scraped, created_at
		 FROM batches ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list batches")
	}
	defer rows.Close()

	var batches []model.Batch
	for rows.Next() {
		var b model.Batch
		if err := rows.Scan(&b.ID, &b.Prompt, &b.LeadCount, &b.TotalScraped, &b.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan batch")
		}
		batches = append(batches, b)
	}
	return batches, eris.Wrap(rows.Err(), "sqlite: list batches iterate")
}

func (s *SQLiteStore) GetLeads(ctx context.Context, batchID string) ([]model.Lead, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT email, company, phone, location, website, address, lead_score, verified, source
		 FROM leads WHERE batch_id = ? ORDER BY created_at`,
		batchID,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get leads for batch %s", batchID)
	}
	defer rows.Close()

	var leads []model.Lead
	for rows.Next() {
		var (
			lead     model.Lead
			verified int
		)
		if err := rows.Scan(&lead.Email, &lead.Company, &lead.Phone, &lead.Location,
			&lead.Website, &lead.Address, &lead.LeadScore, &verified, &lead.Source); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan lead")
		}
		lead.Verified = verified != 0
		leads = append(leads, lead)
	}
	return leads, eris.Wrap(rows.Err(), "sqlite: get leads iterate")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
