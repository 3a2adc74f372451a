package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migrate runs database migrations
func (s *SQLiteDB) migrate() error {
	ctx := context.Background()

	if err := s.createMigrationsTable(ctx); err != nil {
		return err
	}

	migrations := []migration{
		{version: 1, name: "initial_schema", up: migrateV1},
		{version: 2, name: "hearing_judgment_link", up: migrateV2},
	}

	for _, m := range migrations {
		if err := s.runMigration(ctx, m); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
	}

	return nil
}

type migration struct {
	version int
	name    string
	up      func(context.Context, *sql.Tx) error
}

func (s *SQLiteDB) createMigrationsTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *SQLiteDB) runMigration(ctx context.Context, m migration) error {
	var applied int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", m.version).Scan(&applied)
	if err != nil {
		return err
	}
	if applied > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := m.up(ctx, tx); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		m.version, m.name, time.Now().Unix()); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info().Int("version", m.version).Str("name", m.name).Msg("Applied migration")
	return nil
}

// Dates are stored as RFC3339 TEXT so sqlite's date() can compare them at
// day granularity, which the hearing lookups depend on.
func migrateV1(ctx context.Context, tx *sql.Tx) error {
	schema := `
	CREATE TABLE IF NOT EXISTS detainer_warrants (
		docket_id TEXT PRIMARY KEY,
		file_date TEXT,
		status TEXT NOT NULL DEFAULT 'PENDING',
		last_pleading_document_check TEXT,
		pleading_document_check_mismatched_html TEXT,
		pleading_document_check_was_successful INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pleading_documents (
		docket_id TEXT NOT NULL,
		url TEXT NOT NULL,
		text TEXT,
		kind TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (docket_id, url)
	);

	CREATE TABLE IF NOT EXISTS hearings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		docket_id TEXT NOT NULL,
		court_date TEXT NOT NULL,
		continuance_on TEXT,
		address TEXT NOT NULL DEFAULT 'unknown',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS judgments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		docket_id TEXT NOT NULL,
		file_date TEXT NOT NULL,
		in_favor_of TEXT,
		awards_possession INTEGER NOT NULL DEFAULT 0,
		awards_fees REAL,
		entered_by TEXT,
		interest INTEGER NOT NULL DEFAULT 0,
		dismissal_basis TEXT,
		notes TEXT,
		document_url TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_warrants_status_check
		ON detainer_warrants(status, last_pleading_document_check);
	CREATE INDEX IF NOT EXISTS idx_documents_text_null
		ON pleading_documents(docket_id) WHERE text IS NULL;
	CREATE INDEX IF NOT EXISTS idx_hearings_docket ON hearings(docket_id, court_date);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_judgments_document_url
		ON judgments(document_url) WHERE document_url IS NOT NULL;
	`
	_, err := tx.ExecContext(ctx, schema)
	return err
}

func migrateV2(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
	ALTER TABLE hearings ADD COLUMN judgment_id INTEGER REFERENCES judgments(id);
	`)
	return err
}
