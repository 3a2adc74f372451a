package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/tenantwatch/caselink/internal/interfaces"
	"github.com/tenantwatch/caselink/internal/models"
)

// DocumentStorage implements interfaces.DocumentStorage
type DocumentStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewDocumentStorage creates a new pleading document storage instance
func NewDocumentStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.DocumentStorage {
	return &DocumentStorage{db: db, logger: logger}
}

// GetOrCreateDocument inserts the (docketID, url) pair when absent. The
// conflict-ignore insert makes repeat discovery of the same filing a no-op.
func (s *DocumentStorage) GetOrCreateDocument(ctx context.Context, docketID, url string) (*models.PleadingDocument, bool, error) {
	now := timeToDB(time.Now())
	res, err := s.db.db.ExecContext(ctx, `
		INSERT INTO pleading_documents (docket_id, url, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(docket_id, url) DO NOTHING`,
		docketID, url, now, now)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert document %s/%s: %w", docketID, url, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	created := affected > 0

	doc, err := s.getDocument(ctx, docketID, url)
	if err != nil {
		return nil, false, err
	}
	return doc, created, nil
}

func (s *DocumentStorage) getDocument(ctx context.Context, docketID, url string) (*models.PleadingDocument, error) {
	row := s.db.db.QueryRowContext(ctx, `
		SELECT docket_id, url, text, kind, created_at, updated_at
		FROM pleading_documents WHERE docket_id = ? AND url = ?`, docketID, url)
	doc, err := scanDocumentRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", docketID, url, err)
	}
	return doc, nil
}

func (s *DocumentStorage) SetDocumentText(ctx context.Context, docketID, url string, text string, kind *string) error {
	res, err := s.db.db.ExecContext(ctx, `
		UPDATE pleading_documents SET text = ?, kind = ?, updated_at = ?
		WHERE docket_id = ? AND url = ?`,
		text, strPtrToDB(kind), timeToDB(time.Now()), docketID, url)
	if err != nil {
		return fmt.Errorf("failed to set text for %s/%s: %w", docketID, url, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no document found for %s/%s", docketID, url)
	}
	return nil
}

// DocumentsWithoutText is the extraction queue: text is null until a
// successful extraction or the failure sentinel is written.
func (s *DocumentStorage) DocumentsWithoutText(ctx context.Context) ([]*models.PleadingDocument, error) {
	return s.queryDocuments(ctx, `
		SELECT docket_id, url, text, kind, created_at, updated_at
		FROM pleading_documents WHERE text IS NULL
		ORDER BY created_at`)
}

// JudgmentDocuments is the reconciliation queue: every classified judgment
// with text, reprocessed each run.
func (s *DocumentStorage) JudgmentDocuments(ctx context.Context) ([]*models.PleadingDocument, error) {
	return s.queryDocuments(ctx, `
		SELECT docket_id, url, text, kind, created_at, updated_at
		FROM pleading_documents
		WHERE kind = ? AND text IS NOT NULL
		ORDER BY created_at`, models.DocumentKindJudgment)
}

func (s *DocumentStorage) queryDocuments(ctx context.Context, query string, args ...any) ([]*models.PleadingDocument, error) {
	rows, err := s.db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.PleadingDocument
	for rows.Next() {
		doc, err := scanDocumentRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func scanDocumentRow(scan func(...any) error) (*models.PleadingDocument, error) {
	var d models.PleadingDocument
	var text, kind sql.NullString
	var createdAt, updatedAt string

	if err := scan(&d.DocketID, &d.URL, &text, &kind, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	d.Text = strPtrFromDB(text)
	d.Kind = strPtrFromDB(kind)
	d.CreatedAt = timeFromDB(createdAt)
	d.UpdatedAt = timeFromDB(updatedAt)
	return &d, nil
}
