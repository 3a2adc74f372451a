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

// WarrantStorage implements interfaces.WarrantStorage
type WarrantStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewWarrantStorage creates a new warrant storage instance
func NewWarrantStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.WarrantStorage {
	return &WarrantStorage{db: db, logger: logger}
}

func (s *WarrantStorage) GetWarrant(ctx context.Context, docketID string) (*models.DetainerWarrant, error) {
	row := s.db.db.QueryRowContext(ctx, `
		SELECT docket_id, file_date, status, last_pleading_document_check,
		       pleading_document_check_mismatched_html,
		       pleading_document_check_was_successful, created_at, updated_at
		FROM detainer_warrants WHERE docket_id = ?`, docketID)

	warrant, err := scanWarrant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get warrant %s: %w", docketID, err)
	}
	return warrant, nil
}

func (s *WarrantStorage) SaveWarrant(ctx context.Context, warrant *models.DetainerWarrant) error {
	now := time.Now()
	if warrant.CreatedAt.IsZero() {
		warrant.CreatedAt = now
	}
	warrant.UpdatedAt = now

	_, err := s.db.db.ExecContext(ctx, `
		INSERT INTO detainer_warrants (
			docket_id, file_date, status, last_pleading_document_check,
			pleading_document_check_mismatched_html,
			pleading_document_check_was_successful, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(docket_id) DO UPDATE SET
			file_date = excluded.file_date,
			status = excluded.status,
			last_pleading_document_check = excluded.last_pleading_document_check,
			pleading_document_check_mismatched_html = excluded.pleading_document_check_mismatched_html,
			pleading_document_check_was_successful = excluded.pleading_document_check_was_successful,
			updated_at = excluded.updated_at`,
		warrant.DocketID,
		timePtrToDB(warrant.FileDate),
		warrant.Status,
		timePtrToDB(warrant.LastPleadingDocumentCheck),
		strPtrToDB(warrant.PleadingDocumentCheckMismatchedHTML),
		boolToDB(warrant.PleadingDocumentCheckWasSuccessful),
		timeToDB(warrant.CreatedAt),
		timeToDB(warrant.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save warrant %s: %w", warrant.DocketID, err)
	}
	return nil
}

// DueDocketIDs reproduces the crawl queue policy: PENDING warrants never
// checked or checked before the cutoff, most recently filed first.
func (s *WarrantStorage) DueDocketIDs(ctx context.Context, checkedBefore time.Time) ([]string, error) {
	rows, err := s.db.db.QueryContext(ctx, `
		SELECT docket_id FROM detainer_warrants
		WHERE status = ?
		  AND (last_pleading_document_check IS NULL
		       OR last_pleading_document_check < ?)
		ORDER BY file_date DESC`,
		models.WarrantStatusPending, timeToDB(checkedBefore))
	if err != nil {
		return nil, fmt.Errorf("failed to query due warrants: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *WarrantStorage) RecordCheckSuccess(ctx context.Context, docketID string, checkedAt time.Time) error {
	return s.recordCheck(ctx, docketID, checkedAt, nil, true)
}

func (s *WarrantStorage) RecordCheckFailure(ctx context.Context, docketID string, checkedAt time.Time, rawHTML string) error {
	var html *string
	if rawHTML != "" {
		html = &rawHTML
	}
	return s.recordCheck(ctx, docketID, checkedAt, html, false)
}

func (s *WarrantStorage) recordCheck(ctx context.Context, docketID string, checkedAt time.Time, mismatchedHTML *string, success bool) error {
	res, err := s.db.db.ExecContext(ctx, `
		UPDATE detainer_warrants SET
			last_pleading_document_check = ?,
			pleading_document_check_mismatched_html = ?,
			pleading_document_check_was_successful = ?,
			updated_at = ?
		WHERE docket_id = ?`,
		timeToDB(checkedAt),
		strPtrToDB(mismatchedHTML),
		boolToDB(success),
		timeToDB(time.Now()),
		docketID,
	)
	if err != nil {
		return fmt.Errorf("failed to record check for %s: %w", docketID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("no warrant found for docket %s", docketID)
	}
	return nil
}

func scanWarrant(row *sql.Row) (*models.DetainerWarrant, error) {
	var w models.DetainerWarrant
	var fileDate, lastCheck, mismatchedHTML sql.NullString
	var success int
	var createdAt, updatedAt string

	err := row.Scan(&w.DocketID, &fileDate, &w.Status, &lastCheck,
		&mismatchedHTML, &success, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	w.FileDate = timePtrFromDB(fileDate)
	w.LastPleadingDocumentCheck = timePtrFromDB(lastCheck)
	w.PleadingDocumentCheckMismatchedHTML = strPtrFromDB(mismatchedHTML)
	w.PleadingDocumentCheckWasSuccessful = success != 0
	w.CreatedAt = timeFromDB(createdAt)
	w.UpdatedAt = timeFromDB(updatedAt)
	return &w, nil
}

func boolToDB(b bool) int {
	if b {
		return 1
	}
	return 0
}
