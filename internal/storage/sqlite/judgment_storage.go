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

// JudgmentStorage implements interfaces.JudgmentStorage
type JudgmentStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewJudgmentStorage creates a new judgment storage instance
func NewJudgmentStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.JudgmentStorage {
	return &JudgmentStorage{db: db, logger: logger}
}

// UpsertJudgment keys on the source document URL so re-running
// reconciliation refreshes the same judgment instead of duplicating it.
func (s *JudgmentStorage) UpsertJudgment(ctx context.Context, judgment *models.Judgment) (*models.Judgment, error) {
	now := time.Now()
	if judgment.CreatedAt.IsZero() {
		judgment.CreatedAt = now
	}
	judgment.UpdatedAt = now

	if judgment.DocumentURL != nil {
		if existing, err := s.getByDocumentURL(ctx, *judgment.DocumentURL); err != nil {
			return nil, err
		} else if existing != nil {
			judgment.ID = existing.ID
			judgment.CreatedAt = existing.CreatedAt
			return judgment, s.update(ctx, judgment)
		}
	}

	res, err := s.db.db.ExecContext(ctx, `
		INSERT INTO judgments (
			docket_id, file_date, in_favor_of, awards_possession, awards_fees,
			entered_by, interest, dismissal_basis, notes, document_url,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		judgment.DocketID,
		timeToDB(judgment.FileDate),
		strPtrToDB(judgment.InFavorOf),
		boolToDB(judgment.AwardsPossession),
		floatPtrToDB(judgment.AwardsFees),
		strPtrToDB(judgment.EnteredBy),
		boolToDB(judgment.Interest),
		strPtrToDB(judgment.DismissalBasis),
		strPtrToDB(judgment.Notes),
		strPtrToDB(judgment.DocumentURL),
		timeToDB(judgment.CreatedAt),
		timeToDB(judgment.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert judgment for %s: %w", judgment.DocketID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	judgment.ID = id
	return judgment, nil
}

func (s *JudgmentStorage) update(ctx context.Context, judgment *models.Judgment) error {
	_, err := s.db.db.ExecContext(ctx, `
		UPDATE judgments SET
			docket_id = ?, file_date = ?, in_favor_of = ?, awards_possession = ?,
			awards_fees = ?, entered_by = ?, interest = ?, dismissal_basis = ?,
			notes = ?, updated_at = ?
		WHERE id = ?`,
		judgment.DocketID,
		timeToDB(judgment.FileDate),
		strPtrToDB(judgment.InFavorOf),
		boolToDB(judgment.AwardsPossession),
		floatPtrToDB(judgment.AwardsFees),
		strPtrToDB(judgment.EnteredBy),
		boolToDB(judgment.Interest),
		strPtrToDB(judgment.DismissalBasis),
		strPtrToDB(judgment.Notes),
		timeToDB(judgment.UpdatedAt),
		judgment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update judgment %d: %w", judgment.ID, err)
	}
	return nil
}

func (s *JudgmentStorage) GetJudgment(ctx context.Context, id int64) (*models.Judgment, error) {
	row := s.db.db.QueryRowContext(ctx, judgmentSelect+` WHERE id = ?`, id)
	j, err := scanJudgment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get judgment %d: %w", id, err)
	}
	return j, nil
}

func (s *JudgmentStorage) getByDocumentURL(ctx context.Context, url string) (*models.Judgment, error) {
	row := s.db.db.QueryRowContext(ctx, judgmentSelect+` WHERE document_url = ?`, url)
	j, err := scanJudgment(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get judgment for url %s: %w", url, err)
	}
	return j, nil
}

const judgmentSelect = `
	SELECT id, docket_id, file_date, in_favor_of, awards_possession,
	       awards_fees, entered_by, interest, dismissal_basis, notes,
	       document_url, created_at, updated_at
	FROM judgments`

func scanJudgment(scan func(...any) error) (*models.Judgment, error) {
	var j models.Judgment
	var fileDate, createdAt, updatedAt string
	var inFavorOf, enteredBy, dismissalBasis, notes, documentURL sql.NullString
	var awardsFees sql.NullFloat64
	var possession, interest int

	err := scan(&j.ID, &j.DocketID, &fileDate, &inFavorOf, &possession,
		&awardsFees, &enteredBy, &interest, &dismissalBasis, &notes,
		&documentURL, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	j.FileDate = timeFromDB(fileDate)
	j.InFavorOf = strPtrFromDB(inFavorOf)
	j.AwardsPossession = possession != 0
	if awardsFees.Valid {
		j.AwardsFees = &awardsFees.Float64
	}
	j.EnteredBy = strPtrFromDB(enteredBy)
	j.Interest = interest != 0
	j.DismissalBasis = strPtrFromDB(dismissalBasis)
	j.Notes = strPtrFromDB(notes)
	j.DocumentURL = strPtrFromDB(documentURL)
	j.CreatedAt = timeFromDB(createdAt)
	j.UpdatedAt = timeFromDB(updatedAt)
	return &j, nil
}

func floatPtrToDB(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
