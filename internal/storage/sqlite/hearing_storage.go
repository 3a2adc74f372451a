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

// HearingStorage implements interfaces.HearingStorage
type HearingStorage struct {
	db     *SQLiteDB
	logger arbor.ILogger
}

// NewHearingStorage creates a new hearing storage instance
func NewHearingStorage(db *SQLiteDB, logger arbor.ILogger) interfaces.HearingStorage {
	return &HearingStorage{db: db, logger: logger}
}

const hearingColumns = `id, docket_id, court_date, continuance_on, address, judgment_id, created_at, updated_at`

// FindHearingByDay compares court dates at day granularity; the grid renders
// dates without times, so anything finer would never match.
func (s *HearingStorage) FindHearingByDay(ctx context.Context, docketID string, day time.Time) (*models.Hearing, error) {
	row := s.db.db.QueryRowContext(ctx, `
		SELECT `+hearingColumns+` FROM hearings
		WHERE docket_id = ? AND date(court_date) = ?
		ORDER BY id LIMIT 1`, docketID, dayString(day))
	return scanHearingMaybe(row.Scan)
}

func (s *HearingStorage) FindHearingInWindow(ctx context.Context, docketID string, from, to time.Time) (*models.Hearing, error) {
	row := s.db.db.QueryRowContext(ctx, `
		SELECT `+hearingColumns+` FROM hearings
		WHERE docket_id = ? AND date(court_date) >= ? AND date(court_date) <= ?
		ORDER BY id LIMIT 1`, docketID, dayString(from), dayString(to))
	return scanHearingMaybe(row.Scan)
}

func (s *HearingStorage) CreateHearing(ctx context.Context, hearing *models.Hearing) (*models.Hearing, error) {
	now := time.Now()
	hearing.CreatedAt = now
	hearing.UpdatedAt = now
	if hearing.Address == "" {
		hearing.Address = models.UnknownAddress
	}

	res, err := s.db.db.ExecContext(ctx, `
		INSERT INTO hearings (docket_id, court_date, continuance_on, address, judgment_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		hearing.DocketID,
		timeToDB(hearing.CourtDate),
		timePtrToDB(hearing.ContinuanceOn),
		hearing.Address,
		int64PtrToDB(hearing.JudgmentID),
		timeToDB(hearing.CreatedAt),
		timeToDB(hearing.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create hearing for %s: %w", hearing.DocketID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	hearing.ID = id

	s.logger.Debug().
		Str("docket_id", hearing.DocketID).
		Str("court_date", dayString(hearing.CourtDate)).
		Int64("hearing_id", id).
		Msg("Created hearing")
	return hearing, nil
}

func (s *HearingStorage) SetContinuance(ctx context.Context, hearingID int64, continuanceOn time.Time) error {
	_, err := s.db.db.ExecContext(ctx, `
		UPDATE hearings SET continuance_on = ?, updated_at = ? WHERE id = ?`,
		timeToDB(continuanceOn), timeToDB(time.Now()), hearingID)
	if err != nil {
		return fmt.Errorf("failed to set continuance on hearing %d: %w", hearingID, err)
	}
	return nil
}

func (s *HearingStorage) LinkJudgment(ctx context.Context, hearingID, judgmentID int64) error {
	_, err := s.db.db.ExecContext(ctx, `
		UPDATE hearings SET judgment_id = ?, updated_at = ? WHERE id = ?`,
		judgmentID, timeToDB(time.Now()), hearingID)
	if err != nil {
		return fmt.Errorf("failed to link judgment %d to hearing %d: %w", judgmentID, hearingID, err)
	}
	return nil
}

func (s *HearingStorage) HearingsForDocket(ctx context.Context, docketID string) ([]*models.Hearing, error) {
	rows, err := s.db.db.QueryContext(ctx, `
		SELECT `+hearingColumns+` FROM hearings WHERE docket_id = ? ORDER BY court_date`, docketID)
	if err != nil {
		return nil, fmt.Errorf("failed to query hearings for %s: %w", docketID, err)
	}
	defer rows.Close()

	var hearings []*models.Hearing
	for rows.Next() {
		h, err := scanHearing(rows.Scan)
		if err != nil {
			return nil, err
		}
		hearings = append(hearings, h)
	}
	return hearings, rows.Err()
}

func scanHearingMaybe(scan func(...any) error) (*models.Hearing, error) {
	h, err := scanHearing(scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan hearing: %w", err)
	}
	return h, nil
}

func scanHearing(scan func(...any) error) (*models.Hearing, error) {
	var h models.Hearing
	var continuance sql.NullString
	var judgmentID sql.NullInt64
	var courtDate, createdAt, updatedAt string

	err := scan(&h.ID, &h.DocketID, &courtDate, &continuance, &h.Address,
		&judgmentID, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	h.CourtDate = timeFromDB(courtDate)
	h.ContinuanceOn = timePtrFromDB(continuance)
	if judgmentID.Valid {
		h.JudgmentID = &judgmentID.Int64
	}
	h.CreatedAt = timeFromDB(createdAt)
	h.UpdatedAt = timeFromDB(updatedAt)
	return &h, nil
}

func int64PtrToDB(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
