package interfaces

import (
	"context"
	"time"

	"github.com/tenantwatch/caselink/internal/models"
)

// WarrantStorage persists detainer warrants and their crawl bookkeeping
type WarrantStorage interface {
	// GetWarrant returns the warrant for a docket id, or nil when absent
	GetWarrant(ctx context.Context, docketID string) (*models.DetainerWarrant, error)

	// SaveWarrant inserts or updates a warrant by docket id
	SaveWarrant(ctx context.Context, warrant *models.DetainerWarrant) error

	// DueDocketIDs returns docket ids of PENDING warrants whose last
	// pleading-document check is null or older than the cutoff, ordered by
	// file date descending (most recently filed first).
	DueDocketIDs(ctx context.Context, checkedBefore time.Time) ([]string, error)

	// RecordCheckSuccess stamps a successful pleading-document check: sets
	// the check time, clears the mismatch HTML and marks success.
	RecordCheckSuccess(ctx context.Context, docketID string, checkedAt time.Time) error

	// RecordCheckFailure stamps a failed check with the last captured raw
	// markup (possibly empty) for later triage.
	RecordCheckFailure(ctx context.Context, docketID string, checkedAt time.Time, rawHTML string) error
}

// DocumentStorage persists pleading documents keyed by (docket id, URL)
type DocumentStorage interface {
	// GetOrCreateDocument inserts the (docketID, url) pair if absent.
	// The returned flag is true when a new row was created.
	GetOrCreateDocument(ctx context.Context, docketID, url string) (*models.PleadingDocument, bool, error)

	// SetDocumentText records extraction output: text plus optional
	// classification kind (nil for unclassified documents).
	SetDocumentText(ctx context.Context, docketID, url string, text string, kind *string) error

	// DocumentsWithoutText returns all documents whose text is still null,
	// i.e. the extraction queue.
	DocumentsWithoutText(ctx context.Context) ([]*models.PleadingDocument, error)

	// JudgmentDocuments returns all documents classified as judgments with
	// non-null text, i.e. the reconciliation queue.
	JudgmentDocuments(ctx context.Context) ([]*models.PleadingDocument, error)
}

// HearingStorage persists hearings; uniqueness per (docket id, court day) is
// semantic, so callers look up before creating.
type HearingStorage interface {
	// FindHearingByDay returns the first hearing for the docket whose court
	// date falls on the same calendar day, or nil.
	FindHearingByDay(ctx context.Context, docketID string, day time.Time) (*models.Hearing, error)

	// FindHearingInWindow returns the first hearing for the docket whose
	// court date falls within [from, to] at day granularity, or nil.
	FindHearingInWindow(ctx context.Context, docketID string, from, to time.Time) (*models.Hearing, error)

	// CreateHearing inserts a hearing and returns it with its id assigned
	CreateHearing(ctx context.Context, hearing *models.Hearing) (*models.Hearing, error)

	// SetContinuance records a continuance date on an existing hearing
	SetContinuance(ctx context.Context, hearingID int64, continuanceOn time.Time) error

	// LinkJudgment associates a judgment with a hearing
	LinkJudgment(ctx context.Context, hearingID, judgmentID int64) error

	// HearingsForDocket returns all hearings for a docket id
	HearingsForDocket(ctx context.Context, docketID string) ([]*models.Hearing, error)
}

// JudgmentStorage persists judgments parsed from judgment documents
type JudgmentStorage interface {
	// UpsertJudgment inserts or refreshes the judgment for its source
	// document URL and returns it with its id assigned.
	UpsertJudgment(ctx context.Context, judgment *models.Judgment) (*models.Judgment, error)

	// GetJudgment returns a judgment by id, or nil when absent
	GetJudgment(ctx context.Context, id int64) (*models.Judgment, error)
}
