package models

import "time"

// Detainer warrant status values as the court portal reports them
const (
	WarrantStatusPending = "PENDING"
	WarrantStatusClosed  = "CLOSED"
)

// DetainerWarrant represents one eviction court case, keyed by its docket id.
// The pleading-document check bookkeeping is mutated after every crawl
// attempt, success or failure, so operators can triage stale or broken cases
// from the store alone.
type DetainerWarrant struct {
	DocketID string     `json:"docket_id"`
	FileDate *time.Time `json:"file_date,omitempty"`
	Status   string     `json:"status"`

	// Crawl bookkeeping
	LastPleadingDocumentCheck           *time.Time `json:"last_pleading_document_check,omitempty"`
	PleadingDocumentCheckMismatchedHTML *string    `json:"pleading_document_check_mismatched_html,omitempty"`
	PleadingDocumentCheckWasSuccessful  bool       `json:"pleading_document_check_was_successful"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsPending reports whether the warrant is still an open case
func (w *DetainerWarrant) IsPending() bool {
	return w.Status == WarrantStatusPending
}
