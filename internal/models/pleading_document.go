package models

import "time"

const (
	// DocumentKindJudgment marks a pleading document classified as a judgment order
	DocumentKindJudgment = "JUDGMENT"

	// FailedToParseSentinel is persisted as the document text when fetch or
	// extraction fails, so the null-text queue never selects it again.
	FailedToParseSentinel = "FAILED_TO_PARSE_JUDGMENT"
)

// PleadingDocument is a court-filed PDF discovered on a case's detail page,
// keyed by (docket id, source URL). Text and Kind stay null until the
// extraction stage has processed the document.
type PleadingDocument struct {
	DocketID string  `json:"docket_id"`
	URL      string  `json:"url"`
	Text     *string `json:"text,omitempty"`
	Kind     *string `json:"kind,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsJudgment reports whether the document has been classified as a judgment
func (d *PleadingDocument) IsJudgment() bool {
	return d.Kind != nil && *d.Kind == DocumentKindJudgment
}

// HasText reports whether extraction has produced text for this document
func (d *PleadingDocument) HasText() bool {
	return d.Text != nil
}
