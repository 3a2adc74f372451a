package models

import "time"

// Judgment outcome values
const (
	InFavorOfPlaintiff = "PLAINTIFF"
	InFavorOfDefendant = "DEFENDANT"
)

// Judgment captures the outcome recorded in a judgment order, populated from
// the document text by the reconciliation stage and linked to a hearing.
type Judgment struct {
	ID               int64      `json:"id"`
	DocketID         string     `json:"docket_id"`
	FileDate         time.Time  `json:"file_date"`
	InFavorOf        *string    `json:"in_favor_of,omitempty"`
	AwardsPossession bool       `json:"awards_possession"`
	AwardsFees       *float64   `json:"awards_fees,omitempty"`
	EnteredBy        *string    `json:"entered_by,omitempty"`
	Interest         bool       `json:"interest"`
	DismissalBasis   *string    `json:"dismissal_basis,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	DocumentURL      *string    `json:"document_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
