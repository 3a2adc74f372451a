package interfaces

import "context"

// GridRow is one row of the portal's editable hearing grid: a date cell
// zipped with its description cell, both raw input values.
type GridRow struct {
	Date        string `json:"date"`        // m/d/yyyy as rendered by the portal
	Description string `json:"description"` // e.g. "COURT DATE 3.15.22"
}

// PortalDriver abstracts the browser session against the CaseLink portal.
// Implementations own login, form search and frame access; all waits on the
// portal's asynchronously-populated frames happen behind this interface.
type PortalDriver interface {
	// Login authenticates the browser session against the portal
	Login(ctx context.Context) error

	// SearchCase fills the docket search form and submits it, leaving the
	// browser positioned on the case's detail frames. Transient
	// not-interactable states are retried internally with bounded waits.
	SearchCase(ctx context.Context, docketID string) error

	// PostbackHTML returns the full outer markup of the postback frame's
	// document root, as currently rendered.
	PostbackHTML(ctx context.Context) (string, error)

	// GridRows waits (bounded) for the hearing grid's date and description
	// cells to become visible, then returns them zipped row by row.
	GridRows(ctx context.Context) ([]GridRow, error)

	// Close tears down the browser session
	Close() error
}
