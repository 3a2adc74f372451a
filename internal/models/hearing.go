package models

import "time"

// UnknownAddress is the sentinel used when the scraper cannot determine a
// physical hearing location.
const UnknownAddress = "unknown"

// Hearing is a scheduled court appearance for a detainer warrant. At most
// one hearing should exist per (docket id, court date) at day granularity;
// that uniqueness is semantic, enforced by lookup-before-create rather than
// a database key.
type Hearing struct {
	ID            int64      `json:"id"`
	DocketID      string     `json:"docket_id"`
	CourtDate     time.Time  `json:"court_date"`
	ContinuanceOn *time.Time `json:"continuance_on,omitempty"`
	Address       string     `json:"address"`
	JudgmentID    *int64     `json:"judgment_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SameCourtDay reports whether the hearing falls on the given calendar day
func (h *Hearing) SameCourtDay(day time.Time) bool {
	y1, m1, d1 := h.CourtDate.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
