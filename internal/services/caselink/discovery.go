package caselink

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/tenantwatch/caselink/internal/common"
	"github.com/tenantwatch/caselink/internal/interfaces"
	"github.com/tenantwatch/caselink/internal/models"
)

// The document server URLs arrive embedded in a script blob inside the
// postback frame, delimited by the ý glyph and preceded by a comma. The
// hearing grid descriptions carry dates as m.d.yy while the grid's own date
// cells render m/d/yyyy; the two formats are not interchangeable.
const (
	urlDelimiter    = "ý"
	gridDateLayout  = "1/2/2006"
	matchDateLayout = "1.2.06"
)

var (
	continuancePattern = regexp.MustCompile(`COURT\s+DATE\s+CONTINUANCE\s+(\d+\.\d+\.\d+)`)
	hearingPattern     = regexp.MustCompile(`COURT\s+DATE\s+(\d+\.\d+\.\d+)`)
)

// ErrDocumentListNotFound indicates the postback markup never contained a
// recognizable document list; the captured markup is still returned for
// diagnostics.
var ErrDocumentListNotFound = errors.New("document list not found in postback markup")

// Engine locates per-case pleading documents and hearing rows on an open
// case detail page and records them in the store.
type Engine struct {
	warrants  interfaces.WarrantStorage
	documents interfaces.DocumentStorage
	hearings  interfaces.HearingStorage
	logger    arbor.ILogger

	documentsPattern *regexp.Regexp
	postbackAttempts int
	retryDelay       time.Duration
}

// DiscoveryResult summarizes one case's discovery pass
type DiscoveryResult struct {
	DocketID         string
	CreatedDocuments int
	SeenDocuments    int
	HearingsRecorded int

	// RawHTML is the last postback markup captured, kept for triage when
	// the document list pattern never matched.
	RawHTML string
}

// NewEngine creates a discovery engine bound to the given storages
func NewEngine(warrants interfaces.WarrantStorage, documents interfaces.DocumentStorage, hearings interfaces.HearingStorage, cfg *common.Config, logger arbor.ILogger) *Engine {
	pattern := fmt.Sprintf(`,\s*"%s(https://%s.+?\.pdf)%s*"`,
		urlDelimiter, regexp.QuoteMeta(cfg.Portal.DocumentHost), urlDelimiter)

	return &Engine{
		warrants:         warrants,
		documents:        documents,
		hearings:         hearings,
		logger:           logger,
		documentsPattern: regexp.MustCompile(pattern),
		postbackAttempts: cfg.Crawler.PostbackAttempts,
		retryDelay:       common.Duration(cfg.Crawler.RetryDelay, 500*time.Millisecond),
	}
}

// ImportFromCasePage runs discovery against a browser already positioned
// after a successful case search: records pleading document URLs from the
// postback frame, stamps the warrant's check bookkeeping, then records
// hearings and continuances from the update frame's grid.
//
// On ErrDocumentListNotFound the returned result still carries the captured
// markup; the caller decides how to persist the failure.
func (e *Engine) ImportFromCasePage(ctx context.Context, driver interfaces.PortalDriver, docketID string) (*DiscoveryResult, error) {
	result := &DiscoveryResult{DocketID: docketID}

	// The postback frame may not have finished rendering when we first
	// read it; re-read a few times before giving up.
	var match []string
	for attempt := 0; attempt < e.postbackAttempts; attempt++ {
		html, err := driver.PostbackHTML(ctx)
		if err != nil {
			return result, err
		}
		result.RawHTML = html

		if m := e.documentsPattern.FindStringSubmatch(html); m != nil {
			match = m
			break
		}

		select {
		case <-ctx.Done():
			return result, ctx.Err()
		case <-time.After(e.retryDelay):
		}
	}
	if match == nil {
		return result, ErrDocumentListNotFound
	}

	for _, url := range strings.Split(match[1], urlDelimiter) {
		if url == "" {
			continue
		}
		_, created, err := e.documents.GetOrCreateDocument(ctx, docketID, url)
		if err != nil {
			return result, err
		}
		if created {
			result.CreatedDocuments++
		} else {
			result.SeenDocuments++
		}
	}

	if err := e.warrants.RecordCheckSuccess(ctx, docketID, time.Now()); err != nil {
		return result, err
	}

	e.logger.Info().
		Str("docket_id", docketID).
		Int("created", result.CreatedDocuments).
		Int("seen", result.SeenDocuments).
		Msg("Recorded pleading documents")

	rows, err := driver.GridRows(ctx)
	if err != nil {
		return result, err
	}

	for _, row := range rows {
		recorded, err := e.recordGridRow(ctx, docketID, row)
		if err != nil {
			return result, err
		}
		if recorded {
			result.HearingsRecorded++
		}
	}

	return result, nil
}

// recordGridRow matches one grid row against the continuance and hearing
// grammars. The continuance pattern is checked first: its description also
// matches the plain hearing pattern, so order decides.
func (e *Engine) recordGridRow(ctx context.Context, docketID string, row interfaces.GridRow) (bool, error) {
	if m := continuancePattern.FindStringSubmatch(row.Description); m != nil {
		// The grid row's own date is the hearing's court date; the matched
		// date is when it was continued to.
		courtDate, err := time.Parse(gridDateLayout, row.Date)
		if err != nil {
			return false, fmt.Errorf("bad grid date %q for %s: %w", row.Date, docketID, err)
		}
		continuanceOn, err := time.Parse(matchDateLayout, m[1])
		if err != nil {
			return false, fmt.Errorf("bad continuance date %q for %s: %w", m[1], docketID, err)
		}

		existing, err := e.hearings.FindHearingByDay(ctx, docketID, courtDate)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return true, e.hearings.SetContinuance(ctx, existing.ID, continuanceOn)
		}
		_, err = e.hearings.CreateHearing(ctx, &models.Hearing{
			DocketID:      docketID,
			CourtDate:     courtDate,
			ContinuanceOn: &continuanceOn,
			Address:       models.UnknownAddress,
		})
		return err == nil, err
	}

	if m := hearingPattern.FindStringSubmatch(row.Description); m != nil {
		hearingDate, err := time.Parse(matchDateLayout, m[1])
		if err != nil {
			return false, fmt.Errorf("bad hearing date %q for %s: %w", m[1], docketID, err)
		}

		existing, err := e.hearings.FindHearingByDay(ctx, docketID, hearingDate)
		if err != nil {
			return false, err
		}
		if existing != nil {
			return true, nil
		}
		_, err = e.hearings.CreateHearing(ctx, &models.Hearing{
			DocketID:  docketID,
			CourtDate: hearingDate,
			Address:   models.UnknownAddress,
		})
		return err == nil, err
	}

	return false, nil
}
