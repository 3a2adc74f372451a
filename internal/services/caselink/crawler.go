package caselink

import (
	"context"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/tenantwatch/caselink/internal/common"
	"github.com/tenantwatch/caselink/internal/interfaces"
)

// Crawler iterates a queue of docket ids through one continuous browser
// session, re-authenticating before each case. A failure on any single case
// never aborts the batch: it is logged, persisted on the warrant and the
// batch moves on.
type Crawler struct {
	warrants interfaces.WarrantStorage
	engine   *Engine
	cfg      *common.Config
	logger   arbor.ILogger
}

// CaseResult is the per-case outcome of a bulk crawl
type CaseResult struct {
	DocketID         string
	CreatedDocuments int
	SeenDocuments    int
	HearingsRecorded int
	Err              error
}

// NewCrawler creates a bulk crawl scheduler over the given discovery engine
func NewCrawler(warrants interfaces.WarrantStorage, engine *Engine, cfg *common.Config, logger arbor.ILogger) *Crawler {
	return &Crawler{
		warrants: warrants,
		engine:   engine,
		cfg:      cfg,
		logger:   logger,
	}
}

// UpdatePendingWarrants crawls every PENDING warrant whose last
// pleading-document check is missing or older than the staleness cutoff,
// most recently filed first.
func (c *Crawler) UpdatePendingWarrants(ctx context.Context) ([]CaseResult, error) {
	cutoff := time.Now().AddDate(0, 0, -c.cfg.Crawler.StaleAfterDays)

	docketIDs, err := c.warrants.DueDocketIDs(ctx, cutoff)
	if err != nil {
		return nil, err
	}
	if len(docketIDs) == 0 {
		c.logger.Info().Msg("No warrants due for a pleading document check")
		return nil, nil
	}

	var results []CaseResult
	err = RunWithBrowser(ctx, c.cfg, c.logger, func(driver interfaces.PortalDriver) error {
		results = c.BulkImportDocuments(ctx, driver, docketIDs)
		return nil
	})
	return results, err
}

// BulkImportDocuments processes the docket ids sequentially on the given
// session. The last captured postback markup is carried across cases so a
// failure before any capture still persists whatever diagnostics exist.
func (c *Crawler) BulkImportDocuments(ctx context.Context, driver interfaces.PortalDriver, docketIDs []string) []CaseResult {
	c.logger.Info().Int("count", len(docketIDs)).Msg("Checking dockets for pleading documents")

	var lastHTML string
	results := make([]CaseResult, 0, len(docketIDs))

	for _, docketID := range docketIDs {
		if ctx.Err() != nil {
			break
		}

		result := c.importCase(ctx, driver, docketID, &lastHTML)
		results = append(results, result)

		if result.Err == nil {
			continue
		}

		c.logger.Warn().
			Str("docket_id", docketID).
			Err(result.Err).
			Msg("Failed to gather documents for docket")

		if err := c.warrants.RecordCheckFailure(ctx, docketID, time.Now(), lastHTML); err != nil {
			c.logger.Error().
				Str("docket_id", docketID).
				Err(err).
				Msg("Failed to persist check failure")
		}
	}

	return results
}

// importCase runs login, search and discovery for one docket id, converting
// any failure into the result's Err rather than propagating it.
func (c *Crawler) importCase(ctx context.Context, driver interfaces.PortalDriver, docketID string, lastHTML *string) CaseResult {
	result := CaseResult{DocketID: docketID}

	// The portal session may expire between searches; authenticate fresh
	// before every case.
	if err := driver.Login(ctx); err != nil {
		result.Err = err
		return result
	}

	if err := driver.SearchCase(ctx, docketID); err != nil {
		result.Err = err
		return result
	}

	discovery, err := c.engine.ImportFromCasePage(ctx, driver, docketID)
	if discovery != nil {
		if discovery.RawHTML != "" {
			*lastHTML = discovery.RawHTML
		}
		result.CreatedDocuments = discovery.CreatedDocuments
		result.SeenDocuments = discovery.SeenDocuments
		result.HearingsRecorded = discovery.HearingsRecorded
	}
	result.Err = err
	return result
}
