package main

import (
	"context"

	"github.com/tenantwatch/caselink/internal/app"
	"github.com/tenantwatch/caselink/internal/interfaces"
	"github.com/tenantwatch/caselink/internal/models"
	"github.com/tenantwatch/caselink/internal/services/caselink"
)

// runCrawl checks the portal for new pleading documents. With no docket ids
// it processes the due queue of pending warrants; with explicit ids it
// registers any unknown dockets as pending warrants and crawls exactly those.
func runCrawl(application *app.App, docketIDs []string) error {
	ctx := context.Background()

	var results []caselink.CaseResult
	var err error

	if len(docketIDs) == 0 {
		results, err = application.Crawler.UpdatePendingWarrants(ctx)
	} else {
		for _, docketID := range docketIDs {
			if saveErr := ensureWarrant(ctx, application, docketID); saveErr != nil {
				return saveErr
			}
		}
		err = caselink.RunWithBrowser(ctx, application.Config, application.Logger, func(driver interfaces.PortalDriver) error {
			results = application.Crawler.BulkImportDocuments(ctx, driver, docketIDs)
			return nil
		})
	}
	if err != nil {
		return err
	}

	created, failed := 0, 0
	for _, result := range results {
		created += result.CreatedDocuments
		if result.Err != nil {
			failed++
		}
	}
	application.Logger.Info().
		Int("cases", len(results)).
		Int("new_documents", created).
		Int("failed", failed).
		Msg("Crawl finished")
	return nil
}

// ensureWarrant upserts a docket id so check bookkeeping has a row to land on
func ensureWarrant(ctx context.Context, application *app.App, docketID string) error {
	warrant, err := application.Store.Warrants().GetWarrant(ctx, docketID)
	if err != nil {
		return err
	}
	if warrant != nil {
		return nil
	}
	return application.Store.Warrants().SaveWarrant(ctx, &models.DetainerWarrant{
		DocketID: docketID,
		Status:   models.WarrantStatusPending,
	})
}
