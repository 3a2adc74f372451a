package caselink

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantwatch/caselink/internal/interfaces"
	"github.com/ternarybob/arbor"
)

func TestCrawler_BulkImportContinuesPastFailures(t *testing.T) {
	engine, store, cleanup := setupEngine(t)
	defer cleanup()
	ctx := context.Background()

	logger := arbor.NewLogger()
	crawler := NewCrawler(store.Warrants(), engine, testConfig(), logger)

	for _, docketID := range []string{"23GT0101", "23GT0102", "23GT0103"} {
		savePendingWarrant(t, store, docketID)
	}

	driver := &fakeDriver{
		postbackPages: map[string]string{
			"23GT0101": postbackWithDocuments("https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT0101-1.pdf"),
			"23GT0103": postbackWithDocuments("https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT0103-1.pdf"),
		},
		gridPages: map[string][]interfaces.GridRow{},
		searchErrs: map[string]error{
			"23GT0102": errors.New("docket search field never became interactable"),
		},
	}

	results := crawler.BulkImportDocuments(ctx, driver, []string{"23GT0101", "23GT0102", "23GT0103"})
	require.Len(t, results, 3)

	// One login per case, failed or not
	assert.Equal(t, 3, driver.logins)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, 1, results[0].CreatedDocuments)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, 1, results[2].CreatedDocuments)

	// The failed case records its failure; the batch kept going
	failed, err := store.Warrants().GetWarrant(ctx, "23GT0102")
	require.NoError(t, err)
	assert.False(t, failed.PleadingDocumentCheckWasSuccessful)
	require.NotNil(t, failed.LastPleadingDocumentCheck)

	ok, err := store.Warrants().GetWarrant(ctx, "23GT0103")
	require.NoError(t, err)
	assert.True(t, ok.PleadingDocumentCheckWasSuccessful)
}

func TestCrawler_FailureCarriesLastCapturedMarkup(t *testing.T) {
	engine, store, cleanup := setupEngine(t)
	defer cleanup()
	ctx := context.Background()

	logger := arbor.NewLogger()
	crawler := NewCrawler(store.Warrants(), engine, testConfig(), logger)

	savePendingWarrant(t, store, "23GT0201")

	// Postback never contains a document list, so the raw capture is all
	// the diagnostics there are.
	driver := &fakeDriver{
		postbackPages: map[string]string{"23GT0201": "<html><body>WELCOME TO CASELINK</body></html>"},
	}

	results := crawler.BulkImportDocuments(ctx, driver, []string{"23GT0201"})
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0].Err, ErrDocumentListNotFound)

	warrant, err := store.Warrants().GetWarrant(ctx, "23GT0201")
	require.NoError(t, err)
	require.NotNil(t, warrant.PleadingDocumentCheckMismatchedHTML)
	assert.Contains(t, *warrant.PleadingDocumentCheckMismatchedHTML, "WELCOME TO CASELINK")
}
