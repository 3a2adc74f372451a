package caselink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantwatch/caselink/internal/common"
	"github.com/tenantwatch/caselink/internal/interfaces"
	"github.com/tenantwatch/caselink/internal/models"
	"github.com/tenantwatch/caselink/internal/storage/sqlite"
	"github.com/ternarybob/arbor"
)

// fakeDriver scripts portal responses per docket id
type fakeDriver struct {
	postbackPages map[string]string
	gridPages     map[string][]interfaces.GridRow
	searchErrs    map[string]error

	currentDocket string
	logins        int
	postbackCalls int
}

func (d *fakeDriver) Login(ctx context.Context) error {
	d.logins++
	return nil
}

func (d *fakeDriver) SearchCase(ctx context.Context, docketID string) error {
	if err := d.searchErrs[docketID]; err != nil {
		return err
	}
	d.currentDocket = docketID
	return nil
}

func (d *fakeDriver) PostbackHTML(ctx context.Context) (string, error) {
	d.postbackCalls++
	return d.postbackPages[d.currentDocket], nil
}

func (d *fakeDriver) GridRows(ctx context.Context) ([]interfaces.GridRow, error) {
	return d.gridPages[d.currentDocket], nil
}

func (d *fakeDriver) Close() error { return nil }

func testConfig() *common.Config {
	cfg := common.DefaultConfig()
	cfg.Crawler.RetryDelay = "1ms"
	return cfg
}

func setupEngine(t *testing.T) (*Engine, *sqlite.Manager, func()) {
	config := testConfig()
	config.Storage.SQLite.Path = t.TempDir() + "/test.db"
	config.Storage.SQLite.WALMode = false

	logger := arbor.NewLogger()
	store, err := sqlite.NewManager(logger, &config.Storage.SQLite)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	engine := NewEngine(store.Warrants(), store.Documents(), store.Hearings(), config, logger)
	return engine, store, func() { store.Close() }
}

func savePendingWarrant(t *testing.T, store *sqlite.Manager, docketID string) {
	t.Helper()
	err := store.Warrants().SaveWarrant(context.Background(), &models.DetainerWarrant{
		DocketID: docketID,
		Status:   models.WarrantStatusPending,
	})
	require.NoError(t, err)
}

// postbackWithDocuments builds markup the way the portal's script blob
// renders its document list: ý-delimited URLs inside a quoted array element.
func postbackWithDocuments(urls ...string) string {
	blob := `<html><script>var rows = ["23GT0001", "ý`
	for _, u := range urls {
		blob += u + `ý`
	}
	return blob + `"];</script></html>`
}

func TestEngine_ImportFromCasePage(t *testing.T) {
	engine, store, cleanup := setupEngine(t)
	defer cleanup()
	ctx := context.Background()

	savePendingWarrant(t, store, "23GT0001")

	urls := []string{
		"https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT0001-1.pdf",
		"https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT0001-2.pdf",
	}
	driver := &fakeDriver{
		postbackPages: map[string]string{"23GT0001": postbackWithDocuments(urls...)},
		gridPages: map[string][]interfaces.GridRow{
			"23GT0001": {
				{Date: "03/10/2022", Description: "COURT DATE CONTINUANCE 3.15.22"},
				{Date: "3/22/2022", Description: "COURT DATE 3.22.22"},
				{Date: "3/1/2022", Description: "DETAINER WARRANT FILED"},
			},
		},
	}
	require.NoError(t, driver.SearchCase(ctx, "23GT0001"))

	result, err := engine.ImportFromCasePage(ctx, driver, "23GT0001")
	require.NoError(t, err)
	assert.Equal(t, 2, result.CreatedDocuments)
	assert.Equal(t, 0, result.SeenDocuments)
	assert.Equal(t, 2, result.HearingsRecorded)

	warrant, err := store.Warrants().GetWarrant(ctx, "23GT0001")
	require.NoError(t, err)
	assert.True(t, warrant.PleadingDocumentCheckWasSuccessful)
	require.NotNil(t, warrant.LastPleadingDocumentCheck)

	hearings, err := store.Hearings().HearingsForDocket(ctx, "23GT0001")
	require.NoError(t, err)
	require.Len(t, hearings, 2)

	// The continuance row's court date comes from the grid date cell and the
	// continued-to date from the description.
	continued, err := store.Hearings().FindHearingByDay(ctx, "23GT0001", time.Date(2022, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, continued)
	require.NotNil(t, continued.ContinuanceOn)
	assert.True(t, continued.SameCourtDay(time.Date(2022, 3, 10, 0, 0, 0, 0, time.UTC)))
	y, m, d := continued.ContinuanceOn.Date()
	assert.Equal(t, [3]int{2022, 3, 15}, [3]int{y, int(m), d})

	plain, err := store.Hearings().FindHearingByDay(ctx, "23GT0001", time.Date(2022, 3, 22, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, plain)
	assert.Nil(t, plain.ContinuanceOn)
	assert.Equal(t, models.UnknownAddress, plain.Address)
}

func TestEngine_ImportIsIdempotent(t *testing.T) {
	engine, store, cleanup := setupEngine(t)
	defer cleanup()
	ctx := context.Background()

	savePendingWarrant(t, store, "23GT0002")

	driver := &fakeDriver{
		postbackPages: map[string]string{
			"23GT0002": postbackWithDocuments("https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT0002-1.pdf"),
		},
		gridPages: map[string][]interfaces.GridRow{
			"23GT0002": {
				{Date: "3/10/2022", Description: "COURT DATE 3.10.22"},
			},
		},
	}
	require.NoError(t, driver.SearchCase(ctx, "23GT0002"))

	first, err := engine.ImportFromCasePage(ctx, driver, "23GT0002")
	require.NoError(t, err)
	assert.Equal(t, 1, first.CreatedDocuments)

	second, err := engine.ImportFromCasePage(ctx, driver, "23GT0002")
	require.NoError(t, err)
	assert.Equal(t, 0, second.CreatedDocuments)
	assert.Equal(t, 1, second.SeenDocuments)

	hearings, err := store.Hearings().HearingsForDocket(ctx, "23GT0002")
	require.NoError(t, err)
	assert.Len(t, hearings, 1)
}

func TestEngine_ContinuanceMergesIntoExistingHearing(t *testing.T) {
	engine, store, cleanup := setupEngine(t)
	defer cleanup()
	ctx := context.Background()

	savePendingWarrant(t, store, "23GT0003")

	driver := &fakeDriver{
		postbackPages: map[string]string{
			"23GT0003": postbackWithDocuments("https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT0003-1.pdf"),
		},
		gridPages: map[string][]interfaces.GridRow{
			"23GT0003": {
				{Date: "3/10/2022", Description: "COURT DATE 3.10.22"},
			},
		},
	}
	require.NoError(t, driver.SearchCase(ctx, "23GT0003"))

	_, err := engine.ImportFromCasePage(ctx, driver, "23GT0003")
	require.NoError(t, err)

	// The case gets continued: the grid now shows a continuance row for the
	// same court day. The existing hearing gains the date, no new row.
	driver.gridPages["23GT0003"] = []interfaces.GridRow{
		{Date: "3/10/2022", Description: "COURT DATE CONTINUANCE 3.15.22"},
	}

	_, err = engine.ImportFromCasePage(ctx, driver, "23GT0003")
	require.NoError(t, err)

	hearings, err := store.Hearings().HearingsForDocket(ctx, "23GT0003")
	require.NoError(t, err)
	require.Len(t, hearings, 1)
	require.NotNil(t, hearings[0].ContinuanceOn)
	y, m, d := hearings[0].ContinuanceOn.Date()
	assert.Equal(t, [3]int{2022, 3, 15}, [3]int{y, int(m), d})
}

func TestEngine_DocumentListNotFound(t *testing.T) {
	engine, store, cleanup := setupEngine(t)
	defer cleanup()
	ctx := context.Background()

	savePendingWarrant(t, store, "23GT0004")

	driver := &fakeDriver{
		postbackPages: map[string]string{"23GT0004": "<html><body>session expired</body></html>"},
	}
	require.NoError(t, driver.SearchCase(ctx, "23GT0004"))

	result, err := engine.ImportFromCasePage(ctx, driver, "23GT0004")
	require.ErrorIs(t, err, ErrDocumentListNotFound)

	// The captured markup survives for triage and every attempt was spent
	assert.Contains(t, result.RawHTML, "session expired")
	assert.Equal(t, testConfig().Crawler.PostbackAttempts, driver.postbackCalls)

	// The warrant is not stamped successful
	warrant, err := store.Warrants().GetWarrant(ctx, "23GT0004")
	require.NoError(t, err)
	assert.False(t, warrant.PleadingDocumentCheckWasSuccessful)
	assert.Nil(t, warrant.LastPleadingDocumentCheck)
}
