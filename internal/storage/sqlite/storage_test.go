package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tenantwatch/caselink/internal/common"
	"github.com/tenantwatch/caselink/internal/models"
	"github.com/ternarybob/arbor"
)

func setupTestDB(t *testing.T) (*SQLiteDB, func()) {
	tempDir := t.TempDir()
	dbPath := tempDir + "/test.db"

	config := &common.SQLiteConfig{
		Path:          dbPath,
		WALMode:       false, // Disable WAL for simpler test cleanup
		BusyTimeoutMS: 5000,
		CacheSizeMB:   16,
	}

	logger := arbor.NewLogger()

	db, err := NewSQLiteDB(logger, config)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}
	return db, cleanup
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestWarrantStorage_DueDocketIDs(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := arbor.NewLogger()
	storage := NewWarrantStorage(db, logger)
	ctx := context.Background()

	now := time.Now()
	cutoff := now.AddDate(0, 0, -3)

	warrants := []*models.DetainerWarrant{
		{
			DocketID: "23GT1001",
			FileDate: timePtr(now.AddDate(0, 0, -10)),
			Status:   models.WarrantStatusPending,
			// Never checked
		},
		{
			DocketID:                  "23GT1002",
			FileDate:                  timePtr(now.AddDate(0, 0, -5)),
			Status:                    models.WarrantStatusPending,
			LastPleadingDocumentCheck: timePtr(now.AddDate(0, 0, -7)), // Stale
		},
		{
			DocketID:                  "23GT1003",
			FileDate:                  timePtr(now.AddDate(0, 0, -2)),
			Status:                    models.WarrantStatusPending,
			LastPleadingDocumentCheck: timePtr(now.AddDate(0, 0, -1)), // Fresh
		},
		{
			DocketID: "23GT1004",
			FileDate: timePtr(now.AddDate(0, 0, -1)),
			Status:   models.WarrantStatusClosed,
		},
	}
	for _, w := range warrants {
		require.NoError(t, storage.SaveWarrant(ctx, w))
	}

	due, err := storage.DueDocketIDs(ctx, cutoff)
	require.NoError(t, err)

	// Fresh check and closed warrants are excluded; most recently filed first
	assert.Equal(t, []string{"23GT1002", "23GT1001"}, due)
}

func TestWarrantStorage_RecordCheck(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := arbor.NewLogger()
	storage := NewWarrantStorage(db, logger)
	ctx := context.Background()

	require.NoError(t, storage.SaveWarrant(ctx, &models.DetainerWarrant{
		DocketID: "23GT2001",
		Status:   models.WarrantStatusPending,
	}))

	t.Run("Failure stores raw markup", func(t *testing.T) {
		checkedAt := time.Now()
		err := storage.RecordCheckFailure(ctx, "23GT2001", checkedAt, "<html>mismatch</html>")
		require.NoError(t, err)

		warrant, err := storage.GetWarrant(ctx, "23GT2001")
		require.NoError(t, err)
		require.NotNil(t, warrant)
		assert.False(t, warrant.PleadingDocumentCheckWasSuccessful)
		require.NotNil(t, warrant.PleadingDocumentCheckMismatchedHTML)
		assert.Equal(t, "<html>mismatch</html>", *warrant.PleadingDocumentCheckMismatchedHTML)
		require.NotNil(t, warrant.LastPleadingDocumentCheck)
	})

	t.Run("Success clears prior mismatch", func(t *testing.T) {
		err := storage.RecordCheckSuccess(ctx, "23GT2001", time.Now())
		require.NoError(t, err)

		warrant, err := storage.GetWarrant(ctx, "23GT2001")
		require.NoError(t, err)
		require.NotNil(t, warrant)
		assert.True(t, warrant.PleadingDocumentCheckWasSuccessful)
		assert.Nil(t, warrant.PleadingDocumentCheckMismatchedHTML)
	})

	t.Run("Unknown docket errors", func(t *testing.T) {
		err := storage.RecordCheckSuccess(ctx, "23GT9999", time.Now())
		assert.Error(t, err)
	})
}

func TestDocumentStorage_GetOrCreate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := arbor.NewLogger()
	storage := NewDocumentStorage(db, logger)
	ctx := context.Background()

	url := "https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT3001-1.pdf"

	doc, created, err := storage.GetOrCreateDocument(ctx, "23GT3001", url)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "23GT3001", doc.DocketID)
	assert.Equal(t, url, doc.URL)
	assert.Nil(t, doc.Text)

	// Second call for the same pair must not create another row
	_, created, err = storage.GetOrCreateDocument(ctx, "23GT3001", url)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestDocumentStorage_Queues(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := arbor.NewLogger()
	storage := NewDocumentStorage(db, logger)
	ctx := context.Background()

	urls := []string{
		"https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT4001-1.pdf",
		"https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT4001-2.pdf",
		"https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT4001-3.pdf",
	}
	for _, u := range urls {
		_, _, err := storage.GetOrCreateDocument(ctx, "23GT4001", u)
		require.NoError(t, err)
	}

	kind := models.DocumentKindJudgment
	require.NoError(t, storage.SetDocumentText(ctx, "23GT4001", urls[0], "ORDER judgment text", &kind))
	require.NoError(t, storage.SetDocumentText(ctx, "23GT4001", urls[1], "summons text", nil))

	pending, err := storage.DocumentsWithoutText(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, urls[2], pending[0].URL)

	judgments, err := storage.JudgmentDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, judgments, 1)
	assert.Equal(t, urls[0], judgments[0].URL)
	require.NotNil(t, judgments[0].Text)
	assert.Equal(t, "ORDER judgment text", *judgments[0].Text)
}

func TestHearingStorage_DayLookups(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := arbor.NewLogger()
	storage := NewHearingStorage(db, logger)
	ctx := context.Background()

	courtDate := time.Date(2022, 3, 10, 9, 0, 0, 0, time.UTC)

	hearing, err := storage.CreateHearing(ctx, &models.Hearing{
		DocketID:  "23GT5001",
		CourtDate: courtDate,
	})
	require.NoError(t, err)
	assert.NotZero(t, hearing.ID)
	assert.Equal(t, models.UnknownAddress, hearing.Address)

	t.Run("Same day different time matches", func(t *testing.T) {
		found, err := storage.FindHearingByDay(ctx, "23GT5001", time.Date(2022, 3, 10, 23, 59, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, hearing.ID, found.ID)
	})

	t.Run("Different day misses", func(t *testing.T) {
		found, err := storage.FindHearingByDay(ctx, "23GT5001", courtDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Other docket misses", func(t *testing.T) {
		found, err := storage.FindHearingByDay(ctx, "23GT5002", courtDate)
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("Window includes both bounds", func(t *testing.T) {
		found, err := storage.FindHearingInWindow(ctx, "23GT5001", courtDate.AddDate(0, 0, -3), courtDate)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, hearing.ID, found.ID)

		found, err = storage.FindHearingInWindow(ctx, "23GT5001", courtDate.AddDate(0, 0, 1), courtDate.AddDate(0, 0, 4))
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestHearingStorage_ContinuanceAndJudgmentLink(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := arbor.NewLogger()
	hearings := NewHearingStorage(db, logger)
	judgments := NewJudgmentStorage(db, logger)
	ctx := context.Background()

	courtDate := time.Date(2022, 3, 10, 0, 0, 0, 0, time.UTC)
	hearing, err := hearings.CreateHearing(ctx, &models.Hearing{
		DocketID:  "23GT6001",
		CourtDate: courtDate,
	})
	require.NoError(t, err)

	continuance := time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, hearings.SetContinuance(ctx, hearing.ID, continuance))

	docURL := "https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT6001-1.pdf"
	judgment, err := judgments.UpsertJudgment(ctx, &models.Judgment{
		DocketID:    "23GT6001",
		FileDate:    courtDate,
		DocumentURL: &docURL,
	})
	require.NoError(t, err)
	require.NoError(t, hearings.LinkJudgment(ctx, hearing.ID, judgment.ID))

	all, err := hearings.HearingsForDocket(ctx, "23GT6001")
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].ContinuanceOn)
	assert.True(t, all[0].ContinuanceOn.Equal(continuance))
	require.NotNil(t, all[0].JudgmentID)
	assert.Equal(t, judgment.ID, *all[0].JudgmentID)
}

func TestJudgmentStorage_UpsertByDocumentURL(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := arbor.NewLogger()
	storage := NewJudgmentStorage(db, logger)
	ctx := context.Background()

	docURL := "https://caselinkimages.nashville.gov/PublicViewer/pdf/23GT7001-1.pdf"
	plaintiff := models.InFavorOfPlaintiff

	first, err := storage.UpsertJudgment(ctx, &models.Judgment{
		DocketID:    "23GT7001",
		FileDate:    time.Date(2022, 3, 10, 0, 0, 0, 0, time.UTC),
		InFavorOf:   &plaintiff,
		DocumentURL: &docURL,
	})
	require.NoError(t, err)
	assert.NotZero(t, first.ID)

	// Re-deriving from the same document refreshes the row in place
	fees := 1250.50
	second, err := storage.UpsertJudgment(ctx, &models.Judgment{
		DocketID:         "23GT7001",
		FileDate:         time.Date(2022, 3, 10, 0, 0, 0, 0, time.UTC),
		InFavorOf:        &plaintiff,
		AwardsPossession: true,
		AwardsFees:       &fees,
		DocumentURL:      &docURL,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := storage.GetJudgment(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.AwardsPossession)
	require.NotNil(t, stored.AwardsFees)
	assert.Equal(t, fees, *stored.AwardsFees)

	missing, err := storage.GetJudgment(ctx, 99999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
