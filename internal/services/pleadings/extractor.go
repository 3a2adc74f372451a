package pleadings

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/tenantwatch/caselink/internal/common"
	"github.com/tenantwatch/caselink/internal/interfaces"
	"github.com/tenantwatch/caselink/internal/models"
	"golang.org/x/time/rate"
)

// judgmentMarker is the literal phrase that classifies a pleading document
// as a judgment order. Classification is a substring test, case- and
// whitespace-sensitive; the documents are semi-structured and a parser
// would be fiction.
const judgmentMarker = "Other terms of this Order, if any, are as follows"

// Extractor fetches discovered pleading documents, extracts their text and
// classifies them. Failures are persisted as a sentinel text value so the
// null-text queue never retries a broken document.
type Extractor struct {
	documents interfaces.DocumentStorage
	judgments *JudgmentService
	pdf       interfaces.PDFTextExtractor
	client    *http.Client
	limiter   *rate.Limiter
	logger    arbor.ILogger
}

// NewExtractor creates a text extraction stage over the given storages
func NewExtractor(documents interfaces.DocumentStorage, judgments *JudgmentService, pdf interfaces.PDFTextExtractor, cfg *common.Config, logger arbor.ILogger) *Extractor {
	fetchRate := cfg.Crawler.FetchRate
	if fetchRate <= 0 {
		fetchRate = 1
	}

	return &Extractor{
		documents: documents,
		judgments: judgments,
		pdf:       pdf,
		client: &http.Client{
			Timeout: common.Duration(cfg.Crawler.RequestTimeout, 30*time.Second),
		},
		limiter: rate.NewLimiter(rate.Limit(fetchRate), 1),
		logger:  logger,
	}
}

// ProcessPendingDocuments extracts text for every document still awaiting
// it, one at a time, committing after each.
func (e *Extractor) ProcessPendingDocuments(ctx context.Context) error {
	queue, err := e.documents.DocumentsWithoutText(ctx)
	if err != nil {
		return fmt.Errorf("failed to load extraction queue: %w", err)
	}

	e.logger.Info().Int("count", len(queue)).Msg("Extracting pleading document text")

	for _, doc := range queue {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.ExtractTextFromDocument(ctx, doc)
	}
	return nil
}

// ExtractTextFromDocument fetches, extracts and classifies one document.
// Any failure along the way persists the sentinel text instead; nothing
// propagates to the caller.
func (e *Extractor) ExtractTextFromDocument(ctx context.Context, doc *models.PleadingDocument) {
	text, err := e.fetchAndExtract(ctx, doc.URL)
	if err == nil {
		var kind *string
		if strings.Contains(text, judgmentMarker) {
			k := models.DocumentKindJudgment
			kind = &k

			// Reconcile against hearings before persisting, with the
			// classified text in hand.
			classified := *doc
			classified.Text = &text
			classified.Kind = kind
			err = e.judgments.UpdateJudgmentFromDocument(ctx, &classified)
		}
		if err == nil {
			err = e.documents.SetDocumentText(ctx, doc.DocketID, doc.URL, text, kind)
		}
	}

	if err != nil {
		e.logger.Warn().
			Str("docket_id", doc.DocketID).
			Str("url", doc.URL).
			Err(err).
			Msg("Could not extract text for pleading document")

		if err := e.documents.SetDocumentText(ctx, doc.DocketID, doc.URL, models.FailedToParseSentinel, nil); err != nil {
			e.logger.Error().
				Str("docket_id", doc.DocketID).
				Str("url", doc.URL).
				Err(err).
				Msg("Failed to persist extraction failure sentinel")
		}
	}
}

// fetchAndExtract downloads the PDF and recovers its plain text. Fetches
// against the document host are rate limited; the portal is slow and flaky
// and hammering it helps nobody.
func (e *Extractor) fetchAndExtract(ctx context.Context, url string) (string, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("document fetch returned status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read document body: %w", err)
	}

	text, err := e.pdf.ExtractText(ctx, content)
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}
	return text, nil
}
