package pleadings

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/tenantwatch/caselink/internal/interfaces"
	"github.com/tenantwatch/caselink/internal/models"
)

// hearingWindowDays bounds the lookup for an existing hearing: a judgment
// filed on day D belongs to a hearing held within [D-3, D].
const hearingWindowDays = 3

// JudgmentService reconciles classified judgment documents against hearing
// records, merging judgment details without duplicating hearings.
type JudgmentService struct {
	documents interfaces.DocumentStorage
	hearings  interfaces.HearingStorage
	judgments interfaces.JudgmentStorage
	logger    arbor.ILogger
}

// NewJudgmentService creates a fact reconciliation stage
func NewJudgmentService(documents interfaces.DocumentStorage, hearings interfaces.HearingStorage, judgments interfaces.JudgmentStorage, logger arbor.ILogger) *JudgmentService {
	return &JudgmentService{
		documents: documents,
		hearings:  hearings,
		judgments: judgments,
		logger:    logger,
	}
}

// ReconcileAll reprocesses every classified judgment document with text.
// There is deliberately no done-flag: the hearing lookup-or-create is
// date-keyed, so re-running is idempotent.
func (s *JudgmentService) ReconcileAll(ctx context.Context) error {
	queue, err := s.documents.JudgmentDocuments(ctx)
	if err != nil {
		return fmt.Errorf("failed to load judgment documents: %w", err)
	}

	s.logger.Info().Int("count", len(queue)).Msg("Reconciling judgment documents")

	for _, doc := range queue {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := s.UpdateJudgmentFromDocument(ctx, doc); err != nil {
			s.logger.Warn().
				Str("docket_id", doc.DocketID).
				Str("url", doc.URL).
				Err(err).
				Msg("Failed to reconcile judgment document")
		}
	}
	return nil
}

// UpdateJudgmentFromDocument derives a filing date from the judgment text
// and merges judgment details into the matching hearing, creating one at
// the guessed date when no hearing falls inside the window.
func (s *JudgmentService) UpdateJudgmentFromDocument(ctx context.Context, doc *models.PleadingDocument) error {
	if !doc.IsJudgment() || !doc.HasText() {
		return nil
	}
	text := *doc.Text

	fileDate, ok := GuessFileDate(text)
	if !ok {
		// Not fatal: the document stays classified but unlinked, and will
		// be reconsidered on the next reconciliation run.
		s.logger.Warn().
			Str("docket_id", doc.DocketID).
			Str("url", doc.URL).
			Msg("Could not guess file date for judgment document")
		return nil
	}

	windowStart := fileDate.AddDate(0, 0, -hearingWindowDays)
	hearing, err := s.hearings.FindHearingInWindow(ctx, doc.DocketID, windowStart, fileDate)
	if err != nil {
		return err
	}
	if hearing == nil {
		hearing, err = s.hearings.CreateHearing(ctx, &models.Hearing{
			DocketID:  doc.DocketID,
			CourtDate: fileDate,
			Address:   models.UnknownAddress,
		})
		if err != nil {
			return err
		}
	}

	judgment := parseJudgment(text)
	judgment.DocketID = doc.DocketID
	judgment.FileDate = fileDate
	judgment.DocumentURL = &doc.URL

	saved, err := s.judgments.UpsertJudgment(ctx, judgment)
	if err != nil {
		return err
	}

	if err := s.hearings.LinkJudgment(ctx, hearing.ID, saved.ID); err != nil {
		return err
	}

	s.logger.Info().
		Str("docket_id", doc.DocketID).
		Int64("hearing_id", hearing.ID).
		Int64("judgment_id", saved.ID).
		Msg("Merged judgment into hearing")
	return nil
}

var (
	inFavorPlaintiffPattern = regexp.MustCompile(`(?i)judgment\s+(?:is\s+)?(?:entered\s+|granted\s+)?(?:in\s+favor\s+of|for)\s+(?:the\s+)?plaintiff`)
	inFavorDefendantPattern = regexp.MustCompile(`(?i)judgment\s+(?:is\s+)?(?:entered\s+|granted\s+)?(?:in\s+favor\s+of|for)\s+(?:the\s+)?defendant`)
	possessionPattern       = regexp.MustCompile(`(?i)awarded?\s+possession|possession\s+of\s+the\s+premises`)
	feesPattern             = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d{1,2})?)`)
	interestPattern         = regexp.MustCompile(`(?i)with\s+interest`)
	dismissalPattern        = regexp.MustCompile(`(?i)dismissed?\s+(with|without)\s+prejudice`)
)

// parseJudgment recovers judgment details from semi-structured order text.
// These are literal pattern predicates by design; the orders are filled-in
// forms, not prose, and anything smarter would overfit.
func parseJudgment(text string) *models.Judgment {
	judgment := &models.Judgment{}

	if inFavorPlaintiffPattern.MatchString(text) {
		favor := models.InFavorOfPlaintiff
		judgment.InFavorOf = &favor
	} else if inFavorDefendantPattern.MatchString(text) {
		favor := models.InFavorOfDefendant
		judgment.InFavorOf = &favor
	}

	judgment.AwardsPossession = possessionPattern.MatchString(text)
	judgment.Interest = interestPattern.MatchString(text)

	if m := feesPattern.FindStringSubmatch(text); m != nil {
		raw := strings.ReplaceAll(m[1], ",", "")
		if amount, err := strconv.ParseFloat(raw, 64); err == nil && amount > 0 {
			judgment.AwardsFees = &amount
		}
	}

	if m := dismissalPattern.FindStringSubmatch(text); m != nil {
		basis := strings.ToUpper(m[1]) + "_PREJUDICE"
		judgment.DismissalBasis = &basis
	}

	return judgment
}
