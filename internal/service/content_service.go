package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/repository"
	"github.com/scribely/content-api/internal/transfer"
)

type ContentService interface {
	Generate(ctx context.Context, userID int64, req *transfer.GenerationRequest) (*transfer.GenerationOutcome, error)
	List(ctx context.Context, userID int64) ([]*models.ContentRecord, error)
	Info(ctx context.Context, userID, contentID int64) (*models.ContentRecord, error)
	MarkPublished(ctx context.Context, userID, contentID int64) error
	Remove(ctx context.Context, userID, contentID int64) error
}

type contentService struct {
	cr  repository.ContentRepository
	ur  repository.UsageLogRepository
	cs  CreditService
	gen GenerationService
	ss  SettingsService
}

func NewContentService(cr repository.ContentRepository, ur repository.UsageLogRepository, cs CreditService, gen GenerationService, ss SettingsService) ContentService {
	return &contentService{cr: cr, ur: ur, cs: cs, gen: gen, ss: ss}
}

// Generate runs the billable pipeline: price, debit, call the generation
// webhook, persist the article, log usage. The debit happens before the
// webhook call so the account can never go negative under concurrency;
// if generation then fails outright the debit is refunded. A fallback
// article is billed like a real one. A storage failure after a
// successful generation does not fail the request, the caller gets the
// content back with Persisted false.
func (s *contentService) Generate(ctx context.Context, userID int64, req *transfer.GenerationRequest) (*transfer.GenerationOutcome, error) {
	cost := computeCost(ctx, s.ss, req)

	if _, err := s.cs.Debit(ctx, userID, cost.Total, "article generation"); err != nil {
		s.logUsage(ctx, userID, req, cost, 0, nil, false, err.Error())
		return nil, err
	}

	result, err := s.gen.Generate(ctx, req)
	if err != nil {
		if _, refundErr := s.cs.Credit(ctx, userID, cost.Total, "refund: generation failed"); refundErr != nil {
			slog.Info("refund after failed generation did not apply", "user_id", userID, "error", refundErr.Error())
		}
		s.logUsage(ctx, userID, req, cost, 0, nil, false, err.Error())
		return nil, err
	}

	outcome := &transfer.GenerationOutcome{
		Result:      result,
		CreditsUsed: cost.Total,
	}

	record := &models.ContentRecord{
		UserID:      userID,
		Title:       result.Title,
		Content:     result.Content,
		PlainText:   stripHTML(result.Content),
		ImageURLs:   req.ImageURLs,
		CreditsUsed: cost.Total,
		Status:      models.ContentStatusDraft,
	}
	id, err := s.cr.Create(ctx, nil, record)
	if err != nil {
		// The user paid and the content exists. Hand it back unsaved
		// rather than refunding or discarding it.
		slog.Info("generated content could not be persisted", "user_id", userID, "error", err.Error())
	} else {
		record.ID = id
		outcome.Record = record
		outcome.Persisted = true
	}

	s.logUsage(ctx, userID, req, cost, cost.Total, result, true, "")
	return outcome, nil
}

func (s *contentService) logUsage(ctx context.Context, userID int64, req *transfer.GenerationRequest, cost transfer.CostBreakdown, charged int64, result *transfer.GenerationResult, success bool, errMsg string) {
	params, _ := json.Marshal(req)
	breakdown, _ := json.Marshal(cost)

	entry := &models.UsageLog{
		UserID:        userID,
		Action:        models.ActionGenerateArticle,
		RequestParams: string(params),
		CostBreakdown: string(breakdown),
		CreditsUsed:   charged,
		Success:       success,
		ErrorMessage:  errMsg,
	}
	if result != nil {
		entry.ResultTitle = result.Title
		entry.WordCount = result.WordCount
	}

	if _, err := s.ur.Create(ctx, entry); err != nil {
		slog.Info(err.Error())
	}
}

func (s *contentService) List(ctx context.Context, userID int64) ([]*models.ContentRecord, error) {
	return s.cr.GetByUserID(ctx, userID)
}

func (s *contentService) Info(ctx context.Context, userID, contentID int64) (*models.ContentRecord, error) {
	owned, err := s.cr.CheckByUserID(ctx, contentID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrNotFound
	}

	record, err := s.cr.GetByID(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

func (s *contentService) MarkPublished(ctx context.Context, userID, contentID int64) error {
	owned, err := s.cr.CheckByUserID(ctx, contentID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrNotFound
	}
	return s.cr.UpdateStatus(ctx, models.ContentStatusPublished, contentID)
}

func (s *contentService) Remove(ctx context.Context, userID, contentID int64) error {
	owned, err := s.cr.CheckByUserID(ctx, contentID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrNotFound
	}
	return s.cr.Remove(ctx, contentID)
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTML(html string) string {
	text := htmlTagPattern.ReplaceAllString(html, " ")
	return strings.Join(strings.Fields(text), " ")
}
