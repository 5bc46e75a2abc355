package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	config "github.com/scribely/content-api/configs"
	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/platform"
	"github.com/scribely/content-api/internal/repository"
	"github.com/scribely/content-api/internal/transfer"
	"github.com/scribely/content-api/pkg/utils"
)

type PublishService interface {
	PublishNow(ctx context.Context, userID int64, req *transfer.PublishNowRequest) (*transfer.PublishOutcome, error)
	PublishTarget(ctx context.Context, userID int64, postID sql.NullInt64, connectionID int64, content platform.Content) (*models.PublishingLog, error)
	TestConnection(ctx context.Context, userID, connectionID int64) (*transfer.ConnectionTestResult, error)
	History(ctx context.Context, userID int64) ([]*models.PublishingLog, error)
	HistoryForPost(ctx context.Context, userID, postID int64) ([]*models.PublishingLog, error)
}

type publishService struct {
	cfg      config.Config
	registry *platform.Registry
	conn     repository.ConnectionRepository
	content  repository.ContentRepository
	logs     repository.PublishLogRepository
	posts    repository.PostRepository
}

func NewPublishService(cfg config.Config, registry *platform.Registry, conn repository.ConnectionRepository, content repository.ContentRepository, logs repository.PublishLogRepository, posts repository.PostRepository) PublishService {
	return &publishService{
		cfg:      cfg,
		registry: registry,
		conn:     conn,
		content:  content,
		logs:     logs,
		posts:    posts,
	}
}

// resolveConnection loads and decrypts one owned connection into the form
// adapters consume. Ownership is checked before the credential row is
// ever read.
func (s *publishService) resolveConnection(ctx context.Context, userID, connectionID int64) (platform.Connection, string, error) {
	owned, err := s.conn.CheckByUserID(ctx, connectionID, userID)
	if err != nil {
		return platform.Connection{}, "", err
	}
	if !owned {
		return platform.Connection{}, "", ErrConnectionNotFound
	}

	record, err := s.conn.GetByID(ctx, connectionID)
	if err != nil {
		return platform.Connection{}, "", err
	}
	if record == nil {
		return platform.Connection{}, "", ErrConnectionNotFound
	}

	credentials, err := utils.Decrypt(record.Credentials, []byte(s.cfg.SecretKey))
	if err != nil {
		return platform.Connection{}, "", err
	}

	var expiresAt time.Time
	if record.ExpiresAt.Valid {
		expiresAt = record.ExpiresAt.Time
	}

	return platform.Connection{
		ID:        record.ID,
		Platform:  record.Platform,
		Raw:       []byte(credentials),
		ExpiresAt: expiresAt,
	}, record.Platform, nil
}

// PublishTarget pushes content to one connection and records exactly one
// publishing log row for the attempt, success or failure. The returned
// error is the adapter's, so callers can aggregate outcomes while the
// audit trail stays complete.
func (s *publishService) PublishTarget(ctx context.Context, userID int64, postID sql.NullInt64, connectionID int64, content platform.Content) (*models.PublishingLog, error) {
	conn, platformName, err := s.resolveConnection(ctx, userID, connectionID)
	if err != nil {
		return nil, err
	}

	adapter, err := s.registry.Get(platformName)
	if err != nil {
		return s.recordAttempt(ctx, userID, postID, connectionID, platformName, nil, err), err
	}

	result, err := adapter.Publish(ctx, conn, content)
	return s.recordAttempt(ctx, userID, postID, connectionID, platformName, result, err), err
}

func (s *publishService) recordAttempt(ctx context.Context, userID int64, postID sql.NullInt64, connectionID int64, platformName string, result *platform.PublishResult, publishErr error) *models.PublishingLog {
	entry := &models.PublishingLog{
		UserID:       userID,
		PostID:       postID,
		ConnectionID: connectionID,
		Platform:     platformName,
		Success:      publishErr == nil,
	}
	if result != nil {
		entry.RemoteID = result.RemoteID
		entry.RemoteURL = result.RemoteURL
	}
	if publishErr != nil {
		entry.ErrorMessage = publishErr.Error()
	}

	id, err := s.logs.Create(ctx, entry)
	if err != nil {
		slog.Info("publishing log row was not recorded", "connection_id", connectionID, "error", err.Error())
		return entry
	}
	entry.ID = id
	return entry
}

// PublishNow is the ad-hoc path: same adapters and same audit trail as
// the scheduler, with no scheduled post row (PostID stays null).
func (s *publishService) PublishNow(ctx context.Context, userID int64, req *transfer.PublishNowRequest) (*transfer.PublishOutcome, error) {
	content := platform.Content{
		Title:     req.Title,
		Body:      req.Body,
		ImageURLs: req.ImageURLs,
	}

	if req.ContentID > 0 {
		owned, err := s.content.CheckByUserID(ctx, req.ContentID, userID)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, ErrNotFound
		}

		record, err := s.content.GetByID(ctx, req.ContentID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, ErrNotFound
		}

		content.Title = record.Title
		content.Body = record.Content
		if len(content.ImageURLs) == 0 {
			content.ImageURLs = record.ImageURLs
		}
	}

	entry, err := s.PublishTarget(ctx, userID, sql.NullInt64{}, req.ConnectionID, content)
	if err != nil {
		return nil, err
	}

	if req.ContentID > 0 {
		if err := s.content.UpdateStatus(ctx, models.ContentStatusPublished, req.ContentID); err != nil {
			slog.Info(err.Error())
		}
	}

	return &transfer.PublishOutcome{
		Log:       entry,
		RemoteID:  entry.RemoteID,
		RemoteURL: entry.RemoteURL,
	}, nil
}

func (s *publishService) TestConnection(ctx context.Context, userID, connectionID int64) (*transfer.ConnectionTestResult, error) {
	conn, platformName, err := s.resolveConnection(ctx, userID, connectionID)
	if err != nil {
		return nil, err
	}

	adapter, err := s.registry.Get(platformName)
	if err != nil {
		return nil, err
	}

	result, err := adapter.Test(ctx, conn)
	if err != nil {
		return &transfer.ConnectionTestResult{
			ConnectionID: connectionID,
			Reachable:    false,
			Message:      err.Error(),
		}, nil
	}

	return &transfer.ConnectionTestResult{
		ConnectionID: connectionID,
		Reachable:    result.Reachable,
		Message:      result.Message,
	}, nil
}

func (s *publishService) History(ctx context.Context, userID int64) ([]*models.PublishingLog, error) {
	return s.logs.ListByUserID(ctx, userID)
}

func (s *publishService) HistoryForPost(ctx context.Context, userID, postID int64) ([]*models.PublishingLog, error) {
	owned, err := s.posts.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrNotFound
	}
	return s.logs.ListByPostID(ctx, postID)
}
