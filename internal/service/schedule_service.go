package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/repository"
	"github.com/scribely/content-api/internal/transfer"
)

const scheduledTimeLayout = "2006-01-02T15:04"

type ScheduleService interface {
	Create(ctx context.Context, userID int64, req *transfer.SchedulePostRequest) (int64, time.Duration, error)
	List(ctx context.Context, userID int64) ([]*models.ScheduledPost, error)
	Info(ctx context.Context, userID, postID int64) (*transfer.ScheduledPostInfo, error)
	Update(ctx context.Context, userID, postID int64, req *transfer.ScheduleUpdateRequest) error
	Cancel(ctx context.Context, userID, postID int64) error
	Remove(ctx context.Context, userID, postID int64) error
}

type scheduleService struct {
	db *sql.DB
	pr repository.PostRepository
	tr repository.TargetRepository
	cr repository.ConnectionRepository
	co repository.ContentRepository
}

func NewScheduleService(db *sql.DB, pr repository.PostRepository, tr repository.TargetRepository, cr repository.ConnectionRepository, co repository.ContentRepository) ScheduleService {
	return &scheduleService{
		db: db,
		pr: pr,
		tr: tr,
		cr: cr,
		co: co,
	}
}

// Create stores one scheduled post plus its targets in a single
// transaction and returns how long until it is due, so the caller can
// enqueue the delayed delivery.
func (s *scheduleService) Create(ctx context.Context, userID int64, req *transfer.SchedulePostRequest) (int64, time.Duration, error) {
	scheduledTime, err := time.Parse(scheduledTimeLayout, req.ScheduledTime)
	if err != nil {
		err = fmt.Errorf("invalid scheduled time format: %w", err)
		slog.Info(err.Error())
		return 0, 0, err
	}
	if !scheduledTime.After(time.Now()) {
		return 0, 0, ErrInvalidScheduleTime
	}

	if len(req.ConnectionIDs) == 0 {
		return 0, 0, ErrNoTargets
	}

	post := models.ScheduledPost{
		UserID:        userID,
		Title:         req.Title,
		Body:          req.Body,
		ImageURLs:     req.ImageURLs,
		ScheduledTime: scheduledTime,
	}

	if req.ContentID != nil {
		owned, err := s.co.CheckByUserID(ctx, *req.ContentID, userID)
		if err != nil {
			return 0, 0, err
		}
		if !owned {
			return 0, 0, ErrNotFound
		}
		post.ContentID = sql.NullInt64{Int64: *req.ContentID, Valid: true}

		if post.Title == "" || post.Body == "" {
			record, err := s.co.GetByID(ctx, *req.ContentID)
			if err != nil {
				return 0, 0, err
			}
			if record == nil {
				return 0, 0, ErrNotFound
			}
			if post.Title == "" {
				post.Title = record.Title
			}
			if post.Body == "" {
				post.Body = record.Content
			}
			if len(post.ImageURLs) == 0 {
				post.ImageURLs = record.ImageURLs
			}
		}
	}

	// Resolve each connection to its platform before anything is written.
	platforms := make(map[int64]string, len(req.ConnectionIDs))
	for _, connectionID := range req.ConnectionIDs {
		owned, err := s.cr.CheckByUserID(ctx, connectionID, userID)
		if err != nil {
			return 0, 0, err
		}
		if !owned {
			return 0, 0, ErrConnectionNotFound
		}

		conn, err := s.cr.GetByID(ctx, connectionID)
		if err != nil {
			return 0, 0, err
		}
		if conn == nil {
			return 0, 0, ErrConnectionNotFound
		}
		platforms[connectionID] = conn.Platform
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	postID, err := s.pr.Create(ctx, tx, &post)
	if err != nil {
		return 0, 0, fmt.Errorf("error creating scheduled post: %w", err)
	}

	for _, connectionID := range req.ConnectionIDs {
		target := models.PostTarget{
			PostID:       postID,
			Platform:     platforms[connectionID],
			ConnectionID: connectionID,
		}
		if err = s.tr.Create(ctx, tx, &target); err != nil {
			return 0, 0, fmt.Errorf("error saving post target: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	delay := time.Until(scheduledTime)
	if delay < 0 {
		delay = 0
	}

	return postID, delay, nil
}

func (s *scheduleService) List(ctx context.Context, userID int64) ([]*models.ScheduledPost, error) {
	return s.pr.GetByUserID(ctx, userID)
}

func (s *scheduleService) Info(ctx context.Context, userID, postID int64) (*transfer.ScheduledPostInfo, error) {
	owned, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, ErrNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrNotFound
	}

	targets, err := s.tr.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &transfer.ScheduledPostInfo{Post: post, Targets: targets}, nil
}

// Update edits a post only while it is still pending. A post that the
// worker has already claimed cannot be changed.
func (s *scheduleService) Update(ctx context.Context, userID, postID int64, req *transfer.ScheduleUpdateRequest) error {
	owned, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Body != "" {
		post.Body = req.Body
	}
	if req.ImageURLs != nil {
		post.ImageURLs = req.ImageURLs
	}
	if req.ScheduledTime != "" {
		scheduledTime, err := time.Parse(scheduledTimeLayout, req.ScheduledTime)
		if err != nil {
			return fmt.Errorf("invalid scheduled time format: %w", err)
		}
		if !scheduledTime.After(time.Now()) {
			return ErrInvalidScheduleTime
		}
		post.ScheduledTime = scheduledTime
	}

	updated, err := s.pr.UpdatePending(ctx, post)
	if err != nil {
		return err
	}
	if !updated {
		return ErrInvalidStateTransition
	}
	return nil
}

// Cancel flips pending to cancelled. The conditional update means a
// cancel racing the worker's claim loses cleanly.
func (s *scheduleService) Cancel(ctx context.Context, userID, postID int64) error {
	owned, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrNotFound
	}

	cancelled, err := s.pr.UpdateStatusFrom(ctx, postID, models.PostStatusPending, models.PostStatusCancelled)
	if err != nil {
		return err
	}
	if !cancelled {
		return ErrInvalidStateTransition
	}
	return nil
}

// Remove deletes a post and its targets. A post mid-publish stays put
// until the worker finishes with it.
func (s *scheduleService) Remove(ctx context.Context, userID, postID int64) error {
	owned, err := s.pr.CheckByUserID(ctx, postID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return ErrNotFound
	}

	post, err := s.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrNotFound
	}
	if post.Status == models.PostStatusProcessing {
		return ErrInvalidStateTransition
	}

	if err := s.tr.RemoveByPostID(ctx, nil, postID); err != nil {
		return err
	}
	return s.pr.Remove(ctx, postID)
}
