package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/platform"
)

// releaseClaim flips a won but unusable claim to failed. A post left in
// processing would be unreachable forever: redeliveries lose the claim
// and the sweep only looks at pending posts.
func (j *Queue) releaseClaim(ctx context.Context, postID int64) {
	if _, err := j.pr.UpdateStatusFrom(ctx, postID, models.PostStatusProcessing, models.PostStatusFailed); err != nil {
		slog.Info("could not release claimed post", "post_id", postID, "error", err.Error())
	}
}

func (j *Queue) HandlePublishPostTask(ctx context.Context, task *asynq.Task) error {
	var payload PublishPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	return j.PublishPost(ctx, payload.PostID)
}

// PublishPost delivers one due post to all its targets. The pending to
// processing claim succeeds for exactly one caller, so a queue
// redelivery racing the cron sweep collapses to a single delivery. Each
// target's outcome lands in the publishing log; the post ends completed
// only when every target succeeded.
func (j *Queue) PublishPost(ctx context.Context, postID int64) error {
	claimed, err := j.pr.ClaimPending(ctx, postID)
	if err != nil {
		return err
	}
	if !claimed {
		slog.Info("post already claimed or no longer pending", "post_id", postID)
		return nil
	}

	post, err := j.pr.GetByID(ctx, postID)
	if err != nil {
		j.releaseClaim(ctx, postID)
		return err
	}
	if post == nil {
		slog.Info("claimed post no longer exists", "post_id", postID)
		return nil
	}

	targets, err := j.tr.ListByPostID(ctx, postID)
	if err != nil {
		j.releaseClaim(ctx, postID)
		return err
	}
	if len(targets) == 0 {
		slog.Info("post has no targets", "post_id", postID)
		_, err := j.pr.UpdateStatusFrom(ctx, postID, models.PostStatusProcessing, models.PostStatusFailed)
		return err
	}

	content := platform.Content{
		Title:     post.Title,
		Body:      post.Body,
		ImageURLs: post.ImageURLs,
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		failures  int
		semaphore = make(chan struct{}, 10)
	)

	publishTarget := func(target *models.PostTarget) {
		defer wg.Done()
		defer func() { <-semaphore }()

		_, err := j.ps.PublishTarget(ctx, post.UserID,
			sql.NullInt64{Int64: postID, Valid: true},
			target.ConnectionID, content)
		if err != nil {
			slog.Info("publish target failed", "post_id", postID, "platform", target.Platform, "error", err.Error())
			mu.Lock()
			failures++
			mu.Unlock()
		}
	}

	for _, target := range targets {
		wg.Add(1)
		semaphore <- struct{}{}
		go publishTarget(target)
	}
	wg.Wait()

	final := models.PostStatusCompleted
	if failures > 0 {
		final = models.PostStatusFailed
	}

	if _, err := j.pr.UpdateStatusFrom(ctx, postID, models.PostStatusProcessing, final); err != nil {
		return err
	}
	return nil
}
