package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/scribely/content-api/internal/queue"
	"github.com/scribely/content-api/internal/repository"
)

// DuePostsJob is the safety net behind the delayed queue: it sweeps for
// pending posts whose time has passed and enqueues them. A post whose
// task was already delivered is filtered out by the worker's claim, so
// double-enqueueing is harmless.
type DuePostsJob struct {
	pr     repository.PostRepository
	client *asynq.Client
}

func NewDuePostsJob(pr repository.PostRepository, client *asynq.Client) *DuePostsJob {
	return &DuePostsJob{
		pr:     pr,
		client: client,
	}
}

func (c *DuePostsJob) SweepDuePosts() {
	ctx := context.Background()

	posts, err := c.pr.ListDuePending(ctx, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, post := range posts {
		payload := queue.PublishPostPayload{PostID: post.ID}
		if err := queue.EnqueuePost(c.client, payload, 0); err != nil {
			slog.Info("could not enqueue overdue post", "post_id", post.ID, "error", err.Error())
		}
	}
}
