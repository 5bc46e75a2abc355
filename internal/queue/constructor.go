package queue

import (
	"github.com/scribely/content-api/internal/repository"
	"github.com/scribely/content-api/internal/service"
)

type Queue struct {
	pr repository.PostRepository
	tr repository.TargetRepository
	ps service.PublishService
}

func NewQueue(
	pr repository.PostRepository,
	tr repository.TargetRepository,
	ps service.PublishService) *Queue {
	return &Queue{
		pr: pr,
		tr: tr,
		ps: ps,
	}
}

const TaskTypePublishPost = "publish:post"

type PublishPostPayload struct {
	PostID int64 `json:"post_id"`
}
