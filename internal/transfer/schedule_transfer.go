package transfer

import "github.com/scribely/content-api/internal/models"

type SchedulePostRequest struct {
	ContentID     *int64   `json:"content_id"`
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	ImageURLs     []string `json:"image_urls"`
	ScheduledTime string   `json:"scheduled_time"`
	ConnectionIDs []int64  `json:"connection_ids"`
}

type ScheduleUpdateRequest struct {
	Title         string   `json:"title"`
	Body          string   `json:"body"`
	ImageURLs     []string `json:"image_urls"`
	ScheduledTime string   `json:"scheduled_time"`
}

// ScheduledPostInfo pairs a post with its targets for list and detail
// responses.
type ScheduledPostInfo struct {
	Post    *models.ScheduledPost `json:"post"`
	Targets []*models.PostTarget  `json:"targets"`
}
