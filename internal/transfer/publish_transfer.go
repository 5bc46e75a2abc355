package transfer

import "github.com/scribely/content-api/internal/models"

type PublishNowRequest struct {
	ConnectionID int64    `json:"connection_id"`
	ContentID    int64    `json:"content_id"`
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	ImageURLs    []string `json:"image_urls"`
}

type PublishOutcome struct {
	Log       *models.PublishingLog `json:"log"`
	RemoteID  string                `json:"remote_id"`
	RemoteURL string                `json:"remote_url"`
}

type ConnectionTestResult struct {
	ConnectionID int64  `json:"connection_id"`
	Reachable    bool   `json:"reachable"`
	Message      string `json:"message"`
}
