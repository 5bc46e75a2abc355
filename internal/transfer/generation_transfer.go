package transfer

import (
	"encoding/json"

	"github.com/scribely/content-api/internal/models"
)

type GenerationRequest struct {
	Topic      string   `json:"topic"`
	Keywords   []string `json:"keywords"`
	Length     string   `json:"length"`
	Backend    string   `json:"backend"`
	ImageCount int      `json:"image_count"`
	ImageURLs  []string `json:"image_urls"`
}

// CostBreakdown is the additive tariff computation persisted with every
// usage-log row.
type CostBreakdown struct {
	LengthClass string `json:"length_class"`
	Base        int64  `json:"base"`
	Backend     int64  `json:"backend"`
	Images      int64  `json:"images"`
	Total       int64  `json:"total"`
}

// Response shapes the external generation service has been observed to
// return. Opaque means the body was forwarded unchanged.
const (
	ShapeArray   = "array"
	ShapeWrapped = "wrapped"
	ShapeGeneric = "generic"
	ShapeOpaque  = "opaque"
)

type GenerationResult struct {
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	WordCount int             `json:"word_count"`
	Fallback  bool            `json:"fallback"`
	Shape     string          `json:"shape"`
	Raw       json.RawMessage `json:"raw,omitempty"`
}

// GenerationOutcome is what the orchestrator hands back to the caller.
// Persisted is false when storage failed but the content is still usable.
type GenerationOutcome struct {
	Record      *models.ContentRecord `json:"record,omitempty"`
	Result      *GenerationResult     `json:"content"`
	CreditsUsed int64                 `json:"credits_used"`
	Persisted   bool                  `json:"persisted"`
}
