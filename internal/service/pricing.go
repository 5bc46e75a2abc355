package service

import (
	"context"
	"strings"

	"github.com/scribely/content-api/internal/transfer"
)

// Pricing keys under the "pricing" settings category.
const (
	KeyLengthShort     = "length_short"
	KeyLengthMedium    = "length_medium"
	KeyLengthLong      = "length_long"
	KeyLengthExtraLong = "length_extra_long"
	KeyBackendDefault  = "backend_default"
	KeyBackendPremium  = "backend_premium"
	KeyPerImage        = "per_image"
)

var lengthKeys = map[string]string{
	"short":      KeyLengthShort,
	"medium":     KeyLengthMedium,
	"long":       KeyLengthLong,
	"extra_long": KeyLengthExtraLong,
}

// computeCost prices a generation request from the current tariff
// settings. An unrecognized length class prices as medium so a client
// sending a new label is billed something sane rather than rejected.
func computeCost(ctx context.Context, settings SettingsService, req *transfer.GenerationRequest) transfer.CostBreakdown {
	class := strings.ToLower(strings.TrimSpace(req.Length))
	key, ok := lengthKeys[class]
	if !ok {
		class = "medium"
		key = KeyLengthMedium
	}

	breakdown := transfer.CostBreakdown{LengthClass: class}
	breakdown.Base = settings.GetInt64(ctx, CategoryPricing, key)

	if strings.EqualFold(req.Backend, "premium") {
		breakdown.Backend = settings.GetInt64(ctx, CategoryPricing, KeyBackendPremium)
	} else {
		breakdown.Backend = settings.GetInt64(ctx, CategoryPricing, KeyBackendDefault)
	}

	if req.ImageCount > 0 {
		breakdown.Images = int64(req.ImageCount) * settings.GetInt64(ctx, CategoryPricing, KeyPerImage)
	}

	breakdown.Total = breakdown.Base + breakdown.Backend + breakdown.Images
	return breakdown
}
