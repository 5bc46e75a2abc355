package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/scribely/content-api/internal/cache"
	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/repository"
)

// Settings categories and keys the core reads. Every key has a default so
// a missing row never fails a request.
const (
	CategoryGeneration = "generation"
	CategoryPricing    = "pricing"

	KeyWebhookURL     = "webhook_url"
	KeyWebhookSecret  = "webhook_secret"
	KeyTimeoutSeconds = "timeout_seconds"
)

var settingsDefaults = map[string]string{
	"generation/webhook_url":     "",
	"generation/webhook_secret":  "",
	"generation/timeout_seconds": "180",
	"pricing/length_short":       "2",
	"pricing/length_medium":      "3",
	"pricing/length_long":        "5",
	"pricing/length_extra_long":  "8",
	"pricing/backend_default":    "0",
	"pricing/backend_premium":    "2",
	"pricing/per_image":          "2",
}

const settingsCacheTTL = 5 * time.Minute

type SettingsService interface {
	GetString(ctx context.Context, category, key string) string
	GetInt64(ctx context.Context, category, key string) int64
	List(ctx context.Context, category string) ([]*models.Setting, error)
	Update(ctx context.Context, category, key, value string) error
}

type settingsService struct {
	sr repository.SettingsRepository
	c  *cache.Cache
}

func NewSettingsService(sr repository.SettingsRepository, c *cache.Cache) SettingsService {
	return &settingsService{sr: sr, c: c}
}

// GetString resolves category/key through the cache, then the settings
// table, then the documented default. It never returns an error to the
// caller: the defaults are the contract.
func (s *settingsService) GetString(ctx context.Context, category, key string) string {
	cacheKey := fmt.Sprintf("settings:%s:%s", category, key)
	if value, err := s.c.Get(ctx, cacheKey); err == nil {
		return value
	}

	value, found, err := s.sr.Get(ctx, category, key)
	if err != nil || !found {
		return settingsDefaults[category+"/"+key]
	}

	if err := s.c.Set(ctx, cacheKey, value, settingsCacheTTL); err != nil {
		slog.Info(err.Error())
	}
	return value
}

func (s *settingsService) GetInt64(ctx context.Context, category, key string) int64 {
	value := s.GetString(ctx, category, key)
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		fallback := settingsDefaults[category+"/"+key]
		n, _ = strconv.ParseInt(fallback, 10, 64)
	}
	return n
}

func (s *settingsService) List(ctx context.Context, category string) ([]*models.Setting, error) {
	settings, err := s.sr.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("error listing settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) Update(ctx context.Context, category, key, value string) error {
	if category == "" || key == "" {
		err := errors.New("settings category and key cannot be empty")
		slog.Info(err.Error())
		return err
	}

	setting := models.Setting{
		Category: category,
		Key:      key,
		Value:    value,
	}
	if err := s.sr.Upsert(ctx, &setting); err != nil {
		return err
	}

	cacheKey := fmt.Sprintf("settings:%s:%s", category, key)
	if err := s.c.Delete(ctx, cacheKey); err != nil {
		slog.Info(err.Error())
	}
	return nil
}
