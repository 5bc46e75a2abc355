package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/scribely/content-api/internal/transfer"
)

const webhookSecretHeader = "X-Webhook-Secret"

// GenerationService calls the operator-configured generation webhook and
// normalizes whatever comes back. Every soft failure degrades to a
// locally synthesized article; an error escapes only when no content can
// be produced at all.
type GenerationService interface {
	Generate(ctx context.Context, req *transfer.GenerationRequest) (*transfer.GenerationResult, error)
}

type generationService struct {
	settings SettingsService
	client   *http.Client
}

func NewGenerationService(settings SettingsService) GenerationService {
	return &generationService{
		settings: settings,
		client:   &http.Client{},
	}
}

func (s *generationService) Generate(ctx context.Context, req *transfer.GenerationRequest) (*transfer.GenerationResult, error) {
	if req == nil || (req.Topic == "" && len(req.Keywords) == 0) {
		err := errors.New("generation request needs a topic or keywords")
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, err.Error())
	}

	webhookURL := s.settings.GetString(ctx, CategoryGeneration, KeyWebhookURL)
	if !usableWebhookURL(webhookURL) {
		// Unset or placeholder URL is a deliberate degrade, not an error.
		return fallbackArticle(req), nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"topic":    req.Topic,
		"keywords": req.Keywords,
		"length":   req.Length,
		"backend":  req.Backend,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, err.Error())
	}

	timeout := time.Duration(s.settings.GetInt64(ctx, CategoryGeneration, KeyTimeoutSeconds)) * time.Second
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, webhookURL, bytes.NewBuffer(payload))
	if err != nil {
		slog.Info(err.Error())
		return fallbackArticle(req), nil
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if secret := s.settings.GetString(ctx, CategoryGeneration, KeyWebhookSecret); secret != "" {
		httpReq.Header.Set(webhookSecretHeader, secret)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		slog.Info("generation webhook unreachable, using fallback", "error", err.Error())
		return fallbackArticle(req), nil
	}
	defer resp.Body.Close()

	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		slog.Info(err.Error())
		return fallbackArticle(req), nil
	}

	result, ok := normalizeResponse(body.Bytes())
	if !ok {
		slog.Info("generation webhook returned an unusable body, using fallback")
		return fallbackArticle(req), nil
	}

	result.Title = sanitizeTitle(result.Title)
	if result.Title == "" {
		result.Title = fallbackTitle(req)
	}
	result.WordCount = len(strings.Fields(result.Content))
	return result, nil
}

func usableWebhookURL(url string) bool {
	if url == "" {
		return false
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return false
	}
	// Placeholder values left over from setup templates count as unset.
	if strings.Contains(url, "example.com") || strings.Contains(url, "your-webhook") {
		return false
	}
	return true
}

type generationItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// normalizeResponse recognizes the response shapes the external service
// has been seen to produce, in priority order. Unknown JSON is forwarded
// opaque rather than rejected; only an empty or non-JSON body reports
// not-ok so the caller can fall back.
func normalizeResponse(raw []byte) (*transfer.GenerationResult, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, false
	}

	var items []generationItem
	if err := json.Unmarshal(trimmed, &items); err == nil && len(items) > 0 && items[0].Content != "" {
		return &transfer.GenerationResult{
			Title:   items[0].Title,
			Content: items[0].Content,
			Shape:   transfer.ShapeArray,
		}, true
	}

	var wrapper struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err == nil && len(wrapper.Data) > 0 {
		if err := json.Unmarshal(wrapper.Data, &items); err == nil && len(items) > 0 && items[0].Content != "" {
			return &transfer.GenerationResult{
				Title:   items[0].Title,
				Content: items[0].Content,
				Shape:   transfer.ShapeWrapped,
			}, true
		}

		var item generationItem
		if err := json.Unmarshal(wrapper.Data, &item); err == nil && item.Content != "" {
			return &transfer.GenerationResult{
				Title:   item.Title,
				Content: item.Content,
				Shape:   transfer.ShapeGeneric,
			}, true
		}
	}

	var single generationItem
	if err := json.Unmarshal(trimmed, &single); err == nil && single.Content != "" {
		return &transfer.GenerationResult{
			Title:   single.Title,
			Content: single.Content,
			Shape:   transfer.ShapeGeneric,
		}, true
	}

	// Unknown shape: pass through unchanged.
	return &transfer.GenerationResult{
		Content: string(trimmed),
		Shape:   transfer.ShapeOpaque,
		Raw:     json.RawMessage(trimmed),
	}, true
}

// sanitizeTitle strips quote wrapping and collapses internal whitespace
// before the string is persisted as a title.
func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Trim(title, `"'`)
	title = strings.Trim(title, "“”")

	replacer := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")
	title = replacer.Replace(title)
	return strings.Join(strings.Fields(title), " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

func fallbackTitle(req *transfer.GenerationRequest) string {
	subject := req.Topic
	if subject == "" {
		subject = strings.Join(req.Keywords, ", ")
	}
	return fmt.Sprintf("%s: A Practical Guide", capitalize(subject))
}

// fallbackArticle synthesizes a deterministic templated article so the
// user-visible operation completes even when the external service is
// down or unconfigured. Callers bill and persist it like real content.
func fallbackArticle(req *transfer.GenerationRequest) *transfer.GenerationResult {
	subject := req.Topic
	if subject == "" {
		subject = strings.Join(req.Keywords, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Introduction</h2>\n")
	fmt.Fprintf(&b, "<p>%s is a topic worth a closer look. This article walks through the essentials and offers practical guidance you can apply right away.</p>\n", subject)

	if len(req.Keywords) > 0 {
		fmt.Fprintf(&b, "<h2>Key Areas</h2>\n<ul>\n")
		for _, kw := range req.Keywords {
			fmt.Fprintf(&b, "<li><strong>%s</strong>: why it matters and how to get started.</li>\n", kw)
		}
		fmt.Fprintf(&b, "</ul>\n")
	}

	fmt.Fprintf(&b, "<h2>Getting Started</h2>\n")
	fmt.Fprintf(&b, "<p>Start small, measure results, and iterate. The most common mistake with %s is trying to do everything at once instead of building on what works.</p>\n", subject)
	fmt.Fprintf(&b, "<h2>Conclusion</h2>\n")
	fmt.Fprintf(&b, "<p>%s rewards a steady, deliberate approach. Keep the fundamentals in place and revisit your strategy as you learn more.</p>\n", subject)

	content := b.String()
	return &transfer.GenerationResult{
		Title:     fallbackTitle(req),
		Content:   content,
		WordCount: len(strings.Fields(content)),
		Fallback:  true,
		Shape:     transfer.ShapeGeneric,
	}
}
