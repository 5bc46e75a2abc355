package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"unicode/utf8"

	"github.com/scribely/content-api/internal/models"
	"github.com/scribely/content-api/internal/transfer"
)

// stubSettings serves settings from a map, falling back to the packaged
// defaults like the real service.
type stubSettings struct {
	values map[string]string
}

func (s *stubSettings) GetString(ctx context.Context, category, key string) string {
	if v, ok := s.values[category+"/"+key]; ok {
		return v
	}
	return settingsDefaults[category+"/"+key]
}

func (s *stubSettings) GetInt64(ctx context.Context, category, key string) int64 {
	n, err := strconv.ParseInt(s.GetString(ctx, category, key), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func (s *stubSettings) List(ctx context.Context, category string) ([]*models.Setting, error) {
	return nil, nil
}

func (s *stubSettings) Update(ctx context.Context, category, key, value string) error {
	if s.values == nil {
		s.values = make(map[string]string)
	}
	s.values[category+"/"+key] = value
	return nil
}

func TestGenerateUsesWebhook(t *testing.T) {
	var gotSecret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get("X-Webhook-Secret")
		json.NewEncoder(w).Encode([]map[string]string{
			{"title": "Generated Title", "content": "word one two three"},
		})
	}))
	defer server.Close()

	settings := &stubSettings{values: map[string]string{
		"generation/webhook_url":    server.URL,
		"generation/webhook_secret": "s3cret",
	}}
	svc := NewGenerationService(settings)

	result, err := svc.Generate(context.Background(), &transfer.GenerationRequest{Topic: "espresso"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if gotSecret != "s3cret" {
		t.Errorf("webhook secret header = %q", gotSecret)
	}
	if result.Fallback {
		t.Error("Fallback = true for a successful webhook call")
	}
	if result.Title != "Generated Title" {
		t.Errorf("Title = %q", result.Title)
	}
	if result.WordCount != 4 {
		t.Errorf("WordCount = %d, want 4", result.WordCount)
	}
	if result.Shape != transfer.ShapeArray {
		t.Errorf("Shape = %q, want %q", result.Shape, transfer.ShapeArray)
	}
}

func TestGenerateFallsBackWhenWebhookUnset(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"placeholder domain", "https://example.com/generate"},
		{"placeholder template", "https://api.acme.dev/your-webhook"},
		{"not a url", "generate-content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := &stubSettings{values: map[string]string{
				"generation/webhook_url": tt.url,
			}}
			svc := NewGenerationService(settings)

			result, err := svc.Generate(context.Background(), &transfer.GenerationRequest{
				Topic:    "coffee roasting",
				Keywords: []string{"light roast", "crack"},
			})
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			if !result.Fallback {
				t.Fatal("Fallback = false, want true")
			}
			if result.Title == "" || result.Content == "" {
				t.Error("fallback article is missing title or content")
			}
			if result.WordCount == 0 {
				t.Error("fallback WordCount = 0")
			}
		})
	}
}

func TestGenerateFallsBackOnUnreachableWebhook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	settings := &stubSettings{values: map[string]string{
		"generation/webhook_url": server.URL,
	}}
	svc := NewGenerationService(settings)

	result, err := svc.Generate(context.Background(), &transfer.GenerationRequest{Topic: "anything"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !result.Fallback {
		t.Error("Fallback = false after connection failure")
	}
}

func TestGenerateRejectsEmptyRequest(t *testing.T) {
	svc := NewGenerationService(&stubSettings{})

	_, err := svc.Generate(context.Background(), &transfer.GenerationRequest{})
	if err == nil {
		t.Fatal("Generate accepted a request with no topic and no keywords")
	}
}

func TestNormalizeResponseShapes(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantShape string
		wantTitle string
		wantOK    bool
	}{
		{
			name:      "array",
			body:      `[{"title":"A","content":"body"}]`,
			wantShape: transfer.ShapeArray,
			wantTitle: "A",
			wantOK:    true,
		},
		{
			name:      "wrapped array",
			body:      `{"success":true,"data":[{"title":"B","content":"body"}]}`,
			wantShape: transfer.ShapeWrapped,
			wantTitle: "B",
			wantOK:    true,
		},
		{
			name:      "wrapped object",
			body:      `{"success":true,"data":{"title":"C","content":"body"}}`,
			wantShape: transfer.ShapeGeneric,
			wantTitle: "C",
			wantOK:    true,
		},
		{
			name:      "bare object",
			body:      `{"title":"D","content":"body"}`,
			wantShape: transfer.ShapeGeneric,
			wantTitle: "D",
			wantOK:    true,
		},
		{
			name:      "unknown json passes through opaque",
			body:      `{"foo":"bar"}`,
			wantShape: transfer.ShapeOpaque,
			wantOK:    true,
		},
		{
			name:   "empty body",
			body:   "",
			wantOK: false,
		},
		{
			name:   "not json",
			body:   "<html>502 Bad Gateway</html>",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := normalizeResponse([]byte(tt.body))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if result.Shape != tt.wantShape {
				t.Errorf("Shape = %q, want %q", result.Shape, tt.wantShape)
			}
			if result.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", result.Title, tt.wantTitle)
			}
		})
	}
}

func TestSanitizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"Quoted Title"`, "Quoted Title"},
		{"'Single quoted'", "Single quoted"},
		{"Line\nbreaks\tand\ttabs", "Line breaks and tabs"},
		{"  double   spaces   ", "double spaces"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if got := sanitizeTitle(tt.in); got != tt.want {
			t.Errorf("sanitizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFallbackTitleMultibyteTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"ärzte und apotheken", "Ärzte und apotheken: A Practical Guide"},
		{"日本語のトピック", "日本語のトピック: A Practical Guide"},
		{"coffee", "Coffee: A Practical Guide"},
	}

	for _, tt := range tests {
		got := fallbackTitle(&transfer.GenerationRequest{Topic: tt.topic})
		if got != tt.want {
			t.Errorf("fallbackTitle(%q) = %q, want %q", tt.topic, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("fallbackTitle(%q) produced invalid UTF-8", tt.topic)
		}
	}
}

func TestFallbackArticleDeterministic(t *testing.T) {
	req := &transfer.GenerationRequest{Topic: "sourdough", Keywords: []string{"starter", "hydration"}}

	first := fallbackArticle(req)
	second := fallbackArticle(req)

	if first.Content != second.Content || first.Title != second.Title {
		t.Error("fallback article is not deterministic for the same request")
	}
}
