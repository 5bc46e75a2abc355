package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Connection carries one decrypted credential blob to its adapter. Raw is
// opaque to everything except the adapter matching Platform.
type Connection struct {
	ID        int64
	Platform  string
	Raw       []byte
	ExpiresAt time.Time
}

// Expired reports whether the stored credential is past its recorded
// expiry. A zero ExpiresAt means the credential does not expire.
func (c Connection) Expired() bool {
	return !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(time.Now())
}

type Content struct {
	Title     string
	Body      string
	ImageURLs []string
}

type PublishResult struct {
	RemoteID  string `json:"remote_id"`
	RemoteURL string `json:"remote_url"`
}

type TestResult struct {
	Reachable bool   `json:"reachable"`
	Message   string `json:"message"`
}

// Adapter hides one provider's protocol behind the uniform publish/test
// contract. Test must never mutate remote state.
type Adapter interface {
	Platform() string
	Publish(ctx context.Context, conn Connection, content Content) (*PublishResult, error)
	Test(ctx context.Context, conn Connection) (*TestResult, error)
}

type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Platform()] = a
	}
	return r
}

func (r *Registry) Get(platform string) (Adapter, error) {
	a, ok := r.adapters[platform]
	if !ok {
		return nil, &PublishError{Code: CodeUnsupported, Message: fmt.Sprintf("platform %q is not supported", platform)}
	}
	return a, nil
}

func (r *Registry) Platforms() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}

func defaultClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload any) ([]byte, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("error reading response body: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("error reading response body: %w", err)
	}
	return respBody, resp.StatusCode, nil
}
