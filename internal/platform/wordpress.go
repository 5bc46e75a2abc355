package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/scribely/content-api/internal/models"
)

type wordpressCredentials struct {
	SiteURL     string `json:"site_url"`
	Username    string `json:"username"`
	AppPassword string `json:"app_password"`
}

type WordPressAdapter struct {
	client *http.Client
}

func NewWordPressAdapter(client *http.Client) *WordPressAdapter {
	return &WordPressAdapter{client: defaultClient(client)}
}

func (a *WordPressAdapter) Platform() string {
	return models.PlatformWordPress
}

func (a *WordPressAdapter) Publish(ctx context.Context, conn Connection, content Content) (*PublishResult, error) {
	creds, err := a.credentials(conn)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"title":   content.Title,
		"content": content.Body,
		"status":  "publish",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	url := fmt.Sprintf("%s/wp-json/wp/v2/posts", strings.TrimRight(creds.SiteURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(creds.Username, creds.AppPassword)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, transportError(a.Platform(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(a.Platform(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, a.providerError(resp.StatusCode, respBody)
	}

	var result struct {
		ID   int64  `json:"id"`
		Link string `json:"link"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || result.ID == 0 {
		return nil, &PublishError{
			Code:    CodeProvider,
			Message: "wordpress returned an unexpected response",
			Raw:     string(respBody),
		}
	}

	return &PublishResult{
		RemoteID:  fmt.Sprintf("%d", result.ID),
		RemoteURL: result.Link,
	}, nil
}

// Test fetches the authenticated user, the cheapest read the REST API
// offers under an application password.
func (a *WordPressAdapter) Test(ctx context.Context, conn Connection) (*TestResult, error) {
	creds, err := a.credentials(conn)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/wp-json/wp/v2/users/me", strings.TrimRight(creds.SiteURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.SetBasicAuth(creds.Username, creds.AppPassword)

	resp, err := a.client.Do(req)
	if err != nil {
		return &TestResult{Reachable: false, Message: "site is unreachable"}, nil
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TestResult{Reachable: false, Message: fmt.Sprintf("authentication failed (status %d)", resp.StatusCode)}, nil
	}

	var user struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(respBody, &user)
	return &TestResult{Reachable: true, Message: fmt.Sprintf("connected as %s", user.Name)}, nil
}

func (a *WordPressAdapter) credentials(conn Connection) (*wordpressCredentials, error) {
	var creds wordpressCredentials
	if err := json.Unmarshal(conn.Raw, &creds); err != nil {
		return nil, badCredentialError(a.Platform(), err)
	}
	if creds.SiteURL == "" || creds.Username == "" || creds.AppPassword == "" {
		return nil, &PublishError{Code: CodeBadCredential, Message: "wordpress connection is missing site, username or application password"}
	}
	return &creds, nil
}

func (a *WordPressAdapter) providerError(status int, body []byte) *PublishError {
	var wpErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	message := fmt.Sprintf("wordpress rejected the request (status %d)", status)
	if err := json.Unmarshal(body, &wpErr); err == nil && wpErr.Code != "" {
		message = fmt.Sprintf("wordpress rejected the request: %s", wpErr.Code)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &PublishError{Code: CodeBadCredential, Message: "wordpress rejected the stored application password", Raw: string(body)}
	}
	return &PublishError{Code: CodeProvider, Message: message, Raw: string(body)}
}
