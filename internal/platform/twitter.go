package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/scribely/content-api/internal/models"
)

const twitterAPIURL = "https://api.twitter.com"

// tweetMaxRunes is the hard length limit the API enforces on tweet text.
const tweetMaxRunes = 280

type twitterCredentials struct {
	AccessToken string `json:"access_token"`
}

type TwitterAdapter struct {
	client  *http.Client
	baseURL string
}

func NewTwitterAdapter(client *http.Client, baseURL string) *TwitterAdapter {
	if baseURL == "" {
		baseURL = twitterAPIURL
	}
	return &TwitterAdapter{client: defaultClient(client), baseURL: baseURL}
}

func (a *TwitterAdapter) Platform() string {
	return models.PlatformTwitter
}

func (a *TwitterAdapter) Publish(ctx context.Context, conn Connection, content Content) (*PublishResult, error) {
	if conn.Expired() {
		return nil, expiredError(a.Platform())
	}

	creds, err := a.credentials(conn)
	if err != nil {
		return nil, err
	}

	text := truncateRunes(composeMessage(content), tweetMaxRunes)
	payload := map[string]string{"text": text}
	headers := map[string]string{"Authorization": "Bearer " + creds.AccessToken}

	body, status, err := postJSON(ctx, a.client, a.baseURL+"/2/tweets", headers, payload)
	if err != nil {
		return nil, transportError(a.Platform(), err)
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, a.providerError(status, body)
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.Data.ID == "" {
		return nil, &PublishError{Code: CodeProvider, Message: "twitter returned an unexpected response", Raw: string(body)}
	}

	return &PublishResult{
		RemoteID:  result.Data.ID,
		RemoteURL: fmt.Sprintf("https://twitter.com/i/web/status/%s", result.Data.ID),
	}, nil
}

func (a *TwitterAdapter) Test(ctx context.Context, conn Connection) (*TestResult, error) {
	if conn.Expired() {
		return &TestResult{Reachable: false, Message: "access token has expired, reconnect the account"}, nil
	}

	creds, err := a.credentials(conn)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Authorization": "Bearer " + creds.AccessToken}
	body, status, err := getJSON(ctx, a.client, a.baseURL+"/2/users/me", headers)
	if err != nil {
		return &TestResult{Reachable: false, Message: "twitter is unreachable"}, nil
	}
	if status != http.StatusOK {
		pe := a.providerError(status, body)
		return &TestResult{Reachable: false, Message: pe.Message}, nil
	}

	var result struct {
		Data struct {
			Username string `json:"username"`
		} `json:"data"`
	}
	_ = json.Unmarshal(body, &result)
	return &TestResult{Reachable: true, Message: fmt.Sprintf("connected as @%s", result.Data.Username)}, nil
}

func (a *TwitterAdapter) credentials(conn Connection) (*twitterCredentials, error) {
	var creds twitterCredentials
	if err := json.Unmarshal(conn.Raw, &creds); err != nil {
		return nil, badCredentialError(a.Platform(), err)
	}
	if creds.AccessToken == "" {
		return nil, &PublishError{Code: CodeBadCredential, Message: "twitter connection is missing access token"}
	}
	return &creds, nil
}

func (a *TwitterAdapter) providerError(status int, body []byte) *PublishError {
	if status == http.StatusUnauthorized {
		pe := expiredError(a.Platform())
		pe.Raw = string(body)
		return pe
	}

	var twErr struct {
		Title  string `json:"title"`
		Detail string `json:"detail"`
	}
	message := fmt.Sprintf("twitter rejected the request (status %d)", status)
	if err := json.Unmarshal(body, &twErr); err == nil && twErr.Title != "" {
		message = fmt.Sprintf("twitter rejected the request: %s", twErr.Title)
	}
	return &PublishError{Code: CodeProvider, Message: message, Raw: string(body)}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
