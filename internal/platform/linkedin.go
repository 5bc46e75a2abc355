package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/scribely/content-api/internal/models"
)

const linkedinAPIURL = "https://api.linkedin.com"

type linkedinCredentials struct {
	AccessToken string `json:"access_token"`
	PersonURN   string `json:"person_urn"`
}

type LinkedinAdapter struct {
	client  *http.Client
	baseURL string
}

func NewLinkedinAdapter(client *http.Client, baseURL string) *LinkedinAdapter {
	if baseURL == "" {
		baseURL = linkedinAPIURL
	}
	return &LinkedinAdapter{client: defaultClient(client), baseURL: baseURL}
}

func (a *LinkedinAdapter) Platform() string {
	return models.PlatformLinkedin
}

func (a *LinkedinAdapter) Publish(ctx context.Context, conn Connection, content Content) (*PublishResult, error) {
	if conn.Expired() {
		return nil, expiredError(a.Platform())
	}

	creds, err := a.credentials(conn)
	if err != nil {
		return nil, err
	}

	shareContent := map[string]interface{}{
		"shareCommentary": map[string]string{
			"text": composeMessage(content),
		},
		"shareMediaCategory": "NONE",
	}
	if len(content.ImageURLs) > 0 {
		shareContent["shareMediaCategory"] = "ARTICLE"
		shareContent["media"] = []map[string]interface{}{
			{
				"status":      "READY",
				"originalUrl": content.ImageURLs[0],
			},
		}
	}

	payload := map[string]interface{}{
		"author":         creds.PersonURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	headers := map[string]string{
		"Authorization":             "Bearer " + creds.AccessToken,
		"X-Restli-Protocol-Version": "2.0.0",
	}

	body, status, err := postJSON(ctx, a.client, a.baseURL+"/v2/ugcPosts", headers, payload)
	if err != nil {
		return nil, transportError(a.Platform(), err)
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return nil, a.providerError(status, body)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.ID == "" {
		return nil, &PublishError{Code: CodeProvider, Message: "linkedin returned an unexpected response", Raw: string(body)}
	}

	return &PublishResult{
		RemoteID:  result.ID,
		RemoteURL: fmt.Sprintf("https://www.linkedin.com/feed/update/%s", result.ID),
	}, nil
}

func (a *LinkedinAdapter) Test(ctx context.Context, conn Connection) (*TestResult, error) {
	if conn.Expired() {
		return &TestResult{Reachable: false, Message: "access token has expired, reconnect the account"}, nil
	}

	creds, err := a.credentials(conn)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Authorization": "Bearer " + creds.AccessToken}
	body, status, err := getJSON(ctx, a.client, a.baseURL+"/v2/userinfo", headers)
	if err != nil {
		return &TestResult{Reachable: false, Message: "linkedin is unreachable"}, nil
	}
	if status != http.StatusOK {
		pe := a.providerError(status, body)
		return &TestResult{Reachable: false, Message: pe.Message}, nil
	}

	var profile struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(body, &profile)
	return &TestResult{Reachable: true, Message: fmt.Sprintf("connected as %s", profile.Name)}, nil
}

func (a *LinkedinAdapter) credentials(conn Connection) (*linkedinCredentials, error) {
	var creds linkedinCredentials
	if err := json.Unmarshal(conn.Raw, &creds); err != nil {
		return nil, badCredentialError(a.Platform(), err)
	}
	if creds.AccessToken == "" || creds.PersonURN == "" {
		return nil, &PublishError{Code: CodeBadCredential, Message: "linkedin connection is missing access token or member urn"}
	}
	return &creds, nil
}

func (a *LinkedinAdapter) providerError(status int, body []byte) *PublishError {
	var liErr struct {
		Message          string `json:"message"`
		ServiceErrorCode int    `json:"serviceErrorCode"`
	}
	if status == http.StatusUnauthorized {
		pe := expiredError(a.Platform())
		pe.Raw = string(body)
		return pe
	}
	message := fmt.Sprintf("linkedin rejected the request (status %d)", status)
	if err := json.Unmarshal(body, &liErr); err == nil && liErr.ServiceErrorCode != 0 {
		message = fmt.Sprintf("linkedin rejected the request (service error %d)", liErr.ServiceErrorCode)
	}
	return &PublishError{Code: CodeProvider, Message: message, Raw: string(body)}
}
