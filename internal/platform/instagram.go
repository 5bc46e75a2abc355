package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/scribely/content-api/internal/models"
)

const instagramGraphURL = "https://graph.instagram.com/v21.0"

type instagramCredentials struct {
	UserID      string `json:"ig_user_id"`
	AccessToken string `json:"access_token"`
	AccountType string `json:"account_type"`
}

// InstagramAdapter publishes through the mandatory two-phase container
// flow: create a media container, then publish it by id. The API can only
// post for Business accounts.
type InstagramAdapter struct {
	client  *http.Client
	baseURL string
}

func NewInstagramAdapter(client *http.Client, baseURL string) *InstagramAdapter {
	if baseURL == "" {
		baseURL = instagramGraphURL
	}
	return &InstagramAdapter{client: defaultClient(client), baseURL: baseURL}
}

func (a *InstagramAdapter) Platform() string {
	return models.PlatformInstagram
}

func (a *InstagramAdapter) Publish(ctx context.Context, conn Connection, content Content) (*PublishResult, error) {
	if conn.Expired() {
		return nil, expiredError(a.Platform())
	}

	creds, err := a.credentials(conn)
	if err != nil {
		return nil, err
	}

	if !strings.EqualFold(creds.AccountType, "business") {
		return nil, &PublishError{
			Code:    CodeUnsupported,
			Message: "instagram publishing requires a Business account",
		}
	}

	// Rejected before any network call.
	if len(content.ImageURLs) == 0 {
		return nil, &PublishError{
			Code:    CodeNoMedia,
			Message: "instagram posts require at least one image",
		}
	}

	containerID, err := a.createContainer(ctx, creds, content.ImageURLs[0], composeMessage(content))
	if err != nil {
		return nil, err
	}

	mediaID, err := a.publishContainer(ctx, creds, containerID)
	if err != nil {
		return nil, err
	}

	return &PublishResult{
		RemoteID:  mediaID,
		RemoteURL: fmt.Sprintf("https://www.instagram.com/p/%s", mediaID),
	}, nil
}

func (a *InstagramAdapter) createContainer(ctx context.Context, creds *instagramCredentials, imageURL, caption string) (string, error) {
	payload := map[string]interface{}{
		"image_url":    imageURL,
		"caption":      caption,
		"access_token": creds.AccessToken,
	}

	containerURL := fmt.Sprintf("%s/%s/media", a.baseURL, creds.UserID)
	body, status, err := postJSON(ctx, a.client, containerURL, nil, payload)
	if err != nil {
		return "", transportError(a.Platform(), err)
	}
	if status != http.StatusOK {
		return "", providerError(a.Platform(), status, body)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.ID == "" {
		return "", &PublishError{Code: CodeProvider, Message: "instagram returned no container id", Raw: string(body)}
	}
	return result.ID, nil
}

func (a *InstagramAdapter) publishContainer(ctx context.Context, creds *instagramCredentials, containerID string) (string, error) {
	payload := map[string]string{
		"creation_id":  containerID,
		"access_token": creds.AccessToken,
	}

	publishURL := fmt.Sprintf("%s/%s/media_publish", a.baseURL, creds.UserID)
	body, status, err := postJSON(ctx, a.client, publishURL, nil, payload)
	if err != nil {
		return "", transportError(a.Platform(), err)
	}
	if status != http.StatusOK {
		return "", providerError(a.Platform(), status, body)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil || result.ID == "" {
		return "", &PublishError{Code: CodeProvider, Message: "instagram returned no media id", Raw: string(body)}
	}
	return result.ID, nil
}

func (a *InstagramAdapter) Test(ctx context.Context, conn Connection) (*TestResult, error) {
	if conn.Expired() {
		return &TestResult{Reachable: false, Message: "access token has expired, reconnect the account"}, nil
	}

	creds, err := a.credentials(conn)
	if err != nil {
		return nil, err
	}

	testURL := fmt.Sprintf("%s/%s?fields=id,username&access_token=%s", a.baseURL, creds.UserID, url.QueryEscape(creds.AccessToken))
	body, status, err := getJSON(ctx, a.client, testURL, nil)
	if err != nil {
		return &TestResult{Reachable: false, Message: "instagram is unreachable"}, nil
	}
	if status != http.StatusOK {
		pe := providerError(a.Platform(), status, body)
		return &TestResult{Reachable: false, Message: pe.Message}, nil
	}

	var user struct {
		Username string `json:"username"`
	}
	_ = json.Unmarshal(body, &user)
	return &TestResult{Reachable: true, Message: fmt.Sprintf("connected as %s", user.Username)}, nil
}

func (a *InstagramAdapter) credentials(conn Connection) (*instagramCredentials, error) {
	var creds instagramCredentials
	if err := json.Unmarshal(conn.Raw, &creds); err != nil {
		return nil, badCredentialError(a.Platform(), err)
	}
	if creds.UserID == "" || creds.AccessToken == "" {
		return nil, &PublishError{Code: CodeBadCredential, Message: "instagram connection is missing user id or access token"}
	}
	return &creds, nil
}
