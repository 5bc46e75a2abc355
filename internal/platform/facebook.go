package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/scribely/content-api/internal/models"
)

const facebookGraphURL = "https://graph.facebook.com/v21.0"

type facebookCredentials struct {
	PageID      string `json:"page_id"`
	AccessToken string `json:"access_token"`
}

type FacebookAdapter struct {
	client  *http.Client
	baseURL string
}

func NewFacebookAdapter(client *http.Client, baseURL string) *FacebookAdapter {
	if baseURL == "" {
		baseURL = facebookGraphURL
	}
	return &FacebookAdapter{client: defaultClient(client), baseURL: baseURL}
}

func (a *FacebookAdapter) Platform() string {
	return models.PlatformFacebook
}

func (a *FacebookAdapter) Publish(ctx context.Context, conn Connection, content Content) (*PublishResult, error) {
	if conn.Expired() {
		return nil, expiredError(a.Platform())
	}

	creds, err := a.credentials(conn)
	if err != nil {
		return nil, err
	}

	message := composeMessage(content)

	if len(content.ImageURLs) > 0 {
		result, err := a.publishPhoto(ctx, creds, message, content.ImageURLs[0])
		if err == nil {
			return result, nil
		}
		// Photo upload failures degrade to a link post instead of
		// failing the whole attempt.
		slog.Info("facebook photo upload failed, falling back to link post", "error", err.Error())
		return a.publishFeed(ctx, creds, message, content.ImageURLs[0])
	}

	return a.publishFeed(ctx, creds, message, "")
}

func (a *FacebookAdapter) publishPhoto(ctx context.Context, creds *facebookCredentials, message, imageURL string) (*PublishResult, error) {
	imageBytes, err := a.fetchImage(ctx, imageURL)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("source", "photo")
	if err != nil {
		return nil, fmt.Errorf("error building multipart body: %w", err)
	}
	if _, err := part.Write(imageBytes); err != nil {
		return nil, fmt.Errorf("error building multipart body: %w", err)
	}
	_ = writer.WriteField("message", message)
	_ = writer.WriteField("access_token", creds.AccessToken)
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("error building multipart body: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/%s/photos", a.baseURL, creds.PageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, transportError(a.Platform(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(a.Platform(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, providerError(a.Platform(), resp.StatusCode, respBody)
	}

	var result struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || result.ID == "" {
		return nil, &PublishError{Code: CodeProvider, Message: "facebook returned an unexpected response", Raw: string(respBody)}
	}

	remoteID := result.PostID
	if remoteID == "" {
		remoteID = result.ID
	}
	return &PublishResult{
		RemoteID:  remoteID,
		RemoteURL: fmt.Sprintf("https://www.facebook.com/%s", remoteID),
	}, nil
}

func (a *FacebookAdapter) publishFeed(ctx context.Context, creds *facebookCredentials, message, link string) (*PublishResult, error) {
	form := url.Values{}
	form.Set("message", message)
	form.Set("access_token", creds.AccessToken)
	if link != "" {
		form.Set("link", link)
	}

	feedURL := fmt.Sprintf("%s/%s/feed", a.baseURL, creds.PageID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, feedURL, bytes.NewBufferString(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, transportError(a.Platform(), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(a.Platform(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, providerError(a.Platform(), resp.StatusCode, respBody)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil || result.ID == "" {
		return nil, &PublishError{Code: CodeProvider, Message: "facebook returned an unexpected response", Raw: string(respBody)}
	}

	return &PublishResult{
		RemoteID:  result.ID,
		RemoteURL: fmt.Sprintf("https://www.facebook.com/%s", result.ID),
	}, nil
}

func (a *FacebookAdapter) Test(ctx context.Context, conn Connection) (*TestResult, error) {
	if conn.Expired() {
		return &TestResult{Reachable: false, Message: "access token has expired, reconnect the account"}, nil
	}

	creds, err := a.credentials(conn)
	if err != nil {
		return nil, err
	}

	testURL := fmt.Sprintf("%s/%s?fields=id,name&access_token=%s", a.baseURL, creds.PageID, url.QueryEscape(creds.AccessToken))
	body, status, err := getJSON(ctx, a.client, testURL, nil)
	if err != nil {
		return &TestResult{Reachable: false, Message: "facebook is unreachable"}, nil
	}
	if status != http.StatusOK {
		pe := providerError(a.Platform(), status, body)
		return &TestResult{Reachable: false, Message: pe.Message}, nil
	}

	var page struct {
		Name string `json:"name"`
	}
	_ = json.Unmarshal(body, &page)
	return &TestResult{Reachable: true, Message: fmt.Sprintf("connected to page %s", page.Name)}, nil
}

func (a *FacebookAdapter) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, transportError(a.Platform(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code fetching image: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (a *FacebookAdapter) credentials(conn Connection) (*facebookCredentials, error) {
	var creds facebookCredentials
	if err := json.Unmarshal(conn.Raw, &creds); err != nil {
		return nil, badCredentialError(a.Platform(), err)
	}
	if creds.PageID == "" || creds.AccessToken == "" {
		return nil, &PublishError{Code: CodeBadCredential, Message: "facebook connection is missing page id or access token"}
	}
	return &creds, nil
}

func composeMessage(content Content) string {
	if content.Title == "" {
		return content.Body
	}
	if content.Body == "" {
		return content.Title
	}
	return content.Title + "\n\n" + content.Body
}
