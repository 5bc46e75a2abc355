package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func facebookConn(expiresAt time.Time) Connection {
	raw, _ := json.Marshal(map[string]string{
		"page_id":      "123456",
		"access_token": "page-token",
	})
	return Connection{ID: 2, Platform: "facebook", Raw: raw, ExpiresAt: expiresAt}
}

func TestFacebookPublishExpiredToken(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	adapter := NewFacebookAdapter(server.Client(), server.URL)
	conn := facebookConn(time.Now().Add(-time.Hour))

	_, err := adapter.Publish(context.Background(), conn, Content{Title: "t", Body: "b"})
	if !IsCode(err, CodeExpired) {
		t.Fatalf("error = %v, want code %s", err, CodeExpired)
	}
	if called {
		t.Error("expired connection still reached the network")
	}
}

func TestFacebookPublishTextOnly(t *testing.T) {
	var gotPath, gotMessage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		r.ParseForm()
		gotMessage = r.FormValue("message")
		json.NewEncoder(w).Encode(map[string]string{"id": "123456_789"})
	}))
	defer server.Close()

	adapter := NewFacebookAdapter(server.Client(), server.URL)
	result, err := adapter.Publish(context.Background(), facebookConn(time.Time{}), Content{
		Title: "Launch",
		Body:  "We shipped.",
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if gotPath != "/123456/feed" {
		t.Errorf("request path = %q, want /123456/feed", gotPath)
	}
	if gotMessage != "Launch\n\nWe shipped." {
		t.Errorf("message = %q", gotMessage)
	}
	if result.RemoteID != "123456_789" {
		t.Errorf("RemoteID = %q", result.RemoteID)
	}
}

func TestFacebookPhotoFallsBackToLinkPost(t *testing.T) {
	var feedCalled bool
	var gotLink string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/photos"):
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]interface{}{"message": "upload failed", "type": "OAuthException", "code": 100},
			})
		case strings.HasSuffix(r.URL.Path, "/feed"):
			feedCalled = true
			r.ParseForm()
			gotLink = r.FormValue("link")
			json.NewEncoder(w).Encode(map[string]string{"id": "123456_790"})
		case r.URL.Path == "/image.jpg":
			w.Write([]byte("jpeg-bytes"))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	adapter := NewFacebookAdapter(server.Client(), server.URL)
	result, err := adapter.Publish(context.Background(), facebookConn(time.Time{}), Content{
		Title:     "Post",
		Body:      "with image",
		ImageURLs: []string{server.URL + "/image.jpg"},
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if !feedCalled {
		t.Fatal("photo failure did not fall back to the feed endpoint")
	}
	if gotLink != server.URL+"/image.jpg" {
		t.Errorf("fallback link = %q", gotLink)
	}
	if result.RemoteID != "123456_790" {
		t.Errorf("RemoteID = %q", result.RemoteID)
	}
}

func TestFacebookGraphCode190MapsToExpired(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "token invalid", "type": "OAuthException", "code": 190},
		})
	}))
	defer server.Close()

	adapter := NewFacebookAdapter(server.Client(), server.URL)
	_, err := adapter.Publish(context.Background(), facebookConn(time.Time{}), Content{Body: "hi"})
	if !IsCode(err, CodeExpired) {
		t.Fatalf("error = %v, want code %s", err, CodeExpired)
	}
}

func TestComposeMessage(t *testing.T) {
	tests := []struct {
		name    string
		content Content
		want    string
	}{
		{"both", Content{Title: "T", Body: "B"}, "T\n\nB"},
		{"title only", Content{Title: "T"}, "T"},
		{"body only", Content{Body: "B"}, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := composeMessage(tt.content); got != tt.want {
				t.Errorf("composeMessage = %q, want %q", got, tt.want)
			}
		})
	}
}
