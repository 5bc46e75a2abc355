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

func instagramConn(accountType string) Connection {
	raw, _ := json.Marshal(map[string]string{
		"ig_user_id":   "17890",
		"access_token": "ig-token",
		"account_type": accountType,
	})
	return Connection{ID: 3, Platform: "instagram", Raw: raw}
}

func TestInstagramRejectsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		conn     Connection
		content  Content
		wantCode string
	}{
		{
			name:     "personal account",
			conn:     instagramConn("personal"),
			content:  Content{Body: "x", ImageURLs: []string{"https://cdn/img.jpg"}},
			wantCode: CodeUnsupported,
		},
		{
			name:     "no images",
			conn:     instagramConn("business"),
			content:  Content{Body: "x"},
			wantCode: CodeNoMedia,
		},
		{
			name: "expired token",
			conn: func() Connection {
				c := instagramConn("business")
				c.ExpiresAt = time.Now().Add(-time.Minute)
				return c
			}(),
			content:  Content{Body: "x", ImageURLs: []string{"https://cdn/img.jpg"}},
			wantCode: CodeExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))
			defer server.Close()

			adapter := NewInstagramAdapter(server.Client(), server.URL)
			_, err := adapter.Publish(context.Background(), tt.conn, tt.content)
			if !IsCode(err, tt.wantCode) {
				t.Fatalf("error = %v, want code %s", err, tt.wantCode)
			}
			if called {
				t.Error("rejection still reached the network")
			}
		})
	}
}

func TestInstagramTwoPhasePublish(t *testing.T) {
	var containerCalled, publishCalled bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/media"):
			containerCalled = true
			var payload map[string]interface{}
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["image_url"] != "https://cdn/img.jpg" {
				t.Errorf("container image_url = %v", payload["image_url"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "container-1"})
		case strings.HasSuffix(r.URL.Path, "/media_publish"):
			publishCalled = true
			var payload map[string]string
			json.NewDecoder(r.Body).Decode(&payload)
			if payload["creation_id"] != "container-1" {
				t.Errorf("creation_id = %q, want container-1", payload["creation_id"])
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "media-9"})
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	adapter := NewInstagramAdapter(server.Client(), server.URL)
	result, err := adapter.Publish(context.Background(), instagramConn("business"), Content{
		Title:     "Caption",
		ImageURLs: []string{"https://cdn/img.jpg"},
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if !containerCalled || !publishCalled {
		t.Fatalf("container=%v publish=%v, want both", containerCalled, publishCalled)
	}
	if result.RemoteID != "media-9" {
		t.Errorf("RemoteID = %q, want media-9", result.RemoteID)
	}
}

func TestInstagramContainerFailureStopsPublish(t *testing.T) {
	publishCalled := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/media_publish") {
			publishCalled = true
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"message": "bad image", "type": "IGApiException", "code": 9004},
		})
	}))
	defer server.Close()

	adapter := NewInstagramAdapter(server.Client(), server.URL)
	_, err := adapter.Publish(context.Background(), instagramConn("business"), Content{
		ImageURLs: []string{"https://cdn/broken.jpg"},
	})
	if !IsCode(err, CodeProvider) {
		t.Fatalf("error = %v, want code %s", err, CodeProvider)
	}
	if publishCalled {
		t.Error("publish phase ran after container creation failed")
	}
}
