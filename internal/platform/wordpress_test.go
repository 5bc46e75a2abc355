package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func wordpressConn(siteURL string) Connection {
	raw, _ := json.Marshal(map[string]string{
		"site_url":     siteURL,
		"username":     "editor",
		"app_password": "abcd efgh ijkl",
	})
	return Connection{ID: 1, Platform: "wordpress", Raw: raw}
}

func TestWordPressPublish(t *testing.T) {
	var gotPath, gotAuth string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, pass, _ := r.BasicAuth()
		gotAuth = pass
		json.NewDecoder(r.Body).Decode(&gotPayload)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":   42,
			"link": "https://blog.example.org/hello-world",
		})
	}))
	defer server.Close()

	adapter := NewWordPressAdapter(server.Client())
	result, err := adapter.Publish(context.Background(), wordpressConn(server.URL), Content{
		Title: "Hello World",
		Body:  "<p>First post.</p>",
	})
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if gotPath != "/wp-json/wp/v2/posts" {
		t.Errorf("request path = %q, want /wp-json/wp/v2/posts", gotPath)
	}
	if gotAuth != "abcd efgh ijkl" {
		t.Errorf("basic auth password = %q", gotAuth)
	}
	if gotPayload["status"] != "publish" {
		t.Errorf("payload status = %v, want publish", gotPayload["status"])
	}
	if result.RemoteID != "42" {
		t.Errorf("RemoteID = %q, want 42", result.RemoteID)
	}
	if result.RemoteURL != "https://blog.example.org/hello-world" {
		t.Errorf("RemoteURL = %q", result.RemoteURL)
	}
}

func TestWordPressPublishBadPassword(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{
			"code":    "incorrect_password",
			"message": "The provided password is an invalid application password.",
		})
	}))
	defer server.Close()

	adapter := NewWordPressAdapter(server.Client())
	_, err := adapter.Publish(context.Background(), wordpressConn(server.URL), Content{Title: "x", Body: "y"})
	if !IsCode(err, CodeBadCredential) {
		t.Fatalf("error = %v, want code %s", err, CodeBadCredential)
	}
}

func TestWordPressCredentialsMissingFields(t *testing.T) {
	adapter := NewWordPressAdapter(nil)
	conn := Connection{Raw: []byte(`{"site_url":"https://blog.example.org"}`)}

	_, err := adapter.Publish(context.Background(), conn, Content{Title: "x"})
	if !IsCode(err, CodeBadCredential) {
		t.Fatalf("error = %v, want code %s", err, CodeBadCredential)
	}
}

func TestWordPressTest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wp-json/wp/v2/users/me" {
			t.Errorf("request path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"name": "Editor"})
	}))
	defer server.Close()

	adapter := NewWordPressAdapter(server.Client())
	result, err := adapter.Test(context.Background(), wordpressConn(server.URL))
	if err != nil {
		t.Fatalf("Test returned error: %v", err)
	}
	if !result.Reachable {
		t.Errorf("Reachable = false, want true")
	}
}
