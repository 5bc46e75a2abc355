package platform

import (
	"errors"
	"testing"
	"time"
)

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry(
		NewWordPressAdapter(nil),
		NewTwitterAdapter(nil, ""),
	)

	if _, err := registry.Get("wordpress"); err != nil {
		t.Fatalf("Get(wordpress) returned error: %v", err)
	}

	_, err := registry.Get("myspace")
	if !IsCode(err, CodeUnsupported) {
		t.Fatalf("Get(myspace) error = %v, want code %s", err, CodeUnsupported)
	}
}

func TestConnectionExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"zero means no expiry", time.Time{}, false},
		{"future", time.Now().Add(time.Hour), false},
		{"past", time.Now().Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := Connection{ExpiresAt: tt.expiresAt}
			if got := conn.Expired(); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsCodeOnWrappedError(t *testing.T) {
	err := &PublishError{Code: CodeNoMedia, Message: "no media"}

	if !IsCode(err, CodeNoMedia) {
		t.Error("IsCode failed on direct PublishError")
	}
	if IsCode(err, CodeExpired) {
		t.Error("IsCode matched the wrong code")
	}
	if IsCode(errors.New("plain"), CodeNoMedia) {
		t.Error("IsCode matched a non-PublishError")
	}
}

func TestProviderErrorGraph190(t *testing.T) {
	body := []byte(`{"error":{"message":"Invalid OAuth access token","type":"OAuthException","code":190}}`)
	pe := providerError("facebook", 401, body)
	if pe.Code != CodeExpired {
		t.Errorf("code = %s, want %s", pe.Code, CodeExpired)
	}

	body = []byte(`{"error":{"message":"Unsupported request","type":"GraphMethodException","code":100}}`)
	pe = providerError("facebook", 400, body)
	if pe.Code != CodeProvider {
		t.Errorf("code = %s, want %s", pe.Code, CodeProvider)
	}
}
