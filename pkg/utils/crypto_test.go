package utils

import (
	"testing"
	"time"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	plaintext := `{"site_url":"https://blog.example.net","username":"editor"}`

	sealed, err := Encrypt([]byte(plaintext), testKey)
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}
	if sealed == plaintext {
		t.Fatal("ciphertext equals plaintext")
	}

	opened, err := Decrypt(sealed, testKey)
	if err != nil {
		t.Fatalf("Decrypt returned error: %v", err)
	}
	if opened != plaintext {
		t.Errorf("round trip = %q, want %q", opened, plaintext)
	}
}

func TestDecryptRejectsWrongKey(t *testing.T) {
	sealed, err := Encrypt([]byte("secret"), testKey)
	if err != nil {
		t.Fatalf("Encrypt returned error: %v", err)
	}

	other := []byte("fedcba9876543210fedcba9876543210")
	if _, err := Decrypt(sealed, other); err == nil {
		t.Error("Decrypt accepted a ciphertext sealed under a different key")
	}
}

func TestDecryptRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "not base64!!", "c2hvcnQ="} {
		if _, err := Decrypt(in, testKey); err == nil {
			t.Errorf("Decrypt(%q) succeeded", in)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	secret := "jwt-test-secret"

	token, err := GenerateToken(secret, "42", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken returned error: %v", err)
	}
	if claims.UserID != "42" {
		t.Errorf("UserID = %q, want 42", claims.UserID)
	}

	if _, err := ValidateToken("other-secret", token); err == nil {
		t.Error("token validated under the wrong secret")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	secret := "jwt-test-secret"

	token, err := GenerateToken(secret, "42", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if _, err := ValidateToken(secret, token); err == nil {
		t.Error("expired token validated")
	}
}

func TestGenerateRandomKeyUnique(t *testing.T) {
	a, err := GenerateRandomKey(32)
	if err != nil {
		t.Fatalf("GenerateRandomKey returned error: %v", err)
	}
	b, err := GenerateRandomKey(32)
	if err != nil {
		t.Fatalf("GenerateRandomKey returned error: %v", err)
	}
	if a == b {
		t.Error("two generated keys are identical")
	}
}
