package platform

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error taxonomy shared by all adapters. Message is safe to render to the
// end user; Raw keeps the provider payload for logs only.
const (
	CodeExpired       = "connection_expired"
	CodeUnsupported   = "unsupported_capability"
	CodeNoMedia       = "no_media"
	CodeTransport     = "transport_error"
	CodeProvider      = "provider_rejected"
	CodeBadCredential = "bad_credentials"
)

type PublishError struct {
	Code    string
	Message string
	Raw     string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsCode reports whether err is a PublishError carrying the given code.
func IsCode(err error, code string) bool {
	var pe *PublishError
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

func expiredError(platform string) *PublishError {
	return &PublishError{
		Code:    CodeExpired,
		Message: fmt.Sprintf("%s access token has expired, reconnect the account", platform),
	}
}

func transportError(platform string, err error) *PublishError {
	return &PublishError{
		Code:    CodeTransport,
		Message: fmt.Sprintf("could not reach %s", platform),
		Raw:     err.Error(),
	}
}

func badCredentialError(platform string, err error) *PublishError {
	return &PublishError{
		Code:    CodeBadCredential,
		Message: fmt.Sprintf("stored %s credentials are malformed, reconnect the account", platform),
		Raw:     err.Error(),
	}
}

// graphError is the error envelope shared by the Facebook and Instagram
// Graph APIs.
type graphError struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// providerError normalizes a non-2xx provider body into the taxonomy. The
// raw body is preserved but never surfaced to callers.
func providerError(platform string, status int, body []byte) *PublishError {
	message := fmt.Sprintf("%s rejected the request (status %d)", platform, status)

	var ge graphError
	if err := json.Unmarshal(body, &ge); err == nil && ge.Error.Message != "" {
		// Graph API code 190 is an invalid/expired token.
		if ge.Error.Code == 190 {
			pe := expiredError(platform)
			pe.Raw = string(body)
			return pe
		}
		message = fmt.Sprintf("%s rejected the request: %s", platform, ge.Error.Type)
	}

	return &PublishError{
		Code:    CodeProvider,
		Message: message,
		Raw:     string(body),
	}
}
