package provider

import "fmt"

// APIError is returned by provider clients for non-2xx responses. The
// status code and a truncated body survive so callers (credential
// validation in particular) can classify the failure.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// NewAPIError builds an APIError with the response body truncated for
// diagnostics.
func NewAPIError(providerName string, status int, body []byte) *APIError {
	const maxBody = 200
	b := string(body)
	if len(b) > maxBody {
		b = b[:maxBody] + "..."
	}
	return &APIError{Provider: providerName, StatusCode: status, Body: b}
}
