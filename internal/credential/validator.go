// Package credential validates and masks provider credential bundles
// before they are stored or returned to API clients.
package credential

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/pkg/logger"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
)

// declaredFields lists the credential fields each provider requires.
// A bundle missing any of these is rejected before any network call.
var declaredFields = map[string][]string{
	provider.RevenueCat: {"api_key", "project_id"},
	provider.AppsFlyer:  {"api_token", "app_id"},
	provider.Adjust:     {"api_token", "app_token"},
	provider.Mixpanel:   {"service_account", "service_account_secret", "project_id"},
	provider.Amplitude:  {"api_key", "secret_key"},
	provider.AppStore:   {"key_id", "issuer_id", "private_key", "vendor_number"},
}

// Result is the outcome of validating one credential bundle.
type Result struct {
	Valid bool
	// ProjectID is the provider-side project identifier discovered during
	// a live check, when the provider exposes one.
	ProjectID string
	// Reason explains a failed validation in user-facing terms.
	Reason string
}

// AdapterSource is the subset of the adapter registry the validator needs.
type AdapterSource interface {
	Get(name string) (provider.Adapter, bool)
}

// Validator checks credential bundles, performing a live API check when
// the provider's adapter supports one.
type Validator struct {
	adapters AdapterSource
}

// NewValidator creates a validator dispatching live checks through src.
func NewValidator(src AdapterSource) *Validator {
	return &Validator{adapters: src}
}

// Validate checks the bundle for providerName. Unknown providers and
// missing fields fail without a network call; providers whose adapter
// implements Verifier get a live check on top.
func (v *Validator) Validate(ctx context.Context, providerName string, creds provider.Credentials) Result {
	required, ok := declaredFields[providerName]
	if !ok {
		return Result{Reason: fmt.Sprintf("unknown provider %q", providerName)}
	}

	var missing []string
	for _, field := range required {
		if strings.TrimSpace(creds[field]) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return Result{Reason: "missing required fields: " + strings.Join(missing, ", ")}
	}

	adapter, ok := v.adapters.Get(providerName)
	if !ok {
		// No adapter configured: field presence is the best check available.
		return Result{Valid: true}
	}
	verifier, ok := adapter.(provider.Verifier)
	if !ok {
		return Result{Valid: true}
	}

	projectID, err := verifier.Verify(ctx, creds)
	if err != nil {
		logger.Warn("live credential check failed",
			"provider", providerName,
			"error", err.Error(),
		)
		return Result{Reason: reasonFromError(err)}
	}
	return Result{Valid: true, ProjectID: projectID}
}

// reasonFromError turns a verification failure into a short user-facing
// message without leaking full response bodies.
func reasonFromError(err error) string {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
			return "invalid credentials: provider rejected the key"
		}
		return fmt.Sprintf("provider check failed with status %d", apiErr.StatusCode)
	}
	return "provider unreachable: " + err.Error()
}

// RequiredFields returns the declared field names for a provider, or nil
// for an unknown provider.
func RequiredFields(providerName string) []string {
	fields, ok := declaredFields[providerName]
	if !ok {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}
