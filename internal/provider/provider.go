// Package provider defines the contracts shared by every third-party
// analytics adapter and the registry the sync orchestrator dispatches
// through.
package provider

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/metric"
)

// Provider identifiers. These values are persisted on connected_apps rows,
// so they are part of the storage contract.
const (
	RevenueCat = "revenuecat"
	AppsFlyer  = "appsflyer"
	Adjust     = "adjust"
	Mixpanel   = "mixpanel"
	Amplitude  = "amplitude"
	AppStore   = "appstore"
)

// Credentials is an opaque provider-specific credential bundle. The raw
// bundle is only ever held by sync and validation code paths; API responses
// carry the masked copy instead.
type Credentials map[string]string

// Adapter syncs one provider's metrics for "today". Implementations return
// a descriptive error instead of panicking; a failing adapter degrades that
// provider's metrics for the run and never blocks other providers.
type Adapter interface {
	Provider() string
	Sync(ctx context.Context, appID string, creds Credentials) ([]metric.Metric, error)
}

// Verifier is implemented by adapters whose provider exposes a cheap
// endpoint suitable for a live credential check. It returns the canonical
// project identifier when the provider has one.
type Verifier interface {
	Verify(ctx context.Context, creds Credentials) (projectID string, err error)
}

// HTTPDoer is the interface for executing HTTP requests. Satisfied by
// *http.Client; tests substitute fakes.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewHTTPClient returns the HTTP client used for provider API calls:
// a conservative request timeout and no automatic retry. A failed call
// degrades that provider's metrics for that run only.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Registry holds the configured adapters keyed by provider identifier.
type Registry struct {
	adapters map[string]Adapter
}

// NewRegistry creates a registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Provider()] = a
	}
	return r
}

// Register adds or replaces an adapter.
func (r *Registry) Register(a Adapter) {
	r.adapters[a.Provider()] = a
}

// Get returns the adapter for a provider identifier.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the registered provider identifiers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
