// Package mixpanel syncs active-user counts from the Mixpanel query API
// using service-account basic auth.
package mixpanel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/config"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/metric"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
)

// Adapter syncs Mixpanel metrics for one connected app.
type Adapter struct {
	cfg        config.ProviderEndpoint
	httpClient provider.HTTPDoer
	now        func() time.Time
}

// NewAdapter creates a Mixpanel adapter.
func NewAdapter(cfg config.ProviderEndpoint) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: provider.NewHTTPClient(cfg.Timeout()),
		now:        time.Now,
	}
}

// Provider implements provider.Adapter.
func (a *Adapter) Provider() string { return provider.Mixpanel }

type segmentationResponse struct {
	Data struct {
		Values map[string]map[string]float64 `json:"values"`
	} `json:"data"`
}

// Sync queries today's unique event count as the active-user metric.
func (a *Adapter) Sync(ctx context.Context, appID string, creds provider.Credentials) ([]metric.Metric, error) {
	username := creds["service_account"]
	secret := creds["service_account_secret"]
	projectID := creds["project_id"]
	if username == "" || secret == "" || projectID == "" {
		return nil, errors.New("mixpanel: missing service_account, service_account_secret or project_id")
	}

	today := a.now().UTC().Format("2006-01-02")
	params := url.Values{}
	params.Set("project_id", projectID)
	params.Set("event", "$any_event")
	params.Set("type", "unique")
	params.Set("unit", "day")
	params.Set("from_date", today)
	params.Set("to_date", today)

	fullURL := a.cfg.BaseURL + "/api/query/segmentation?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("mixpanel: creating request: %w", err)
	}
	req.SetBasicAuth(username, secret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mixpanel: executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("mixpanel: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, provider.NewAPIError(provider.Mixpanel, resp.StatusCode, body)
	}

	var seg segmentationResponse
	if err := json.Unmarshal(body, &seg); err != nil {
		return nil, fmt.Errorf("mixpanel: parsing response: %w", err)
	}

	var activeUsers float64
	for _, series := range seg.Data.Values {
		if v, ok := series[today]; ok {
			activeUsers += v
		}
	}

	return []metric.Metric{
		{Type: metric.ActiveUsers, Value: activeUsers},
	}, nil
}
