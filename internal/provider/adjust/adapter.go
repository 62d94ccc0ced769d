// Package adjust syncs daily KPIs from the Adjust report service.
package adjust

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/config"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/metric"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
)

// Adapter syncs Adjust metrics for one connected app.
type Adapter struct {
	cfg        config.ProviderEndpoint
	httpClient provider.HTTPDoer
}

// NewAdapter creates an Adjust adapter.
func NewAdapter(cfg config.ProviderEndpoint) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: provider.NewHTTPClient(cfg.Timeout()),
	}
}

// Provider implements provider.Adapter.
func (a *Adapter) Provider() string { return provider.Adjust }

type reportResponse struct {
	Totals struct {
		Installs float64 `json:"installs"`
		Clicks   float64 `json:"clicks"`
		Revenue  float64 `json:"all_revenue"`
	} `json:"totals"`
}

// Sync fetches today's KPI report. Adjust's "installs" populate the
// canonical downloads type, same as AppsFlyer's.
func (a *Adapter) Sync(ctx context.Context, appID string, creds provider.Credentials) ([]metric.Metric, error) {
	token := creds["api_token"]
	appToken := creds["app_token"]
	if token == "" || appToken == "" {
		return nil, errors.New("adjust: missing api_token or app_token")
	}

	params := url.Values{}
	params.Set("app_token__in", appToken)
	params.Set("date_period", "today")
	params.Set("metrics", "installs,clicks,all_revenue")

	fullURL := a.cfg.BaseURL + "/reports-service/report?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("adjust: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adjust: executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("adjust: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, provider.NewAPIError(provider.Adjust, resp.StatusCode, body)
	}

	var report reportResponse
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("adjust: parsing report: %w", err)
	}

	return []metric.Metric{
		{Type: metric.Canonical("installs"), Value: report.Totals.Installs},
		{Type: metric.Clicks, Value: report.Totals.Clicks},
		{Type: metric.Canonical("all_revenue"), Value: report.Totals.Revenue},
	}, nil
}
