// Package amplitude syncs active-user and new-user counts from the
// Amplitude dashboard API using api-key/secret-key basic auth.
package amplitude

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

// Adapter syncs Amplitude metrics for one connected app.
type Adapter struct {
	cfg        config.ProviderEndpoint
	httpClient provider.HTTPDoer
	now        func() time.Time
}

// NewAdapter creates an Amplitude adapter.
func NewAdapter(cfg config.ProviderEndpoint) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: provider.NewHTTPClient(cfg.Timeout()),
		now:        time.Now,
	}
}

// Provider implements provider.Adapter.
func (a *Adapter) Provider() string { return provider.Amplitude }

type usersResponse struct {
	Data struct {
		Series  [][]float64 `json:"series"`
		XValues []string    `json:"xValues"`
	} `json:"data"`
}

// Sync fetches today's active and new user counts. Amplitude's "new"
// users populate the canonical downloads type.
func (a *Adapter) Sync(ctx context.Context, appID string, creds provider.Credentials) ([]metric.Metric, error) {
	apiKey := creds["api_key"]
	secretKey := creds["secret_key"]
	if apiKey == "" || secretKey == "" {
		return nil, errors.New("amplitude: missing api_key or secret_key")
	}

	active, err := a.fetchUserCount(ctx, apiKey, secretKey, "active")
	if err != nil {
		return nil, err
	}
	newUsers, err := a.fetchUserCount(ctx, apiKey, secretKey, "new")
	if err != nil {
		return nil, err
	}

	return []metric.Metric{
		{Type: metric.ActiveUsers, Value: active},
		{Type: metric.Canonical("new_users"), Value: newUsers},
	}, nil
}

func (a *Adapter) fetchUserCount(ctx context.Context, apiKey, secretKey, mode string) (float64, error) {
	today := a.now().UTC().Format("20060102")
	params := url.Values{}
	params.Set("start", today)
	params.Set("end", today)
	params.Set("m", mode)

	fullURL := a.cfg.BaseURL + "/api/2/users?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return 0, fmt.Errorf("amplitude: creating request: %w", err)
	}
	req.SetBasicAuth(apiKey, secretKey)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("amplitude: executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("amplitude: reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, provider.NewAPIError(provider.Amplitude, resp.StatusCode, body)
	}

	var users usersResponse
	if err := json.Unmarshal(body, &users); err != nil {
		return 0, fmt.Errorf("amplitude: parsing response: %w", err)
	}

	// One day requested: the series holds a single bucket
	var total float64
	for _, series := range users.Data.Series {
		for _, v := range series {
			total += v
		}
	}
	return total, nil
}
