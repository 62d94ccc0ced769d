// Package appstore syncs sales metrics from the App Store Connect API.
// Every call requires an ES256-signed JWT; sales reports lag 24-48 hours
// and arrive as gzipped tab-separated files.
package appstore

import (
	"context"
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

// Sales reports for "today" do not exist yet; two days back is the most
// recent date guaranteed to be available.
const reportLagDays = 2

// Adapter syncs App Store Connect sales metrics for one connected app.
type Adapter struct {
	cfg        config.ProviderEndpoint
	httpClient provider.HTTPDoer
	tokens     *TokenSource
	now        func() time.Time
}

// NewAdapter creates an App Store Connect adapter sharing one token cache
// across all connected apps.
func NewAdapter(cfg config.ProviderEndpoint) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: provider.NewHTTPClient(cfg.Timeout()),
		tokens:     NewTokenSource(),
		now:        time.Now,
	}
}

// Provider implements provider.Adapter.
func (a *Adapter) Provider() string { return provider.AppStore }

// Sync downloads and parses the most recent daily sales report.
func (a *Adapter) Sync(ctx context.Context, appID string, creds provider.Credentials) ([]metric.Metric, error) {
	keyID := creds["key_id"]
	issuerID := creds["issuer_id"]
	privateKey := creds["private_key"]
	vendorNumber := creds["vendor_number"]
	if keyID == "" || issuerID == "" || privateKey == "" || vendorNumber == "" {
		return nil, errors.New("appstore: missing key_id, issuer_id, private_key or vendor_number")
	}

	token, err := a.tokens.Token(keyID, issuerID, privateKey)
	if err != nil {
		return nil, err
	}

	reportDate := a.now().UTC().AddDate(0, 0, -reportLagDays).Format("2006-01-02")
	params := url.Values{}
	params.Set("filter[frequency]", "DAILY")
	params.Set("filter[reportType]", "SALES")
	params.Set("filter[reportSubType]", "SUMMARY")
	params.Set("filter[vendorNumber]", vendorNumber)
	params.Set("filter[reportDate]", reportDate)

	fullURL := a.cfg.BaseURL + "/v1/salesReports?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("appstore: creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/a-gzip")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("appstore: executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, provider.NewAPIError(provider.AppStore, resp.StatusCode, body)
	}

	units, proceeds, err := parseSalesReport(resp.Body)
	if err != nil {
		return nil, err
	}

	return []metric.Metric{
		{Type: metric.Canonical("units"), Value: units, Metadata: map[string]any{"report_date": reportDate}},
		{Type: metric.Canonical("proceeds"), Value: proceeds, Metadata: map[string]any{"report_date": reportDate}},
	}, nil
}

// Verify implements provider.Verifier: a zero-byte report request proves
// the key signs and the issuer accepts it. 404 means "no report for that
// date", which still proves the credentials work.
func (a *Adapter) Verify(ctx context.Context, creds provider.Credentials) (string, error) {
	_, err := a.Sync(ctx, "", creds)
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return creds["vendor_number"], nil
	}
	if err != nil {
		return "", err
	}
	return creds["vendor_number"], nil
}
