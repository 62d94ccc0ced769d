package revenuecat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
)

// Client is a RevenueCat API v2 client scoped to one API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient provider.HTTPDoer
}

// NewClient creates a RevenueCat client. Credentials are per connected
// app, so a client is constructed per sync run, not per process.
func NewClient(baseURL, apiKey string, httpClient provider.HTTPDoer) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// doGet makes an authenticated GET request and decodes the JSON response
// into out. Non-2xx responses become *provider.APIError.
func (c *Client) doGet(ctx context.Context, path string, params url.Values, out any) error {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return provider.NewAPIError(provider.RevenueCat, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

// ListProjects fetches the projects visible to the API key. This is the
// cheap endpoint used for live credential verification.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var page projectPage
	if err := c.doGet(ctx, "/projects", nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// ListCustomers fetches one page of a project's customer list.
// startingAfter is the cursor from the previous page ("" for the first).
func (c *Client) ListCustomers(ctx context.Context, projectID, startingAfter string, limit int) (*CustomerPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	if startingAfter != "" {
		params.Set("starting_after", startingAfter)
	}

	var page CustomerPage
	path := fmt.Sprintf("/projects/%s/customers", projectID)
	if err := c.doGet(ctx, path, params, &page); err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return &page, nil
}

// ListSubscriptions fetches all subscriptions for one customer.
func (c *Client) ListSubscriptions(ctx context.Context, projectID, customerID string) ([]Subscription, error) {
	var page subscriptionPage
	path := fmt.Sprintf("/projects/%s/customers/%s/subscriptions", projectID, customerID)
	if err := c.doGet(ctx, path, nil, &page); err != nil {
		return nil, fmt.Errorf("listing subscriptions for %s: %w", customerID, err)
	}
	return page.Items, nil
}

// ListPurchases fetches all one-time purchases for one customer.
func (c *Client) ListPurchases(ctx context.Context, projectID, customerID string) ([]Purchase, error) {
	var page purchasePage
	path := fmt.Sprintf("/projects/%s/customers/%s/purchases", projectID, customerID)
	if err := c.doGet(ctx, path, nil, &page); err != nil {
		return nil, fmt.Errorf("listing purchases for %s: %w", customerID, err)
	}
	return page.Items, nil
}

// GetOverview fetches the project-level metrics overview, used as the
// final revenue fallback when customer-level fetches produced nothing.
func (c *Client) GetOverview(ctx context.Context, projectID string) ([]OverviewMetric, error) {
	var resp overviewResponse
	path := fmt.Sprintf("/projects/%s/metrics/overview", projectID)
	if err := c.doGet(ctx, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching metrics overview: %w", err)
	}
	return resp.Metrics, nil
}
