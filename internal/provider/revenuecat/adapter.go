package revenuecat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/config"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/metric"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/pkg/logger"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
)

// Adapter syncs RevenueCat metrics for one connected app per call.
// The per-customer fan-out is the most expensive sync in the system, so
// both the total customers scanned and the customers detailed are bounded
// by configurable hard caps; exceeding a cap truncates silently.
type Adapter struct {
	cfg        config.RevenueCatConfig
	httpClient provider.HTTPDoer

	// now is stubbed in tests
	now func() time.Time
}

// NewAdapter creates a RevenueCat adapter.
func NewAdapter(cfg config.RevenueCatConfig) *Adapter {
	return &Adapter{
		cfg:        cfg,
		httpClient: provider.NewHTTPClient(cfg.Timeout()),
		now:        time.Now,
	}
}

// Provider implements provider.Adapter.
func (a *Adapter) Provider() string { return provider.RevenueCat }

// Sync implements provider.Adapter. It paginates the project's customer
// list, detail-fetches subscriptions and one-time purchases for the first
// MaxCustomersDetailed customers with bounded concurrency, and falls back
// to the project-level metrics overview when customer-level revenue comes
// out zero.
func (a *Adapter) Sync(ctx context.Context, appID string, creds provider.Credentials) ([]metric.Metric, error) {
	apiKey := creds["api_key"]
	projectID := creds["project_id"]
	if apiKey == "" || projectID == "" {
		return nil, errors.New("revenuecat: missing api_key or project_id")
	}
	client := NewClient(a.cfg.BaseURL, apiKey, a.httpClient)

	customers, err := a.listAllCustomers(ctx, client, projectID)
	if err != nil {
		return nil, err
	}

	activeSubs, revenue := a.collectDetails(ctx, client, projectID, customers)

	// Customer-level fetches can come back empty on accounts that restrict
	// the v2 customer endpoints; the overview rollup is the last resort.
	if revenue == 0 {
		if overview, err := client.GetOverview(ctx, projectID); err != nil {
			logger.Warn("revenuecat overview fallback failed", "app_id", appID, "error", err.Error())
		} else {
			for _, m := range overview {
				switch metric.Canonical(m.ID) {
				case metric.Revenue:
					revenue = m.Value
				case metric.ActiveSubscribers:
					if activeSubs == 0 {
						activeSubs = int(m.Value)
					}
				}
			}
		}
	}

	return []metric.Metric{
		{Type: metric.Downloads, Value: float64(len(customers))},
		{Type: metric.ActiveSubscribers, Value: float64(activeSubs)},
		{Type: metric.Revenue, Value: revenue},
		{Type: metric.MRR, Value: metric.MRRFromRevenue(revenue)},
	}, nil
}

// listAllCustomers walks the paginated customer list up to the page and
// total-customer caps.
func (a *Adapter) listAllCustomers(ctx context.Context, client *Client, projectID string) ([]Customer, error) {
	maxCustomers := a.cfg.MaxCustomerPages * a.cfg.CustomersPerPage

	var customers []Customer
	cursor := ""
	for page := 0; page < a.cfg.MaxCustomerPages; page++ {
		p, err := client.ListCustomers(ctx, projectID, cursor, a.cfg.CustomersPerPage)
		if err != nil {
			return nil, fmt.Errorf("revenuecat: %w", err)
		}
		customers = append(customers, p.Items...)
		if len(customers) >= maxCustomers {
			customers = customers[:maxCustomers]
			break
		}
		if p.NextPage == "" || len(p.Items) == 0 {
			break
		}
		cursor = p.Items[len(p.Items)-1].ID
	}
	return customers, nil
}

// collectDetails runs the N+1 subscription/purchase fan-out for the first
// MaxCustomersDetailed customers as a bounded worker pool. Individual
// customer failures are logged and skipped; the batch never aborts.
func (a *Adapter) collectDetails(ctx context.Context, client *Client, projectID string, customers []Customer) (activeSubs int, revenue float64) {
	n := len(customers)
	if n > a.cfg.MaxCustomersDetailed {
		n = a.cfg.MaxCustomersDetailed
	}
	if n == 0 {
		return 0, 0
	}

	workers := a.cfg.DetailConcurrency
	if workers <= 0 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	now := a.now()
	jobs := make(chan Customer, n)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cust := range jobs {
				subs, err := client.ListSubscriptions(ctx, projectID, cust.ID)
				if err != nil {
					logger.Warn("revenuecat subscription fetch failed", "customer", cust.ID, "error", err.Error())
					continue
				}
				purchases, err := client.ListPurchases(ctx, projectID, cust.ID)
				if err != nil {
					logger.Warn("revenuecat purchase fetch failed", "customer", cust.ID, "error", err.Error())
				}

				var localActive int
				var localRevenue float64
				for _, sub := range subs {
					if IsActive(sub, now) {
						localActive++
						localRevenue += SubscriptionRevenue(sub)
					}
				}
				for _, p := range purchases {
					if p.RevenueInUSD > 0 {
						localRevenue += p.RevenueInUSD
					} else {
						localRevenue += EstimatePrice(p.ProductID)
					}
				}

				mu.Lock()
				activeSubs += localActive
				revenue += localRevenue
				mu.Unlock()
			}
		}()
	}

	for _, cust := range customers[:n] {
		jobs <- cust
	}
	close(jobs)
	wg.Wait()

	return activeSubs, revenue
}

// Verify implements provider.Verifier using the project list endpoint.
func (a *Adapter) Verify(ctx context.Context, creds provider.Credentials) (string, error) {
	apiKey := creds["api_key"]
	if apiKey == "" {
		return "", errors.New("revenuecat: missing api_key")
	}
	client := NewClient(a.cfg.BaseURL, apiKey, a.httpClient)
	projects, err := client.ListProjects(ctx)
	if err != nil {
		return "", err
	}
	if len(projects) == 0 {
		return "", nil
	}
	return projects[0].ID, nil
}
