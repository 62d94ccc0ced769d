package revenuecat

import (
	"strings"
	"time"
)

// EstimatePrice guesses a subscription price from substrings in the
// product identifier. This is the last link of the revenue fallback chain
// and a known accuracy risk: product naming conventions are not a price
// source, but some accounts expose no price fields at all.
func EstimatePrice(productID string) float64 {
	id := strings.ToLower(productID)
	switch {
	case strings.Contains(id, "lifetime"):
		return 99.99
	case strings.Contains(id, "yearly"), strings.Contains(id, "annual"):
		return 49.99
	case strings.Contains(id, "monthly"):
		return 9.99
	case strings.Contains(id, "weekly"):
		return 2.99
	default:
		return 4.99
	}
}

// SubscriptionRevenue resolves the revenue for a subscription through an
// ordered fallback chain: explicit price, lifetime revenue reported by the
// API, then the product-identifier heuristic.
func SubscriptionRevenue(sub Subscription) float64 {
	if sub.Price != nil && sub.Price.Amount > 0 {
		return sub.Price.Amount
	}
	if sub.TotalRevenueInUSD > 0 {
		return sub.TotalRevenueInUSD
	}
	return EstimatePrice(sub.ProductID)
}

// IsActive reports whether a subscription currently grants access.
// Three independent signals are accepted, any one is sufficient: the
// explicit gives_access flag, an "active" status, or a period end
// timestamp that has not passed yet.
func IsActive(sub Subscription, now time.Time) bool {
	if sub.GivesAccess {
		return true
	}
	if sub.Status == "active" {
		return true
	}
	return sub.CurrentPeriodEndsAt > now.UnixMilli()
}
