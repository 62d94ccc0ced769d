package metric

import "strings"

// canonicalFields maps provider-native field names to the canonical type.
// Every adapter goes through this table instead of re-deriving the
// equivalence at its call site.
var canonicalFields = map[string]Type{
	// download-equivalents
	"installs":      Downloads,
	"new_customers": Downloads,
	"new_users":     Downloads,
	"units":         Downloads,
	"downloads":     Downloads,

	// revenue-equivalents
	"revenue":           Revenue,
	"proceeds":          Revenue,
	"total_revenue":     Revenue,
	"all_revenue":       Revenue,
	"developer_payouts": Revenue,

	// engagement
	"active_users":         ActiveUsers,
	"dau":                  ActiveUsers,
	"active_subscribers":   ActiveSubscribers,
	"active_subscriptions": ActiveSubscribers,

	// acquisition funnel
	"clicks":      Clicks,
	"impressions": Impressions,
	"cost":        Cost,
	"ad_spend":    Cost,
	"mrr":         MRR,
}

// Canonical translates a provider field name to its canonical metric type.
// Unknown fields map onto themselves so adapters can pass novel provider
// metrics through without widening this table first.
func Canonical(field string) Type {
	f := strings.ToLower(strings.TrimSpace(field))
	if t, ok := canonicalFields[f]; ok {
		return t
	}
	return Type(f)
}

// MRRFromRevenue approximates monthly recurring revenue from a revenue
// observation using the revenue/30 equivalence. This mirrors the read-side
// aggregator's treatment; it is a rough heuristic, not an accounting figure.
func MRRFromRevenue(revenue float64) float64 {
	return revenue / 30
}
