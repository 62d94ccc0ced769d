// Package metric defines the canonical metric vocabulary shared by every
// provider adapter and the read-side aggregation. Providers report the same
// concept under different names (AppsFlyer "installs", RevenueCat
// "new_customers"); the mapping table here is the single place where those
// equivalences live.
package metric

import "time"

// Type is the canonical metric type. The vocabulary is an open string enum:
// unknown provider fields pass through under their original name so no data
// is dropped, but aggregation only rolls up the canonical types.
type Type string

const (
	Downloads         Type = "downloads"
	Revenue           Type = "revenue"
	MRR               Type = "mrr"
	ActiveSubscribers Type = "active_subscribers"
	ActiveUsers       Type = "active_users"
	Installs          Type = "installs"
	Clicks            Type = "clicks"
	Impressions       Type = "impressions"
	Cost              Type = "cost"
	Ratings           Type = "ratings"
	AvgRating         Type = "avg_rating"
)

// Metric is one (type, value) observation produced by a provider adapter
// for a single calendar day.
type Metric struct {
	Type     Type
	Value    float64
	Metadata map[string]any
}

// Day truncates t to day granularity in UTC. Metric rows carry no time
// component; the (app, provider, type, day) tuple is the conflict key.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
