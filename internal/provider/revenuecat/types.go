package revenuecat

// Customer is one entry in a RevenueCat project's customer list.
type Customer struct {
	ID          string `json:"id"`
	FirstSeenAt int64  `json:"first_seen_at"`
}

// CustomerPage is one page of the paginated customer list.
type CustomerPage struct {
	Items    []Customer `json:"items"`
	NextPage string     `json:"next_page"`
}

// Price is the explicit price attached to a subscription, when present.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Subscription is one customer subscription. Active status is a three-way
// OR across GivesAccess, Status and the period-end timestamp; any one
// signal is sufficient.
type Subscription struct {
	ID                  string  `json:"id"`
	ProductID           string  `json:"product_id"`
	GivesAccess         bool    `json:"gives_access"`
	Status              string  `json:"status"`
	CurrentPeriodEndsAt int64   `json:"current_period_ends_at"` // ms epoch
	TotalRevenueInUSD   float64 `json:"total_revenue_in_usd"`
	Price               *Price  `json:"price"`
}

type subscriptionPage struct {
	Items []Subscription `json:"items"`
}

// Purchase is a one-time (non-renewing) purchase.
type Purchase struct {
	ID           string  `json:"id"`
	ProductID    string  `json:"product_id"`
	RevenueInUSD float64 `json:"revenue_in_usd"`
	PurchasedAt  int64   `json:"purchased_at"`
}

type purchasePage struct {
	Items []Purchase `json:"items"`
}

// Project is one entry of the project list, used for credential checks.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type projectPage struct {
	Items []Project `json:"items"`
}

// OverviewMetric is one project-level rollup metric from the metrics
// overview endpoint, the last-resort revenue source.
type OverviewMetric struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

type overviewResponse struct {
	Metrics []OverviewMetric `json:"metrics"`
}
