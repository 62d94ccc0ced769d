package store

import (
	"time"

	"github.com/google/uuid"
)

// ConnectedApp is one user's link between an app and a metrics provider.
// CredentialsJSON holds the raw bundle; MaskedJSON is the display copy
// returned by the API.
type ConnectedApp struct {
	ID              uuid.UUID
	UserID          string
	AppID           string
	Provider        string
	ProjectID       string
	CredentialsJSON string
	MaskedJSON      string
	Active          bool
	LastSyncAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RealtimeMetric is one observed value for (app, provider, type, day).
type RealtimeMetric struct {
	ID         uuid.UUID
	AppID      string
	Provider   string
	MetricType string
	MetricDate time.Time
	Value      float64
	UpdatedAt  time.Time
}

// AnalyticsSnapshot is the merged daily view across all of an app's
// providers.
type AnalyticsSnapshot struct {
	ID                uuid.UUID
	AppID             string
	Date              time.Time
	Downloads         float64
	Revenue           float64
	MRR               float64
	ActiveUsers       float64
	ActiveSubscribers float64
	Ratings           float64
	AvgRating         float64
	UpdatedAt         time.Time
}

// TrackingLink maps a public slug to an app's store destination.
type TrackingLink struct {
	ID             uuid.UUID
	UserID         string
	AppID          string
	Slug           string
	DestinationURL string
	CreatedAt      time.Time
}

// LinkClick is one anonymous click on a tracking link. Append-only.
// Country and city come from the CDN's geo headers, not from the IP.
type LinkClick struct {
	ID          uuid.UUID
	LinkID      uuid.UUID
	Source      string
	Device      string
	Country     string
	City        string
	Referrer    string
	Fingerprint string
	ClickedAt   time.Time
}

// InstallAttribution joins a purchase event to the click (if any) that
// preceded it inside the match window.
type InstallAttribution struct {
	ID           uuid.UUID
	UserID       string
	AppUserID    string
	EventType    string
	Source       string
	Device       string
	Country      string
	Revenue      float64
	ClickID      *uuid.UUID
	AttributedAt time.Time
}

// Subscription maps a provider-side app_user_id to our user.
type Subscription struct {
	ID        uuid.UUID
	AppUserID string
	UserID    string
	AppID     string
	CreatedAt time.Time
}
