package attribution

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/pkg/logger"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/store"
)

// attributableEvents is the webhook event allow-list. Renewal and
// cancellation events carry no new install signal and are ignored.
var attributableEvents = map[string]bool{
	"INITIAL_PURCHASE":      true,
	"NON_RENEWING_PURCHASE": true,
	"TEST":                  true,
	"SUBSCRIBER_ALIAS":      true,
}

// MatcherStore is the persistence surface the matcher needs.
type MatcherStore interface {
	UserIDForAppUserID(ctx context.Context, appUserID string) (string, error)
	LinkForUser(ctx context.Context, userID string) (*store.TrackingLink, error)
	RecentClick(ctx context.Context, linkID uuid.UUID, since time.Time) (*store.LinkClick, error)
	InsertAttribution(ctx context.Context, attr *store.InstallAttribution) error
}

// Event is a purchase/install webhook event to attribute. Country and
// Revenue come from the webhook payload (country_code, price) and land
// on the attribution row.
type Event struct {
	AppUserID string
	EventType string
	Country   string
	Revenue   float64
}

// Outcome reports what the matcher did with an event.
type Outcome struct {
	// Skipped is true for events outside the allow-list or with an
	// unresolvable app_user_id; both are acknowledged no-ops.
	Skipped bool
	Matched bool
	Source  string
}

// Matcher joins purchase events to preceding clicks.
type Matcher struct {
	store  MatcherStore
	window time.Duration
	now    func() time.Time
}

// NewMatcher creates a matcher with the given click match window.
func NewMatcher(st MatcherStore, window time.Duration) *Matcher {
	return &Matcher{store: st, window: window, now: time.Now}
}

// Match attributes one event. The most recent click inside the window
// wins; an empty window attributes the install to "direct". Exactly one
// attribution row is written per processed event.
func (m *Matcher) Match(ctx context.Context, ev Event) (Outcome, error) {
	if !attributableEvents[ev.EventType] {
		return Outcome{Skipped: true}, nil
	}

	userID, err := m.store.UserIDForAppUserID(ctx, ev.AppUserID)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolving app_user_id: %w", err)
	}
	if userID == "" {
		// Unknown subscriber: nothing to attribute against.
		logger.Debug("attribution skipped, unknown app_user_id", "app_user_id", ev.AppUserID)
		return Outcome{Skipped: true}, nil
	}

	attr := &store.InstallAttribution{
		UserID:       userID,
		AppUserID:    ev.AppUserID,
		EventType:    ev.EventType,
		Source:       "direct",
		Country:      ev.Country,
		Revenue:      ev.Revenue,
		AttributedAt: m.now(),
	}

	link, err := m.store.LinkForUser(ctx, userID)
	if err != nil {
		return Outcome{}, fmt.Errorf("resolving tracking link: %w", err)
	}
	if link != nil {
		click, err := m.store.RecentClick(ctx, link.ID, m.now().Add(-m.window))
		if err != nil {
			return Outcome{}, fmt.Errorf("finding recent click: %w", err)
		}
		if click != nil {
			attr.Source = click.Source
			attr.Device = click.Device
			attr.ClickID = &click.ID
			// The click's geo beats the store's billing country when present.
			if click.Country != "" {
				attr.Country = click.Country
			}
		}
	}

	if err := m.store.InsertAttribution(ctx, attr); err != nil {
		return Outcome{}, fmt.Errorf("writing attribution: %w", err)
	}

	logger.Info("install attributed",
		"app_user_id", ev.AppUserID,
		"source", attr.Source,
		"matched", attr.ClickID != nil,
	)
	return Outcome{Matched: attr.ClickID != nil, Source: attr.Source}, nil
}
