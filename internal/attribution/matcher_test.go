package attribution

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/store"
)

type fakeMatcherStore struct {
	userByAppUser map[string]string
	link          *store.TrackingLink
	clicks        []*store.LinkClick
	attributions  []*store.InstallAttribution
}

func (f *fakeMatcherStore) UserIDForAppUserID(ctx context.Context, appUserID string) (string, error) {
	return f.userByAppUser[appUserID], nil
}

func (f *fakeMatcherStore) LinkForUser(ctx context.Context, userID string) (*store.TrackingLink, error) {
	return f.link, nil
}

func (f *fakeMatcherStore) RecentClick(ctx context.Context, linkID uuid.UUID, since time.Time) (*store.LinkClick, error) {
	var best *store.LinkClick
	for _, c := range f.clicks {
		if c.LinkID != linkID || c.ClickedAt.Before(since) {
			continue
		}
		if best == nil || c.ClickedAt.After(best.ClickedAt) {
			best = c
		}
	}
	return best, nil
}

func (f *fakeMatcherStore) InsertAttribution(ctx context.Context, attr *store.InstallAttribution) error {
	f.attributions = append(f.attributions, attr)
	return nil
}

func matcherFixture(clicks ...*store.LinkClick) (*Matcher, *fakeMatcherStore) {
	linkID := uuid.New()
	for _, c := range clicks {
		c.LinkID = linkID
	}
	st := &fakeMatcherStore{
		userByAppUser: map[string]string{"appuser1": "user1"},
		link:          &store.TrackingLink{ID: linkID, UserID: "user1", Slug: "myapp"},
		clicks:        clicks,
	}
	return NewMatcher(st, 60*time.Minute), st
}

func TestMatch_ClickInsideWindow(t *testing.T) {
	click := &store.LinkClick{
		ID:        uuid.New(),
		Source:    "Twitter",
		Device:    "iPhone",
		ClickedAt: time.Now().Add(-5 * time.Minute),
	}
	m, st := matcherFixture(click)

	out, err := m.Match(context.Background(), Event{AppUserID: "appuser1", EventType: "INITIAL_PURCHASE"})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if !out.Matched || out.Source != "Twitter" {
		t.Errorf("outcome = %+v, want matched Twitter", out)
	}

	if len(st.attributions) != 1 {
		t.Fatalf("attributions = %d, want 1", len(st.attributions))
	}
	attr := st.attributions[0]
	if attr.Source != "Twitter" || attr.Device != "iPhone" {
		t.Errorf("attribution = %+v, want click's source and device", attr)
	}
	if attr.ClickID == nil || *attr.ClickID != click.ID {
		t.Error("attribution should reference the matched click")
	}
}

func TestMatch_MostRecentClickWins(t *testing.T) {
	older := &store.LinkClick{ID: uuid.New(), Source: "Reddit", ClickedAt: time.Now().Add(-40 * time.Minute)}
	newer := &store.LinkClick{ID: uuid.New(), Source: "Twitter", ClickedAt: time.Now().Add(-10 * time.Minute)}
	m, st := matcherFixture(older, newer)

	_, err := m.Match(context.Background(), Event{AppUserID: "appuser1", EventType: "INITIAL_PURCHASE"})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if got := st.attributions[0].Source; got != "Twitter" {
		t.Errorf("source = %q, want Twitter (most recent click)", got)
	}
}

func TestMatch_StaleClickFallsBackToDirect(t *testing.T) {
	stale := &store.LinkClick{
		ID:        uuid.New(),
		Source:    "Twitter",
		ClickedAt: time.Now().Add(-90 * time.Minute),
	}
	m, st := matcherFixture(stale)

	out, err := m.Match(context.Background(), Event{AppUserID: "appuser1", EventType: "INITIAL_PURCHASE"})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if out.Matched {
		t.Error("stale click should not match")
	}

	attr := st.attributions[0]
	if attr.Source != "direct" {
		t.Errorf("source = %q, want direct", attr.Source)
	}
	if attr.ClickID != nil {
		t.Error("direct attribution should carry no click reference")
	}
}

func TestMatch_CountryAndRevenueFromEvent(t *testing.T) {
	m, st := matcherFixture()

	_, err := m.Match(context.Background(), Event{
		AppUserID: "appuser1",
		EventType: "INITIAL_PURCHASE",
		Country:   "US",
		Revenue:   9.99,
	})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}

	attr := st.attributions[0]
	if attr.Country != "US" {
		t.Errorf("country = %q, want US", attr.Country)
	}
	if attr.Revenue != 9.99 {
		t.Errorf("revenue = %v, want 9.99", attr.Revenue)
	}
}

func TestMatch_ClickCountryOverridesBillingCountry(t *testing.T) {
	click := &store.LinkClick{
		ID:        uuid.New(),
		Source:    "Twitter",
		Country:   "DE",
		ClickedAt: time.Now().Add(-5 * time.Minute),
	}
	m, st := matcherFixture(click)

	_, err := m.Match(context.Background(), Event{
		AppUserID: "appuser1",
		EventType: "INITIAL_PURCHASE",
		Country:   "US",
		Revenue:   4.99,
	})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}

	attr := st.attributions[0]
	if attr.Country != "DE" {
		t.Errorf("country = %q, want DE (click geo wins over billing country)", attr.Country)
	}
	if attr.Revenue != 4.99 {
		t.Errorf("revenue = %v, want 4.99", attr.Revenue)
	}
}

func TestMatch_UnknownAppUserIsNoOp(t *testing.T) {
	m, st := matcherFixture()

	out, err := m.Match(context.Background(), Event{AppUserID: "ghost", EventType: "INITIAL_PURCHASE"})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if !out.Skipped {
		t.Error("unknown app_user_id should be a skipped no-op")
	}
	if len(st.attributions) != 0 {
		t.Errorf("attributions = %d, want 0", len(st.attributions))
	}
}

func TestMatch_EventOutsideAllowList(t *testing.T) {
	m, st := matcherFixture()

	out, err := m.Match(context.Background(), Event{AppUserID: "appuser1", EventType: "RENEWAL"})
	if err != nil {
		t.Fatalf("Match() error: %v", err)
	}
	if !out.Skipped {
		t.Error("RENEWAL should be skipped")
	}
	if len(st.attributions) != 0 {
		t.Errorf("attributions = %d, want 0", len(st.attributions))
	}
}
