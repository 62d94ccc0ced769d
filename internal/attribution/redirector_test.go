package attribution

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/store"
)

type fakeRedirectorStore struct {
	links   map[string]*store.TrackingLink
	clicks  []*store.LinkClick
	lookups int
}

func (f *fakeRedirectorStore) GetLinkBySlug(ctx context.Context, slug string) (*store.TrackingLink, error) {
	f.lookups++
	return f.links[slug], nil
}

func (f *fakeRedirectorStore) InsertClick(ctx context.Context, click *store.LinkClick) error {
	f.clicks = append(f.clicks, click)
	return nil
}

func TestResolve_KnownSlug(t *testing.T) {
	st := &fakeRedirectorStore{links: map[string]*store.TrackingLink{
		"myapp": {ID: uuid.New(), Slug: "myapp", DestinationURL: "https://apps.apple.com/app/id12345"},
	}}
	r := NewRedirector(st, nil, 0, "https://apps.apple.com/search")

	dest := r.Resolve(context.Background(), ClickRequest{
		Slug:      "myapp",
		Referrer:  "https://t.co/abc",
		UserAgent: "Mozilla/5.0 (iPhone)",
		IP:        "203.0.113.9",
		Country:   "US",
		City:      "Austin",
	})
	if dest != "https://apps.apple.com/app/id12345" {
		t.Errorf("destination = %q", dest)
	}

	if len(st.clicks) != 1 {
		t.Fatalf("clicks = %d, want 1", len(st.clicks))
	}
	click := st.clicks[0]
	if click.Source != "Twitter" || click.Device != "iPhone" {
		t.Errorf("click = %+v, want Twitter/iPhone", click)
	}
	if click.Country != "US" || click.City != "Austin" {
		t.Errorf("click geo = %q/%q, want US/Austin", click.Country, click.City)
	}
	if click.Fingerprint == "" {
		t.Error("click should carry a fingerprint")
	}
}

func TestResolve_FingerprintStableForSameVisitor(t *testing.T) {
	st := &fakeRedirectorStore{links: map[string]*store.TrackingLink{
		"myapp": {ID: uuid.New(), Slug: "myapp", DestinationURL: "https://example.com"},
	}}
	r := NewRedirector(st, nil, 0, "https://apps.apple.com/search")

	req := ClickRequest{Slug: "myapp", UserAgent: "Mozilla/5.0 (iPhone)", IP: "203.0.113.9"}
	r.Resolve(context.Background(), req)
	r.Resolve(context.Background(), req)

	if st.clicks[0].Fingerprint != st.clicks[1].Fingerprint {
		t.Errorf("fingerprints differ for the same visitor: %q vs %q",
			st.clicks[0].Fingerprint, st.clicks[1].Fingerprint)
	}
}

func TestResolve_UnknownSlugFallsBackToSearch(t *testing.T) {
	st := &fakeRedirectorStore{links: map[string]*store.TrackingLink{}}
	r := NewRedirector(st, nil, 0, "https://apps.apple.com/search")

	dest := r.Resolve(context.Background(), ClickRequest{Slug: "myapp"})
	if dest != "https://apps.apple.com/search?term=myapp" {
		t.Errorf("destination = %q, want App Store search fallback", dest)
	}
	if len(st.clicks) != 0 {
		t.Errorf("clicks = %d, want 0 for unknown slug", len(st.clicks))
	}
}

func TestResolve_DirectClickWithoutReferrer(t *testing.T) {
	st := &fakeRedirectorStore{links: map[string]*store.TrackingLink{
		"myapp": {ID: uuid.New(), Slug: "myapp", DestinationURL: "https://example.com"},
	}}
	r := NewRedirector(st, nil, 0, "https://apps.apple.com/search")

	r.Resolve(context.Background(), ClickRequest{Slug: "myapp"})
	if got := st.clicks[0].Source; got != "direct" {
		t.Errorf("source = %q, want direct", got)
	}
}

func TestResolve_CacheSkipsSecondLookup(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	st := &fakeRedirectorStore{links: map[string]*store.TrackingLink{
		"myapp": {ID: uuid.New(), Slug: "myapp", DestinationURL: "https://example.com"},
	}}
	r := NewRedirector(st, cache, 5*time.Minute, "https://apps.apple.com/search")

	r.Resolve(context.Background(), ClickRequest{Slug: "myapp"})
	r.Resolve(context.Background(), ClickRequest{Slug: "myapp"})

	if st.lookups != 1 {
		t.Errorf("db lookups = %d, want 1 (second hit served from cache)", st.lookups)
	}
	if len(st.clicks) != 2 {
		t.Errorf("clicks = %d, want 2 (every click recorded, cached or not)", len(st.clicks))
	}
}

func TestResolve_CacheMissDoesNotCacheUnknownSlug(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	st := &fakeRedirectorStore{links: map[string]*store.TrackingLink{}}
	r := NewRedirector(st, cache, 5*time.Minute, "https://apps.apple.com/search")

	r.Resolve(context.Background(), ClickRequest{Slug: "ghost"})
	r.Resolve(context.Background(), ClickRequest{Slug: "ghost"})

	if st.lookups != 2 {
		t.Errorf("db lookups = %d, want 2 (misses are not cached)", st.lookups)
	}
}
