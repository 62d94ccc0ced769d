package attribution

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/pkg/logger"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/store"
)

// RedirectorStore is the persistence surface the redirector needs.
type RedirectorStore interface {
	GetLinkBySlug(ctx context.Context, slug string) (*store.TrackingLink, error)
	InsertClick(ctx context.Context, click *store.LinkClick) error
}

// ClickRequest carries the request attributes the redirector classifies.
// Country and city come pre-resolved from the CDN's geo headers; the
// server never does IP geolocation itself.
type ClickRequest struct {
	Slug      string
	Referrer  string
	UserAgent string
	IP        string
	Country   string
	City      string
}

// Redirector resolves tracking slugs, records clicks and produces the
// redirect destination. Slug lookups on the redirect hot path go through
// an optional Redis read-through cache; a nil client degrades to DB-only.
type Redirector struct {
	store       RedirectorStore
	cache       *redis.Client
	cacheTTL    time.Duration
	fallbackURL string
}

// NewRedirector creates a redirector. cache may be nil.
func NewRedirector(st RedirectorStore, cache *redis.Client, cacheTTL time.Duration, fallbackSearchURL string) *Redirector {
	return &Redirector{
		store:       st,
		cache:       cache,
		cacheTTL:    cacheTTL,
		fallbackURL: fallbackSearchURL,
	}
}

// Resolve handles one click: classifies it, records it when the slug is
// known, and returns the redirect destination. An unknown slug falls back
// to an App Store search for the slug text so the visitor still lands
// somewhere useful.
func (r *Redirector) Resolve(ctx context.Context, req ClickRequest) string {
	link, err := r.lookupLink(ctx, req.Slug)
	if err != nil {
		logger.Error("link lookup failed", "slug", req.Slug, "error", err.Error())
	}
	if link == nil {
		return r.fallbackURL + "?term=" + url.QueryEscape(req.Slug)
	}

	click := &store.LinkClick{
		LinkID:      link.ID,
		Source:      SourceFromReferrer(req.Referrer),
		Device:      DeviceFromUserAgent(req.UserAgent),
		Country:     req.Country,
		City:        req.City,
		Referrer:    req.Referrer,
		Fingerprint: Fingerprint(req.IP, req.UserAgent),
	}
	// The redirect is served regardless; a failed write loses one click,
	// not the visitor.
	if err := r.store.InsertClick(ctx, click); err != nil {
		logger.Error("recording click failed", "slug", req.Slug, "error", err.Error())
	} else {
		logger.Info("click recorded",
			"slug", req.Slug,
			"source", click.Source,
			"device", click.Device,
		)
	}

	return link.DestinationURL
}

func (r *Redirector) lookupLink(ctx context.Context, slug string) (*store.TrackingLink, error) {
	if r.cache == nil {
		return r.store.GetLinkBySlug(ctx, slug)
	}

	cacheKey := "link:" + slug
	if cached, err := r.cache.Get(ctx, cacheKey).Result(); err == nil {
		var link store.TrackingLink
		if err := json.Unmarshal([]byte(cached), &link); err == nil {
			return &link, nil
		}
	}

	link, err := r.store.GetLinkBySlug(ctx, slug)
	if err != nil || link == nil {
		return link, err
	}

	if data, err := json.Marshal(link); err == nil {
		if err := r.cache.Set(ctx, cacheKey, data, r.cacheTTL).Err(); err != nil {
			logger.Debug("link cache write failed", "slug", slug, "error", err.Error())
		}
	}
	return link, nil
}
