package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/attribution"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/credential"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/metric"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/pkg/httputil"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/pkg/logger"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/store"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/syncer"
)

// Store is the persistence surface the handlers need directly; syncs go
// through the orchestrator instead.
type Store interface {
	AddToMetric(ctx context.Context, appID, provider, metricType string, metricDate time.Time, delta float64) error
	CreateConnectedApp(ctx context.Context, app *store.ConnectedApp) error
	DisconnectApp(ctx context.Context, userID, appID, providerName string) error
	UpsertSubscription(ctx context.Context, sub *store.Subscription) error
}

// Orchestrator triggers provider syncs.
type Orchestrator interface {
	SyncAll(ctx context.Context, userID string) ([]syncer.Result, error)
	SyncApp(ctx context.Context, app *store.ConnectedApp) syncer.Result
}

// Matcher attributes purchase events to clicks.
type Matcher interface {
	Match(ctx context.Context, ev attribution.Event) (attribution.Outcome, error)
}

// Redirector resolves tracking slugs to destinations.
type Redirector interface {
	Resolve(ctx context.Context, req attribution.ClickRequest) string
}

// Validator checks credential bundles.
type Validator interface {
	Validate(ctx context.Context, providerName string, creds provider.Credentials) credential.Result
}

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	store        Store
	orchestrator Orchestrator
	matcher      Matcher
	redirector   Redirector
	validator    Validator
}

// NewHandlers creates the handler set.
func NewHandlers(st Store, o Orchestrator, m Matcher, r Redirector, v Validator) *Handlers {
	return &Handlers{store: st, orchestrator: o, matcher: m, redirector: r, validator: v}
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]any{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

// clientIP returns the visitor's IP for fingerprinting. Behind
// Cloudflare the CF-Connecting-IP header is authoritative; otherwise
// RemoteAddr, with its ephemeral port stripped so the same visitor
// hashes the same across requests.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// TrackClick records a click and redirects to the link's destination, or
// to an App Store search for unknown slugs. Geo comes from Cloudflare's
// CF-IPCountry/CF-IPCity headers when present.
func (h *Handlers) TrackClick(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		httputil.BadRequest(w, "missing slug")
		return
	}

	dest := h.redirector.Resolve(r.Context(), attribution.ClickRequest{
		Slug:      slug,
		Referrer:  r.Referer(),
		UserAgent: r.UserAgent(),
		IP:        clientIP(r),
		Country:   r.Header.Get("CF-IPCountry"),
		City:      r.Header.Get("CF-IPCity"),
	})
	httputil.Redirect(w, r, dest)
}

// revenueCatEvent is the subset of the webhook payload the handlers use.
type revenueCatEvent struct {
	Event struct {
		Type              string  `json:"type"`
		AppID             string  `json:"app_id"`
		AppUserID         string  `json:"app_user_id"`
		OriginalAppUserID string  `json:"original_app_user_id"`
		CountryCode       string  `json:"country_code"`
		Price             float64 `json:"price"`
	} `json:"event"`
}

// countedEvents are the webhook event types that move the realtime
// counters. Renewals and cancellations are reconciled by the next full
// sync instead.
var countedEvents = map[string]bool{
	"INITIAL_PURCHASE":      true,
	"NON_RENEWING_PURCHASE": true,
}

// RevenueCatWebhook ingests purchase events as realtime counter bumps.
// It always answers 200: RevenueCat retries aggressively on non-2xx, and
// a malformed payload will not get better on redelivery.
func (h *Handlers) RevenueCatWebhook(w http.ResponseWriter, r *http.Request) {
	var payload revenueCatEvent
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WebhookAck(w, false, map[string]any{"error": "invalid JSON payload"})
		return
	}

	ev := payload.Event
	if ev.Type == "SUBSCRIBER_ALIAS" && ev.AppUserID != "" {
		// Alias events carry the subscriber's internal user id in
		// original_app_user_id; recording the mapping is what lets the
		// attribution matcher resolve later purchases.
		sub := &store.Subscription{
			AppUserID: ev.AppUserID,
			UserID:    ev.OriginalAppUserID,
			AppID:     ev.AppID,
		}
		if err := h.store.UpsertSubscription(r.Context(), sub); err != nil {
			logger.Error("webhook alias upsert failed", "app_user_id", ev.AppUserID, "error", err.Error())
			httputil.WebhookAck(w, false, map[string]any{"error": "persisting event failed"})
			return
		}
		httputil.WebhookAck(w, true, map[string]any{"processed": true})
		return
	}
	if !countedEvents[ev.Type] || ev.AppID == "" {
		// Acknowledged no-op: event type outside the counted set.
		httputil.WebhookAck(w, true, map[string]any{"processed": false})
		return
	}

	day := metric.Day(time.Now())
	if err := h.store.AddToMetric(r.Context(), ev.AppID, provider.RevenueCat, string(metric.Downloads), day, 1); err != nil {
		logger.Error("webhook download increment failed", "app_id", ev.AppID, "error", err.Error())
		httputil.WebhookAck(w, false, map[string]any{"error": "persisting event failed"})
		return
	}
	if ev.Price > 0 {
		if err := h.store.AddToMetric(r.Context(), ev.AppID, provider.RevenueCat, string(metric.Revenue), day, ev.Price); err != nil {
			logger.Error("webhook revenue increment failed", "app_id", ev.AppID, "error", err.Error())
			httputil.WebhookAck(w, false, map[string]any{"error": "persisting event failed"})
			return
		}
	}

	httputil.WebhookAck(w, true, map[string]any{"processed": true})
}

// AttributionWebhook joins a purchase event to a preceding click. Unlike
// the metrics webhook this one surfaces internal errors as 500, so the
// sender's retry gives the match a second chance.
func (h *Handlers) AttributionWebhook(w http.ResponseWriter, r *http.Request) {
	var payload revenueCatEvent
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.BadRequest(w, "invalid JSON payload")
		return
	}

	out, err := h.matcher.Match(r.Context(), attribution.Event{
		AppUserID: payload.Event.AppUserID,
		EventType: payload.Event.Type,
		Country:   payload.Event.CountryCode,
		Revenue:   payload.Event.Price,
	})
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]any{
		"success": true,
		"skipped": out.Skipped,
		"matched": out.Matched,
		"source":  out.Source,
	})
}

type syncAllRequest struct {
	UserID string `json:"user_id"`
}

// SyncAll syncs every active connected app, optionally scoped to a user.
func (h *Handlers) SyncAll(w http.ResponseWriter, r *http.Request) {
	var req syncAllRequest
	if r.ContentLength > 0 && !httputil.Decode(w, r, &req) {
		return
	}

	results, err := h.orchestrator.SyncAll(r.Context(), req.UserID)
	if err != nil {
		httputil.InternalError(w, err)
		return
	}

	httputil.OK(w, map[string]any{"success": true, "results": results})
}

type syncRevenueCatRequest struct {
	AppID       string               `json:"app_id"`
	Credentials provider.Credentials `json:"credentials"`
}

// SyncRevenueCat runs a one-off RevenueCat sync with caller-supplied
// credentials, without persisting a connection.
func (h *Handlers) SyncRevenueCat(w http.ResponseWriter, r *http.Request) {
	var req syncRevenueCatRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.AppID == "" || len(req.Credentials) == 0 {
		httputil.BadRequest(w, "app_id and credentials are required")
		return
	}

	credsJSON, err := json.Marshal(req.Credentials)
	if err != nil {
		httputil.BadRequest(w, "invalid credentials payload")
		return
	}

	res := h.orchestrator.SyncApp(r.Context(), &store.ConnectedApp{
		ID:              uuid.New(),
		AppID:           req.AppID,
		Provider:        provider.RevenueCat,
		CredentialsJSON: string(credsJSON),
	})
	if !res.Success {
		httputil.OK(w, map[string]any{"success": false, "error": res.Error})
		return
	}

	httputil.OK(w, map[string]any{"success": true, "metrics_synced": res.MetricsSynced})
}

type storeCredentialsRequest struct {
	Action      string               `json:"action"`
	UserID      string               `json:"user_id"`
	AppID       string               `json:"app_id"`
	Provider    string               `json:"provider"`
	Credentials provider.Credentials `json:"credentials"`
}

// StoreCredentials connects or disconnects a provider for an app.
// Connecting validates the bundle live, persists raw plus masked copies,
// and kicks off the first sync in the background.
func (h *Handlers) StoreCredentials(w http.ResponseWriter, r *http.Request) {
	var req storeCredentialsRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.UserID == "" || req.AppID == "" || req.Provider == "" {
		httputil.BadRequest(w, "user_id, app_id and provider are required")
		return
	}

	switch req.Action {
	case "disconnect":
		if err := h.store.DisconnectApp(r.Context(), req.UserID, req.AppID, req.Provider); err != nil {
			httputil.InternalError(w, err)
			return
		}
		httputil.OK(w, map[string]any{"success": true, "disconnected": true})

	// "store" and "update" are the client's names for the same upsert.
	case "connect", "store", "update", "":
		res := h.validator.Validate(r.Context(), req.Provider, req.Credentials)
		if !res.Valid {
			httputil.BadRequest(w, res.Reason)
			return
		}

		credsJSON, err := json.Marshal(req.Credentials)
		if err != nil {
			httputil.BadRequest(w, "invalid credentials payload")
			return
		}
		masked := credential.Mask(req.Credentials)
		maskedJSON, err := json.Marshal(masked)
		if err != nil {
			httputil.InternalError(w, err)
			return
		}

		app := &store.ConnectedApp{
			UserID:          req.UserID,
			AppID:           req.AppID,
			Provider:        req.Provider,
			ProjectID:       res.ProjectID,
			CredentialsJSON: string(credsJSON),
			MaskedJSON:      string(maskedJSON),
			Active:          true,
		}
		if err := h.store.CreateConnectedApp(r.Context(), app); err != nil {
			httputil.InternalError(w, err)
			return
		}

		// First sync runs in the background so credential intake stays fast.
		go func(app store.ConnectedApp) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if res := h.orchestrator.SyncApp(ctx, &app); !res.Success {
				logger.Warn("initial sync after connect failed",
					"provider", app.Provider,
					"app_id", app.AppID,
					"error", res.Error,
				)
			}
		}(*app)

		httputil.OK(w, map[string]any{
			"success":     true,
			"provider":    req.Provider,
			"project_id":  res.ProjectID,
			"credentials": masked,
		})

	default:
		httputil.BadRequest(w, "unknown action: "+req.Action)
	}
}
