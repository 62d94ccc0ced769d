// Package syncer orchestrates provider syncs across connected apps and
// recomputes daily snapshots from the observed metrics.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Disguise-Ai/AplTrack-sub000/internal/metric"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/pkg/logger"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/provider"
	"github.com/Disguise-Ai/AplTrack-sub000/internal/store"
)

// Store is the persistence surface the orchestrator needs.
type Store interface {
	ActiveConnectedApps(ctx context.Context, userID string) ([]*store.ConnectedApp, error)
	UpsertMetric(ctx context.Context, m *store.RealtimeMetric) error
	MetricsForDay(ctx context.Context, appID string, day time.Time) ([]*store.RealtimeMetric, error)
	UpsertSnapshot(ctx context.Context, snap *store.AnalyticsSnapshot) error
	TouchLastSync(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Result is the per-connection outcome of one sync run. Failures are
// captured here rather than propagated so one bad credential bundle
// cannot abort the batch.
type Result struct {
	AppID         string `json:"app_id"`
	Provider      string `json:"provider"`
	Success       bool   `json:"success"`
	MetricsSynced int    `json:"metrics_synced"`
	Error         string `json:"error,omitempty"`
}

// Orchestrator runs provider syncs and snapshot rebuilds.
type Orchestrator struct {
	store    Store
	registry *provider.Registry
	now      func() time.Time
}

// New creates an orchestrator dispatching through the given registry.
func New(st Store, registry *provider.Registry) *Orchestrator {
	return &Orchestrator{store: st, registry: registry, now: time.Now}
}

// SyncAll syncs every active connected app for a user; an empty userID
// means every user (the scheduled system-wide run).
func (o *Orchestrator) SyncAll(ctx context.Context, userID string) ([]Result, error) {
	apps, err := o.store.ActiveConnectedApps(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading connected apps: %w", err)
	}

	results := make([]Result, 0, len(apps))
	touched := make(map[string]bool)
	for _, app := range apps {
		res := o.syncConnection(ctx, app)
		results = append(results, res)
		if res.Success {
			touched[app.AppID] = true
		}
	}

	// One snapshot rebuild per app after all its providers ran.
	for appID := range touched {
		if err := o.RebuildSnapshot(ctx, appID); err != nil {
			logger.Error("snapshot rebuild failed", "app_id", appID, "error", err.Error())
		}
	}
	return results, nil
}

// SyncApp syncs a single connection and rebuilds its app's snapshot.
func (o *Orchestrator) SyncApp(ctx context.Context, app *store.ConnectedApp) Result {
	res := o.syncConnection(ctx, app)
	if res.Success {
		if err := o.RebuildSnapshot(ctx, app.AppID); err != nil {
			logger.Error("snapshot rebuild failed", "app_id", app.AppID, "error", err.Error())
		}
	}
	return res
}

func (o *Orchestrator) syncConnection(ctx context.Context, app *store.ConnectedApp) Result {
	res := Result{AppID: app.AppID, Provider: app.Provider}

	adapter, ok := o.registry.Get(app.Provider)
	if !ok {
		res.Error = fmt.Sprintf("no adapter registered for provider %q", app.Provider)
		return res
	}

	var creds provider.Credentials
	if err := json.Unmarshal([]byte(app.CredentialsJSON), &creds); err != nil {
		res.Error = "stored credentials are not valid JSON"
		return res
	}

	metrics, err := adapter.Sync(ctx, app.AppID, creds)
	if err != nil {
		logger.Warn("provider sync failed",
			"provider", app.Provider,
			"app_id", app.AppID,
			"error", err.Error(),
		)
		res.Error = err.Error()
		return res
	}

	day := metric.Day(o.now())
	for _, m := range metrics {
		err := o.store.UpsertMetric(ctx, &store.RealtimeMetric{
			AppID:      app.AppID,
			Provider:   app.Provider,
			MetricType: string(m.Type),
			MetricDate: day,
			Value:      m.Value,
		})
		if err != nil {
			res.Error = fmt.Sprintf("persisting %s: %v", m.Type, err)
			return res
		}
		res.MetricsSynced++
	}

	if err := o.store.TouchLastSync(ctx, app.ID, o.now()); err != nil {
		logger.Warn("updating last_sync_at failed", "app_id", app.AppID, "error", err.Error())
	}

	res.Success = true
	logger.Info("provider sync complete",
		"provider", app.Provider,
		"app_id", app.AppID,
		"metrics", res.MetricsSynced,
	)
	return res
}

// RebuildSnapshot recomputes today's merged snapshot for an app from its
// realtime metrics.
func (o *Orchestrator) RebuildSnapshot(ctx context.Context, appID string) error {
	day := metric.Day(o.now())
	metrics, err := o.store.MetricsForDay(ctx, appID, day)
	if err != nil {
		return fmt.Errorf("loading metrics for snapshot: %w", err)
	}

	snap := buildSnapshot(appID, day, metrics)
	if err := o.store.UpsertSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("persisting snapshot: %w", err)
	}
	return nil
}

// buildSnapshot merges per-provider metrics into the daily view. Several
// providers can report the same quantity for the same app, so each field
// takes the maximum across providers rather than the sum, which would
// double-count.
func buildSnapshot(appID string, day time.Time, metrics []*store.RealtimeMetric) *store.AnalyticsSnapshot {
	snap := &store.AnalyticsSnapshot{AppID: appID, Date: day}
	for _, m := range metrics {
		switch metric.Type(m.MetricType) {
		case metric.Downloads:
			snap.Downloads = max(snap.Downloads, m.Value)
		case metric.Revenue:
			snap.Revenue = max(snap.Revenue, m.Value)
		case metric.MRR:
			snap.MRR = max(snap.MRR, m.Value)
		case metric.ActiveUsers:
			snap.ActiveUsers = max(snap.ActiveUsers, m.Value)
		case metric.ActiveSubscribers:
			snap.ActiveSubscribers = max(snap.ActiveSubscribers, m.Value)
		case metric.Ratings:
			snap.Ratings = max(snap.Ratings, m.Value)
		case metric.AvgRating:
			snap.AvgRating = max(snap.AvgRating, m.Value)
		}
	}
	// Subscription-only apps have no engagement provider; subscribers are
	// the closest measure of active users.
	if snap.ActiveUsers == 0 {
		snap.ActiveUsers = snap.ActiveSubscribers
	}
	if snap.MRR == 0 && snap.Revenue > 0 {
		snap.MRR = metric.MRRFromRevenue(snap.Revenue)
	}
	return snap
}
