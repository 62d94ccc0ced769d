package store

import "context"

// Migrate creates all tables and indexes. Statements are idempotent so
// the migration can run at every startup.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS connected_apps (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			app_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			project_id TEXT NOT NULL DEFAULT '',
			credentials JSONB NOT NULL,
			masked_credentials JSONB NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			last_sync_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_connected_apps_identity
			ON connected_apps (user_id, app_id, provider)`,

		`CREATE TABLE IF NOT EXISTS realtime_metrics (
			id UUID PRIMARY KEY,
			app_id TEXT NOT NULL,
			provider TEXT NOT NULL,
			metric_type TEXT NOT NULL,
			metric_date DATE NOT NULL,
			metric_value DOUBLE PRECISION NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_realtime_metrics_identity
			ON realtime_metrics (app_id, provider, metric_type, metric_date)`,

		`CREATE TABLE IF NOT EXISTS analytics_snapshots (
			id UUID PRIMARY KEY,
			app_id TEXT NOT NULL,
			snapshot_date DATE NOT NULL,
			downloads DOUBLE PRECISION NOT NULL DEFAULT 0,
			revenue DOUBLE PRECISION NOT NULL DEFAULT 0,
			mrr DOUBLE PRECISION NOT NULL DEFAULT 0,
			active_users DOUBLE PRECISION NOT NULL DEFAULT 0,
			active_subscribers DOUBLE PRECISION NOT NULL DEFAULT 0,
			ratings DOUBLE PRECISION NOT NULL DEFAULT 0,
			avg_rating DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_analytics_snapshots_identity
			ON analytics_snapshots (app_id, snapshot_date)`,

		`CREATE TABLE IF NOT EXISTS tracking_links (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			app_id TEXT NOT NULL,
			slug TEXT NOT NULL,
			destination_url TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tracking_links_slug
			ON tracking_links (LOWER(slug))`,

		`CREATE TABLE IF NOT EXISTS link_clicks (
			id UUID PRIMARY KEY,
			link_id UUID NOT NULL REFERENCES tracking_links(id),
			source TEXT NOT NULL,
			device TEXT NOT NULL,
			country TEXT NOT NULL DEFAULT '',
			city TEXT NOT NULL DEFAULT '',
			referrer TEXT NOT NULL DEFAULT '',
			fingerprint TEXT NOT NULL DEFAULT '',
			clicked_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_link_clicks_link_time
			ON link_clicks (link_id, clicked_at DESC)`,

		`CREATE TABLE IF NOT EXISTS install_attributions (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			app_user_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			source TEXT NOT NULL,
			device TEXT NOT NULL DEFAULT '',
			country TEXT NOT NULL DEFAULT '',
			revenue DOUBLE PRECISION NOT NULL DEFAULT 0,
			click_id UUID REFERENCES link_clicks(id),
			attributed_at TIMESTAMPTZ NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS subscriptions (
			id UUID PRIMARY KEY,
			app_user_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			app_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_subscriptions_app_user
			ON subscriptions (app_user_id)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
