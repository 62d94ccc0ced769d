package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// UpsertSnapshot writes the merged daily view for an app. One row per
// (app, date); re-running a sync overwrites it.
func (s *Store) UpsertSnapshot(ctx context.Context, snap *AnalyticsSnapshot) error {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	snap.UpdatedAt = time.Now()

	query := `INSERT INTO analytics_snapshots
		(id, app_id, snapshot_date, downloads, revenue, mrr, active_users, active_subscribers, ratings, avg_rating, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (app_id, snapshot_date) DO UPDATE SET
			downloads = EXCLUDED.downloads,
			revenue = EXCLUDED.revenue,
			mrr = EXCLUDED.mrr,
			active_users = EXCLUDED.active_users,
			active_subscribers = EXCLUDED.active_subscribers,
			ratings = EXCLUDED.ratings,
			avg_rating = EXCLUDED.avg_rating,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		snap.ID, snap.AppID, snap.Date, snap.Downloads, snap.Revenue, snap.MRR,
		snap.ActiveUsers, snap.ActiveSubscribers, snap.Ratings, snap.AvgRating, snap.UpdatedAt)
	return err
}

// SnapshotForDay returns an app's snapshot for one day, or nil when none
// exists yet.
func (s *Store) SnapshotForDay(ctx context.Context, appID string, day time.Time) (*AnalyticsSnapshot, error) {
	query := `SELECT id, app_id, snapshot_date, downloads, revenue, mrr, active_users, active_subscribers, ratings, avg_rating, updated_at
		FROM analytics_snapshots WHERE app_id = $1 AND snapshot_date = $2`

	snap := &AnalyticsSnapshot{}
	err := s.db.QueryRowContext(ctx, query, appID, day).Scan(
		&snap.ID, &snap.AppID, &snap.Date, &snap.Downloads, &snap.Revenue,
		&snap.MRR, &snap.ActiveUsers, &snap.ActiveSubscribers, &snap.Ratings,
		&snap.AvgRating, &snap.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return snap, err
}
