package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UpsertMetric writes one observed value for (app, provider, type, day).
// Re-running a sync overwrites the previous value: last writer wins.
func (s *Store) UpsertMetric(ctx context.Context, m *RealtimeMetric) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.UpdatedAt = time.Now()

	query := `INSERT INTO realtime_metrics (id, app_id, provider, metric_type, metric_date, metric_value, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (app_id, provider, metric_type, metric_date) DO UPDATE SET
			metric_value = EXCLUDED.metric_value,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.AppID, m.Provider, m.MetricType, m.MetricDate, m.Value, m.UpdatedAt)
	return err
}

// AddToMetric atomically adds delta to a metric's value, creating the row
// at delta when absent. The increment happens inside the upsert so two
// concurrent webhook deliveries both land.
func (s *Store) AddToMetric(ctx context.Context, appID, provider, metricType string, metricDate time.Time, delta float64) error {
	query := `INSERT INTO realtime_metrics (id, app_id, provider, metric_type, metric_date, metric_value, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (app_id, provider, metric_type, metric_date) DO UPDATE SET
			metric_value = realtime_metrics.metric_value + EXCLUDED.metric_value,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		uuid.New(), appID, provider, metricType, metricDate, delta, time.Now())
	return err
}

// MetricsForDay returns all of an app's metrics for one day, across
// providers.
func (s *Store) MetricsForDay(ctx context.Context, appID string, day time.Time) ([]*RealtimeMetric, error) {
	query := `SELECT id, app_id, provider, metric_type, metric_date, metric_value, updated_at
		FROM realtime_metrics WHERE app_id = $1 AND metric_date = $2`

	rows, err := s.db.QueryContext(ctx, query, appID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []*RealtimeMetric
	for rows.Next() {
		m := &RealtimeMetric{}
		if err := rows.Scan(&m.ID, &m.AppID, &m.Provider, &m.MetricType, &m.MetricDate, &m.Value, &m.UpdatedAt); err != nil {
			return nil, err
		}
		metrics = append(metrics, m)
	}
	return metrics, rows.Err()
}
