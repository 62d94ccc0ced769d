package store

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestUpsertMetric(t *testing.T) {
	s, mock := newMockStore(t)
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO realtime_metrics .+ ON CONFLICT \(app_id, provider, metric_type, metric_date\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "app1", "revenuecat", "revenue", day, 99.9, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpsertMetric(context.Background(), &RealtimeMetric{
		AppID:      "app1",
		Provider:   "revenuecat",
		MetricType: "revenue",
		MetricDate: day,
		Value:      99.9,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToMetric_IncrementsInsideUpsert(t *testing.T) {
	s, mock := newMockStore(t)
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`metric_value = realtime_metrics\.metric_value \+ EXCLUDED\.metric_value`).
		WithArgs(sqlmock.AnyArg(), "app1", "revenuecat", "downloads", day, 1.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.AddToMetric(context.Background(), "app1", "revenuecat", "downloads", day, 1)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetricsForDay(t *testing.T) {
	s, mock := newMockStore(t)
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "app_id", "provider", "metric_type", "metric_date", "metric_value", "updated_at"}).
		AddRow(uuid.New(), "app1", "revenuecat", "revenue", day, 42.0, now).
		AddRow(uuid.New(), "app1", "appsflyer", "downloads", day, 17.0, now)

	mock.ExpectQuery(`SELECT .+ FROM realtime_metrics WHERE app_id = \$1 AND metric_date = \$2`).
		WithArgs("app1", day).
		WillReturnRows(rows)

	metrics, err := s.MetricsForDay(context.Background(), "app1", day)
	require.NoError(t, err)
	require.Len(t, metrics, 2)
	assert.Equal(t, "revenue", metrics[0].MetricType)
	assert.Equal(t, 17.0, metrics[1].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}
