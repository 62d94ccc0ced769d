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

func TestUpsertSnapshot(t *testing.T) {
	s, mock := newMockStore(t)
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO analytics_snapshots .+ ON CONFLICT \(app_id, snapshot_date\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "app1", day, 45.0, 99.9, 3.33, 10.0, 10.0, 120.0, 4.7, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.UpsertSnapshot(context.Background(), &AnalyticsSnapshot{
		AppID:             "app1",
		Date:              day,
		Downloads:         45,
		Revenue:           99.9,
		MRR:               3.33,
		ActiveUsers:       10,
		ActiveSubscribers: 10,
		Ratings:           120,
		AvgRating:         4.7,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotForDay_NoRow(t *testing.T) {
	s, mock := newMockStore(t)
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT .+ FROM analytics_snapshots`).
		WithArgs("app1", day).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	snap, err := s.SnapshotForDay(context.Background(), "app1", day)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestSnapshotForDay(t *testing.T) {
	s, mock := newMockStore(t)
	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "app_id", "snapshot_date", "downloads", "revenue", "mrr", "active_users", "active_subscribers", "ratings", "avg_rating", "updated_at"}).
		AddRow(uuid.New(), "app1", day, 45.0, 99.9, 3.33, 10.0, 10.0, 120.0, 4.7, time.Now())

	mock.ExpectQuery(`SELECT .+ FROM analytics_snapshots`).
		WithArgs("app1", day).
		WillReturnRows(rows)

	snap, err := s.SnapshotForDay(context.Background(), "app1", day)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 45.0, snap.Downloads)
	assert.Equal(t, 10.0, snap.ActiveSubscribers)
	assert.Equal(t, 4.7, snap.AvgRating)
}
