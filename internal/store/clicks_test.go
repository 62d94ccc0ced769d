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

func TestInsertClick(t *testing.T) {
	s, mock := newMockStore(t)
	linkID := uuid.New()

	mock.ExpectExec(`INSERT INTO link_clicks`).
		WithArgs(sqlmock.AnyArg(), linkID, "Twitter", "iPhone", "US", "Austin", "https://t.co/xyz", "abc123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.InsertClick(context.Background(), &LinkClick{
		LinkID:      linkID,
		Source:      "Twitter",
		Device:      "iPhone",
		Country:     "US",
		City:        "Austin",
		Referrer:    "https://t.co/xyz",
		Fingerprint: "abc123",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentClick_WindowOrdering(t *testing.T) {
	s, mock := newMockStore(t)
	linkID := uuid.New()
	since := time.Now().Add(-60 * time.Minute)
	clickedAt := time.Now().Add(-5 * time.Minute)

	rows := sqlmock.NewRows([]string{"id", "link_id", "source", "device", "country", "city", "referrer", "fingerprint", "clicked_at"}).
		AddRow(uuid.New(), linkID, "Twitter", "iPhone", "US", "Austin", "", "", clickedAt)

	mock.ExpectQuery(`ORDER BY clicked_at DESC LIMIT 1`).
		WithArgs(linkID, since).
		WillReturnRows(rows)

	click, err := s.RecentClick(context.Background(), linkID, since)
	require.NoError(t, err)
	require.NotNil(t, click)
	assert.Equal(t, "Twitter", click.Source)
	assert.Equal(t, "US", click.Country)
}

func TestRecentClick_EmptyWindow(t *testing.T) {
	s, mock := newMockStore(t)
	linkID := uuid.New()

	mock.ExpectQuery(`ORDER BY clicked_at DESC LIMIT 1`).
		WithArgs(linkID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	click, err := s.RecentClick(context.Background(), linkID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, click)
}
