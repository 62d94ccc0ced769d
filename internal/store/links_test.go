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

func TestCreateTrackingLink(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO tracking_links`).
		WithArgs(sqlmock.AnyArg(), "user1", "app1", "myapp", "https://apps.apple.com/app/id12345", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	link := &TrackingLink{
		UserID:         "user1",
		AppID:          "app1",
		Slug:           "myapp",
		DestinationURL: "https://apps.apple.com/app/id12345",
	}
	err := s.CreateTrackingLink(context.Background(), link)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, link.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLinkBySlug_CaseInsensitive(t *testing.T) {
	s, mock := newMockStore(t)
	linkID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "app_id", "slug", "destination_url", "created_at"}).
		AddRow(linkID, "user1", "app1", "myapp", "https://example.com", time.Now())

	mock.ExpectQuery(`LOWER\(slug\) = LOWER\(\$1\)`).
		WithArgs("MyApp").
		WillReturnRows(rows)

	link, err := s.GetLinkBySlug(context.Background(), "MyApp")
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, linkID, link.ID)
}

func TestGetLinkBySlug_Unknown(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`LOWER\(slug\) = LOWER\(\$1\)`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	link, err := s.GetLinkBySlug(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, link)
}
