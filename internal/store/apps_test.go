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

func TestCreateConnectedApp(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`INSERT INTO connected_apps .+ ON CONFLICT \(user_id, app_id, provider\) DO UPDATE`).
		WithArgs(sqlmock.AnyArg(), "user1", "app1", "revenuecat", "proj_abc",
			`{"api_key":"sk"}`, `{"api_key":"********"}`, true,
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.CreateConnectedApp(context.Background(), &ConnectedApp{
		UserID:          "user1",
		AppID:           "app1",
		Provider:        "revenuecat",
		ProjectID:       "proj_abc",
		CredentialsJSON: `{"api_key":"sk"}`,
		MaskedJSON:      `{"api_key":"********"}`,
		Active:          true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveConnectedApps_AllUsers(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "app_id", "provider", "project_id", "credentials",
		"masked_credentials", "active", "last_sync_at", "created_at", "updated_at",
	}).
		AddRow(uuid.New(), "user1", "app1", "revenuecat", "", "{}", "{}", true, nil, now, now).
		AddRow(uuid.New(), "user2", "app2", "appsflyer", "", "{}", "{}", true, nil, now, now)

	mock.ExpectQuery(`FROM connected_apps WHERE active = TRUE ORDER BY created_at`).
		WillReturnRows(rows)

	apps, err := s.ActiveConnectedApps(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "user2", apps[1].UserID)
}

func TestActiveConnectedApps_SingleUser(t *testing.T) {
	s, mock := newMockStore(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "app_id", "provider", "project_id", "credentials",
		"masked_credentials", "active", "last_sync_at", "created_at", "updated_at",
	}).
		AddRow(uuid.New(), "user1", "app1", "revenuecat", "", "{}", "{}", true, nil, now, now)

	mock.ExpectQuery(`FROM connected_apps WHERE active = TRUE AND user_id = \$1`).
		WithArgs("user1").
		WillReturnRows(rows)

	apps, err := s.ActiveConnectedApps(context.Background(), "user1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "user1", apps[0].UserID)
}

func TestTouchLastSync(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.New()
	at := time.Now()

	mock.ExpectExec(`UPDATE connected_apps SET last_sync_at = \$2`).
		WithArgs(id, at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.TouchLastSync(context.Background(), id, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserIDForAppUserID_Unknown(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT user_id FROM subscriptions`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	userID, err := s.UserIDForAppUserID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "", userID)
}
