package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// CreateConnectedApp persists a new provider connection, replacing an
// existing connection for the same (user, app, provider).
func (s *Store) CreateConnectedApp(ctx context.Context, app *ConnectedApp) error {
	if app.ID == uuid.Nil {
		app.ID = uuid.New()
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now

	query := `INSERT INTO connected_apps
		(id, user_id, app_id, provider, project_id, credentials, masked_credentials, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id, app_id, provider) DO UPDATE SET
			project_id = EXCLUDED.project_id,
			credentials = EXCLUDED.credentials,
			masked_credentials = EXCLUDED.masked_credentials,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		app.ID, app.UserID, app.AppID, app.Provider, app.ProjectID,
		app.CredentialsJSON, app.MaskedJSON, app.Active, app.CreatedAt, app.UpdatedAt)
	return err
}

// GetConnectedApp retrieves one connection by user, app and provider.
func (s *Store) GetConnectedApp(ctx context.Context, userID, appID, providerName string) (*ConnectedApp, error) {
	query := `SELECT id, user_id, app_id, provider, project_id, credentials, masked_credentials, active, last_sync_at, created_at, updated_at
		FROM connected_apps WHERE user_id = $1 AND app_id = $2 AND provider = $3`

	app := &ConnectedApp{}
	err := s.db.QueryRowContext(ctx, query, userID, appID, providerName).Scan(
		&app.ID, &app.UserID, &app.AppID, &app.Provider, &app.ProjectID,
		&app.CredentialsJSON, &app.MaskedJSON, &app.Active, &app.LastSyncAt,
		&app.CreatedAt, &app.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return app, err
}

// ActiveConnectedApps returns active connections for a user, or for every
// user when userID is empty (the scheduled system-wide sync).
func (s *Store) ActiveConnectedApps(ctx context.Context, userID string) ([]*ConnectedApp, error) {
	query := `SELECT id, user_id, app_id, provider, project_id, credentials, masked_credentials, active, last_sync_at, created_at, updated_at
		FROM connected_apps WHERE active = TRUE`
	args := []any{}
	if userID != "" {
		query += ` AND user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*ConnectedApp
	for rows.Next() {
		app := &ConnectedApp{}
		if err := rows.Scan(
			&app.ID, &app.UserID, &app.AppID, &app.Provider, &app.ProjectID,
			&app.CredentialsJSON, &app.MaskedJSON, &app.Active, &app.LastSyncAt,
			&app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// TouchLastSync records a completed provider run.
func (s *Store) TouchLastSync(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE connected_apps SET last_sync_at = $2, updated_at = $2 WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, id, at)
	return err
}

// DisconnectApp deactivates a connection. Historical metric rows are kept.
func (s *Store) DisconnectApp(ctx context.Context, userID, appID, providerName string) error {
	query := `UPDATE connected_apps SET active = FALSE, updated_at = $4
		WHERE user_id = $1 AND app_id = $2 AND provider = $3`
	_, err := s.db.ExecContext(ctx, query, userID, appID, providerName, time.Now())
	return err
}
