package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// UpsertSubscription records the app_user_id → user mapping the
// attribution matcher resolves against.
func (s *Store) UpsertSubscription(ctx context.Context, sub *Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	sub.CreatedAt = time.Now()

	query := `INSERT INTO subscriptions (id, app_user_id, user_id, app_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (app_user_id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			app_id = EXCLUDED.app_id`

	_, err := s.db.ExecContext(ctx, query,
		sub.ID, sub.AppUserID, sub.UserID, sub.AppID, sub.CreatedAt)
	return err
}

// UserIDForAppUserID resolves a provider-side app_user_id to our user ID.
// Returns "" when the mapping is unknown.
func (s *Store) UserIDForAppUserID(ctx context.Context, appUserID string) (string, error) {
	query := `SELECT user_id FROM subscriptions WHERE app_user_id = $1`

	var userID string
	err := s.db.QueryRowContext(ctx, query, appUserID).Scan(&userID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return userID, err
}
