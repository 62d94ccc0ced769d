package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// CreateTrackingLink persists a new tracking link.
func (s *Store) CreateTrackingLink(ctx context.Context, link *TrackingLink) error {
	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	link.CreatedAt = time.Now()

	query := `INSERT INTO tracking_links (id, user_id, app_id, slug, destination_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		link.ID, link.UserID, link.AppID, link.Slug, link.DestinationURL, link.CreatedAt)
	return err
}

// GetLinkBySlug retrieves a tracking link by its public slug,
// case-insensitively. Returns nil when no link matches.
func (s *Store) GetLinkBySlug(ctx context.Context, slug string) (*TrackingLink, error) {
	query := `SELECT id, user_id, app_id, slug, destination_url, created_at
		FROM tracking_links WHERE LOWER(slug) = LOWER($1)`

	link := &TrackingLink{}
	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&link.ID, &link.UserID, &link.AppID, &link.Slug, &link.DestinationURL, &link.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return link, err
}

// LinkForUser returns the user's most recently created tracking link, or
// nil when they have none.
func (s *Store) LinkForUser(ctx context.Context, userID string) (*TrackingLink, error) {
	query := `SELECT id, user_id, app_id, slug, destination_url, created_at
		FROM tracking_links WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`

	link := &TrackingLink{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&link.ID, &link.UserID, &link.AppID, &link.Slug, &link.DestinationURL, &link.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return link, err
}
