package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// InsertClick appends one click row. Clicks are never updated or deleted.
func (s *Store) InsertClick(ctx context.Context, click *LinkClick) error {
	if click.ID == uuid.Nil {
		click.ID = uuid.New()
	}
	if click.ClickedAt.IsZero() {
		click.ClickedAt = time.Now()
	}

	query := `INSERT INTO link_clicks (id, link_id, source, device, country, city, referrer, fingerprint, clicked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, query,
		click.ID, click.LinkID, click.Source, click.Device, click.Country,
		click.City, click.Referrer, click.Fingerprint, click.ClickedAt)
	return err
}

// RecentClick returns the most recent click on a link at or after the
// cutoff, or nil when the window is empty. Most-recent-click-wins is the
// attribution tie-break.
func (s *Store) RecentClick(ctx context.Context, linkID uuid.UUID, since time.Time) (*LinkClick, error) {
	query := `SELECT id, link_id, source, device, country, city, referrer, fingerprint, clicked_at
		FROM link_clicks WHERE link_id = $1 AND clicked_at >= $2
		ORDER BY clicked_at DESC LIMIT 1`

	click := &LinkClick{}
	err := s.db.QueryRowContext(ctx, query, linkID, since).Scan(
		&click.ID, &click.LinkID, &click.Source, &click.Device, &click.Country,
		&click.City, &click.Referrer, &click.Fingerprint, &click.ClickedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return click, err
}
