package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// InsertAttribution writes one attribution outcome. ClickID is nil for
// direct (unattributed) installs.
func (s *Store) InsertAttribution(ctx context.Context, attr *InstallAttribution) error {
	if attr.ID == uuid.Nil {
		attr.ID = uuid.New()
	}
	if attr.AttributedAt.IsZero() {
		attr.AttributedAt = time.Now()
	}

	query := `INSERT INTO install_attributions (id, user_id, app_user_id, event_type, source, device, country, revenue, click_id, attributed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := s.db.ExecContext(ctx, query,
		attr.ID, attr.UserID, attr.AppUserID, attr.EventType, attr.Source,
		attr.Device, attr.Country, attr.Revenue, attr.ClickID, attr.AttributedAt)
	return err
}
