package webhookrepo

import (
	"context"
	"time"

	"github.com/selivanovm/creatorpay/internal/pg"
	"go.uber.org/zap"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

// Record registers a provider event id. Returns false when the event was
// already recorded, which callers treat as a duplicate delivery.
func (r *Repository) Record(ctx context.Context, providerEventID, eventType string) (bool, error) {
	query := `
		INSERT INTO webhook_events (provider_event_id, event_type, received_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider_event_id) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, providerEventID, eventType, time.Now())
	if err != nil {
		zap.L().Error("can't record webhook event", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
