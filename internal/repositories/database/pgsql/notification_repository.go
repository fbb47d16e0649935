package pgsql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fincore/backoffice/internal/apperrors"
	portssvc "github.com/fincore/backoffice/internal/core/ports/services"
)

// PgxNotificationRepository persists approval notifications. Delivery is
// pull-based: clients poll their unread rows.
type PgxNotificationRepository struct {
	BaseRepository
}

// newPgxNotificationRepository creates a pgsql-backed Notifier.
func newPgxNotificationRepository(pool *pgxpool.Pool) portssvc.Notifier {
	return &PgxNotificationRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portssvc.Notifier = (*PgxNotificationRepository)(nil)

// Notify fans one notification row out per user.
func (r *PgxNotificationRepository) Notify(ctx context.Context, userIDs []string, title, message, deepLink string) error {
	if len(userIDs) == 0 {
		return nil
	}

	query := `
		INSERT INTO notifications (notification_id, user_id, title, message, deep_link, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6);
	`
	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for _, userID := range userIDs {
		batch.Queue(query, uuid.NewString(), userID, title, message, deepLink, now)
	}

	br := r.Pool.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert notifications", err)
	}
	return nil
}

// ClearForUserAction removes the user's notifications pointing at the action's
// deep link.
func (r *PgxNotificationRepository) ClearForUserAction(ctx context.Context, userID, actionID string) error {
	query := `DELETE FROM notifications WHERE user_id = $1 AND deep_link LIKE '%' || $2;`

	if _, err := r.Pool.Exec(ctx, query, userID, actionID); err != nil {
		return apperrors.NewAppError(500, "failed to clear notifications for action "+actionID, err)
	}
	return nil
}
