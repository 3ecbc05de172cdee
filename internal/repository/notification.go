package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/investhub/backend/internal/domain"

	"github.com/jmoiron/sqlx"
)

type notificationRepository struct {
	db *sqlx.DB
}

func newNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{
		db: db,
	}
}

func insertNotification(ctx context.Context, exec sqlx.ExecerContext, n *domain.Notification) error {
	const query = `
	INSERT INTO notification (id, user_id, type, title, message, is_read, created_at)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?, ?);
	`

	if _, err := exec.ExecContext(ctx, query, n.ID, n.UserID, n.Type, n.Title, n.Message, n.Read, n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification failed: %w", err)
	}

	return nil
}

func (r *notificationRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	const query = `
	SELECT id, user_id, type, title, message, is_read, created_at FROM notification
	WHERE user_id = uuid_to_bin(?) ORDER BY created_at DESC;
	`

	notifications := make([]domain.Notification, 0)
	if err := r.db.SelectContext(ctx, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("select notifications failed: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	const query = `UPDATE notification SET is_read = 1 WHERE id = uuid_to_bin(?) AND user_id = uuid_to_bin(?);`
	const existsQuery = `SELECT EXISTS(SELECT 1 FROM notification WHERE id = uuid_to_bin(?) AND user_id = uuid_to_bin(?));`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("update notification failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected failed: %w", err)
	}
	if rows > 0 {
		return nil
	}

	// zero rows also means it was already read
	var exists bool
	if err := r.db.GetContext(ctx, &exists, existsQuery, id, userID); err != nil {
		return fmt.Errorf("check notification failed: %w", err)
	}
	if !exists {
		return domain.ErrNotFound
	}

	return nil
}
