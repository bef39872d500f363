package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kerhoff/NochesTranquilas/internal/models"
	"github.com/Kerhoff/NochesTranquilas/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new admin notification repository
func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.AdminNotification) (*models.AdminNotification, error) {
	query := `
		INSERT INTO admin_notifications (id, baby_id, baby_name, notification_type, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		n.ID,
		n.BabyID,
		n.BabyName,
		n.Type,
		n.Message,
		n.IsRead,
		n.CreatedAt,
	).Scan(&n.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create admin notification: %w", err)
	}

	return n, nil
}

func (r *notificationRepository) List(ctx context.Context, filters repository.NotificationFilters) ([]*models.AdminNotification, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, baby_id, baby_name, notification_type, message, is_read, created_at
		FROM admin_notifications`)

	args := []any{}
	if filters.UnreadOnly {
		sb.WriteString(` WHERE is_read = FALSE`)
	}
	sb.WriteString(` ORDER BY created_at DESC`)
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		sb.WriteString(fmt.Sprintf(` LIMIT $%d`, len(args)))
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.AdminNotification
	for rows.Next() {
		n := &models.AdminNotification{}
		if err := rows.Scan(&n.ID, &n.BabyID, &n.BabyName, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin notifications: %w", err)
	}

	return notifications, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE admin_notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	return expectOneRow(result, "notification", id)
}
