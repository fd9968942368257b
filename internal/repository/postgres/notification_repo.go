package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkovac/orbit/internal/domain"
)

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, type, sender_id, receiver_id, post_id, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query,
		n.ID, n.Type, n.SenderID, n.ReceiverID, n.PostID, n.IsRead, n.CreatedAt,
	)
	return err
}

func (r *NotificationRepo) ListByReceiver(ctx context.Context, receiverID uuid.UUID) ([]domain.Notification, error) {
	query := `
		SELECT n.id, n.type, n.sender_id, n.receiver_id, n.post_id, n.is_read, n.created_at,
			u.username, u.display_name
		FROM notifications n
		JOIN users u ON n.sender_id = u.id
		WHERE n.receiver_id = $1
		ORDER BY n.created_at DESC`

	rows, err := r.pool.Query(ctx, query, receiverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ns []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.Type, &n.SenderID, &n.ReceiverID, &n.PostID, &n.IsRead, &n.CreatedAt,
			&n.SenderUsername, &n.SenderDisplayName,
		); err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}
	return ns, rows.Err()
}

// MarkAllRead is idempotent; rows already read are left untouched.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, receiverID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE receiver_id = $1 AND is_read = FALSE`,
		receiverID,
	)
	return err
}
