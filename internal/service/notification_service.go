package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dkovac/orbit/internal/domain"
	"github.com/dkovac/orbit/internal/repository"
)

type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// Notify appends an unread notification. Self-actions never produce one.
func (s *NotificationService) Notify(ctx context.Context, typ string, senderID, receiverID uuid.UUID, postID *uuid.UUID) error {
	if senderID == receiverID {
		return nil
	}

	n := &domain.Notification{
		ID:         uuid.New(),
		Type:       typ,
		SenderID:   senderID,
		ReceiverID: receiverID,
		PostID:     postID,
		IsRead:     false,
		CreatedAt:  time.Now(),
	}

	if err := s.notificationRepo.Create(ctx, n); err != nil {
		return fmt.Errorf("creating notification: %w", err)
	}
	return nil
}

// ListFor returns the receiver's notifications, newest first.
func (s *NotificationService) ListFor(ctx context.Context, receiverID uuid.UUID) ([]domain.Notification, error) {
	ns, err := s.notificationRepo.ListByReceiver(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if ns == nil {
		ns = []domain.Notification{}
	}
	return ns, nil
}

// MarkAllRead flips every unread notification for the receiver. Idempotent.
func (s *NotificationService) MarkAllRead(ctx context.Context, receiverID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, receiverID)
}
