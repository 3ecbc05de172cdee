package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/repository"

	"github.com/google/uuid"
)

type notificationService struct {
	notificationRepository repository.Notifications
}

func newNotificationService(notificationRepository repository.Notifications) *notificationService {
	return &notificationService{
		notificationRepository: notificationRepository,
	}
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	notifications, err := s.notificationRepository.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications failed: %w", err)
	}

	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.notificationRepository.MarkRead(ctx, notificationID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("mark notification read failed: %w", err)
	}

	return nil
}
