package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type adminService struct {
	userRepository repository.Users
}

func newAdminService(userRepository repository.Users) *adminService {
	return &adminService{
		userRepository: userRepository,
	}
}

// Authorize succeeds only for users holding the admin role.
func (s *adminService) Authorize(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrForbidden
		}
		return fmt.Errorf("get user failed: %w", err)
	}

	if !user.IsAdmin() {
		return ErrForbidden
	}

	return nil
}

func (s *adminService) ListUsers(ctx context.Context, page, limit int) ([]domain.User, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	users, total, err := s.userRepository.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list users failed: %w", err)
	}

	return users, total, nil
}

// Analytics scans the user table on every call.
func (s *adminService) Analytics(ctx context.Context) (*domain.UserStats, error) {
	stats, err := s.userRepository.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("user stats failed: %w", err)
	}

	return stats, nil
}
