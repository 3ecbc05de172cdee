package v1

import (
	"context"

	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockSessions struct{ mock.Mock }

func (m *mockSessions) Create(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, userID)
	s, _ := args.Get(0).(*domain.Session)
	return s, args.Error(1)
}

func (m *mockSessions) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockSessions) Revoke(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockSessions) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Register(ctx context.Context, input service.RegisterInput) (uuid.UUID, error) {
	args := m.Called(ctx, input)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockUsers) ResendVerification(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockUsers) VerifyEmail(ctx context.Context, userID uuid.UUID, code string) (*service.AuthResult, error) {
	args := m.Called(ctx, userID, code)
	res, _ := args.Get(0).(*service.AuthResult)
	return res, args.Error(1)
}

func (m *mockUsers) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(*service.AuthResult)
	return res, args.Error(1)
}

func (m *mockUsers) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockUsers) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUsers) UpdateProfile(ctx context.Context, userID uuid.UUID, input service.UpdateProfileInput) (*domain.User, error) {
	args := m.Called(ctx, userID, input)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUsers) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	return m.Called(ctx, userID, currentPassword, newPassword).Error(0)
}

type mockKYC struct{ mock.Mock }

func (m *mockKYC) Submit(ctx context.Context, userID uuid.UUID, input service.SubmitKYCInput) (*domain.User, error) {
	args := m.Called(ctx, userID, input)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockKYC) Approve(ctx context.Context, userID, adminID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID, adminID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockKYC) Reject(ctx context.Context, userID, adminID uuid.UUID, reason string) (*domain.User, error) {
	args := m.Called(ctx, userID, adminID, reason)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockKYC) ListPending(ctx context.Context) ([]service.PendingKYC, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).([]service.PendingKYC)
	return res, args.Error(1)
}

func (m *mockKYC) History(ctx context.Context, userID uuid.UUID) ([]domain.KYCRecord, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).([]domain.KYCRecord)
	return res, args.Error(1)
}

type mockAdmin struct{ mock.Mock }

func (m *mockAdmin) Authorize(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockAdmin) ListUsers(ctx context.Context, page, limit int) ([]domain.User, int64, error) {
	args := m.Called(ctx, page, limit)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *mockAdmin) Analytics(ctx context.Context) (*domain.UserStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(*domain.UserStats)
	return stats, args.Error(1)
}

type mockNotifications struct{ mock.Mock }

func (m *mockNotifications) List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).([]domain.Notification)
	return res, args.Error(1)
}

func (m *mockNotifications) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return m.Called(ctx, userID, notificationID).Error(0)
}
