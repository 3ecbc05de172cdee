package repository

import (
	"context"
	"time"

	"github.com/investhub/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Repositories struct {
	Users              Users
	KYC                KYC
	EmailVerifications EmailVerifications
	Notifications      Notifications
	Sessions           Sessions
}

func NewRepositories(db *sqlx.DB, redisClient redis.UniversalClient) *Repositories {
	return &Repositories{
		Users:              newUserRepository(db),
		KYC:                newKYCRepository(db),
		EmailVerifications: newEmailVerificationRepository(db),
		Notifications:      newNotificationRepository(db),
		Sessions:           newSessionRepository(redisClient),
	}
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Update writes the mutable profile columns if user.Version is still current.
	Update(ctx context.Context, user *domain.User) error
	List(ctx context.Context, offset, limit int) ([]domain.User, int64, error)
	Stats(ctx context.Context) (*domain.UserStats, error)
}

type KYC interface {
	Submit(ctx context.Context, user *domain.User, record *domain.KYCRecord) error
	Decide(ctx context.Context, user *domain.User, decision domain.KYCDecision, notification *domain.Notification) error
	ListPending(ctx context.Context) ([]domain.KYCRecord, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.KYCRecord, error)
}

type EmailVerifications interface {
	Create(ctx context.Context, verification *domain.EmailVerification) error
	GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.EmailVerification, error)
	IncrementAttempts(ctx context.Context, id uuid.UUID) error
	Confirm(ctx context.Context, verification *domain.EmailVerification, confirmedAt time.Time) error
}

type Notifications interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

type Sessions interface {
	Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error
	GetUserID(ctx context.Context, tokenHash string) (uuid.UUID, error)
	Delete(ctx context.Context, tokenHash string) error
	DeleteAllByUserID(ctx context.Context, userID uuid.UUID) error
}
