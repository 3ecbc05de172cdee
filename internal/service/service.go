package service

import (
	"context"
	"io"
	"time"

	"github.com/investhub/backend/internal/config"
	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/repository"
	"github.com/investhub/backend/pkg/hash"
	"github.com/investhub/backend/pkg/token"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Services struct {
	Sessions      Sessions
	Users         Users
	KYC           KYC
	Admin         Admin
	Notifications Notifications
}

type Deps struct {
	Config   *config.Config
	Hasher   hash.PasswordHasher
	Tokens   token.Generator
	Repos    *repository.Repositories
	Storage  DocumentStorage
	Enqueuer TaskEnqueuer
	// Now is replaced in tests.
	Now func() time.Time
}

func NewServices(deps Deps) *Services {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	notifier := newNotifier(deps.Enqueuer)
	sessions := newSessionService(deps.Repos.Sessions, deps.Tokens, deps.Config.Auth.SessionTTL, now)

	return &Services{
		Sessions: sessions,
		Users: newUserService(deps.Repos.Users,
			deps.Repos.EmailVerifications,
			sessions,
			deps.Hasher,
			deps.Tokens,
			notifier,
			deps.Config.Auth,
			now,
		),
		KYC:           newKYCService(deps.Repos.Users, deps.Repos.KYC, deps.Storage, notifier, now),
		Admin:         newAdminService(deps.Repos.Users),
		Notifications: newNotificationService(deps.Repos.Notifications),
	}
}

// Sessions is the session registry: opaque bearer tokens mapped to user ids.
type Sessions interface {
	Create(ctx context.Context, userID uuid.UUID) (*domain.Session, error)
	Validate(ctx context.Context, token string) (uuid.UUID, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

type Users interface {
	Register(ctx context.Context, input RegisterInput) (uuid.UUID, error)
	ResendVerification(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, userID uuid.UUID, code string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
}

type KYC interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitKYCInput) (*domain.User, error)
	Approve(ctx context.Context, userID, adminID uuid.UUID) (*domain.User, error)
	Reject(ctx context.Context, userID, adminID uuid.UUID, reason string) (*domain.User, error)
	ListPending(ctx context.Context) ([]PendingKYC, error)
	History(ctx context.Context, userID uuid.UUID) ([]domain.KYCRecord, error)
}

type Admin interface {
	Authorize(ctx context.Context, userID uuid.UUID) error
	ListUsers(ctx context.Context, page, limit int) ([]domain.User, int64, error)
	Analytics(ctx context.Context) (*domain.UserStats, error)
}

type Notifications interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

// DocumentStorage keeps uploaded KYC images.
type DocumentStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string) (string, error)
}

// TaskEnqueuer is satisfied by *asynq.Client.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}
