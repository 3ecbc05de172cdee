package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/investhub/backend/internal/config"
	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/repository"
	"github.com/investhub/backend/pkg/email"
	"github.com/investhub/backend/pkg/hash"
	"github.com/investhub/backend/pkg/logger"
	"github.com/investhub/backend/pkg/token"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type userService struct {
	userRepository              repository.Users
	emailVerificationRepository repository.EmailVerifications
	sessions                    Sessions
	hasher                      hash.PasswordHasher
	tokens                      token.Generator
	notifier                    Notifier
	authConfig                  config.AuthConfig
	now                         func() time.Time

	dummyHashOnce sync.Once
	dummyHash     string
}

func newUserService(userRepository repository.Users,
	emailVerificationRepository repository.EmailVerifications,
	sessions Sessions,
	hasher hash.PasswordHasher,
	tokens token.Generator,
	notifier Notifier,
	authConfig config.AuthConfig,
	now func() time.Time,
) *userService {
	return &userService{
		userRepository:              userRepository,
		emailVerificationRepository: emailVerificationRepository,
		sessions:                    sessions,
		hasher:                      hasher,
		tokens:                      tokens,
		notifier:                    notifier,
		authConfig:                  authConfig,
		now:                         now,
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Country   string
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Country   string
}

// AuthResult is returned by every operation that opens a session.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

func (s *userService) Register(ctx context.Context, input RegisterInput) (uuid.UUID, error) {
	input.Email = domain.NormalizeEmail(input.Email)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Country = strings.TrimSpace(input.Country)

	if input.Email == "" || input.Password == "" || input.FirstName == "" || input.LastName == "" || input.Country == "" {
		return uuid.Nil, ErrMissingFields
	}
	if !email.IsEmailValid(input.Email) {
		return uuid.Nil, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return uuid.Nil, ErrWeakPassword
	}

	passwordHash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password failed: %w", err)
	}

	userID, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate user id failed: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           userID,
		Email:        input.Email,
		PasswordHash: passwordHash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Country:      input.Country,
		Role:         domain.RoleUser,
		KYCStatus:    domain.KYCStatusNone,
		KYC:          domain.KYCNone{},
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return uuid.Nil, ErrEmailAlreadyRegistered
		}
		return uuid.Nil, fmt.Errorf("create user failed: %w", err)
	}

	if err := s.issueVerificationCode(ctx, user); err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}

// ResendVerification answers the same way for unknown, verified and
// unverified addresses.
func (s *userService) ResendVerification(ctx context.Context, emailAddress string) error {
	user, err := s.userRepository.GetByEmail(ctx, domain.NormalizeEmail(emailAddress))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get user by email failed: %w", err)
	}

	if user.EmailVerified {
		return nil
	}

	return s.issueVerificationCode(ctx, user)
}

func (s *userService) issueVerificationCode(ctx context.Context, user *domain.User) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate verification id failed: %w", err)
	}

	now := s.now()
	verification := &domain.EmailVerification{
		ID:        id,
		UserID:    user.ID,
		Code:      s.tokens.NewNumericCode(),
		ExpiresAt: now.Add(s.authConfig.VerificationCodeTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.emailVerificationRepository.Create(ctx, verification); err != nil {
		return fmt.Errorf("create email verification failed: %w", err)
	}

	s.notifier.Notify(ctx, user.Email, domain.EmailKindVerificationCode, NotificationPayload{
		FirstName: user.FirstName,
		Code:      verification.Code,
	})

	return nil
}

func (s *userService) VerifyEmail(ctx context.Context, userID uuid.UUID, code string) (*AuthResult, error) {
	user, err := s.userRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("get user failed: %w", err)
	}
	if user.EmailVerified {
		return nil, ErrInvalidOrExpiredToken
	}

	verification, err := s.emailVerificationRepository.GetActiveByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("get email verification failed: %w", err)
	}

	now := s.now()
	if verification.IsExpired(now) || verification.Attempts >= s.authConfig.VerificationMaxAttempts {
		return nil, ErrInvalidOrExpiredToken
	}

	if subtle.ConstantTimeCompare([]byte(verification.Code), []byte(strings.TrimSpace(code))) != 1 {
		if err := s.emailVerificationRepository.IncrementAttempts(ctx, verification.ID); err != nil {
			logger.Error("increment verification attempts failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return nil, ErrInvalidOrExpiredToken
	}

	if err := s.emailVerificationRepository.Confirm(ctx, verification, now); err != nil {
		if errors.Is(err, domain.ErrNoRowsAffected) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, fmt.Errorf("confirm email verification failed: %w", err)
	}

	user, err = s.userRepository.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get verified user failed: %w", err)
	}

	return s.openSession(ctx, user)
}

func (s *userService) Login(ctx context.Context, emailAddress, password string) (*AuthResult, error) {
	user, err := s.userRepository.GetByEmail(ctx, domain.NormalizeEmail(emailAddress))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// keep the response time of unknown addresses close to a real compare
			_ = s.hasher.Compare(s.getDummyHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, hash.ErrMismatchedPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password failed: %w", err)
	}

	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return s.openSession(ctx, user)
}

func (s *userService) getDummyHash() string {
	s.dummyHashOnce.Do(func() {
		h, err := s.hasher.Hash(s.tokens.NewOpaque())
		if err != nil {
			logger.Error("dummy hash generation failed", zap.Error(err))
			return
		}
		s.dummyHash = h
	})

	return s.dummyHash
}

func (s *userService) openSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session failed: %w", err)
	}

	return &AuthResult{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

func (s *userService) Logout(ctx context.Context, token string) error {
	return s.sessions.Revoke(ctx, token)
}

func (s *userService) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepository.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user failed: %w", err)
	}

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Country = strings.TrimSpace(input.Country)
	if input.FirstName == "" || input.LastName == "" || input.Country == "" {
		return nil, ErrMissingFields
	}

	user, err := s.GetOneByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Country = input.Country
	user.UpdatedAt = s.now()

	if err := s.userRepository.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return nil, ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("update user failed: %w", err)
	}

	return user, nil
}

// ChangePassword revokes every session of the user, the caller's included.
func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.GetOneByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.PasswordHash, currentPassword); err != nil {
		if errors.Is(err, hash.ErrMismatchedPassword) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("compare password failed: %w", err)
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}

	user.PasswordHash = passwordHash
	user.UpdatedAt = s.now()

	if err := s.userRepository.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrVersionConflict) {
			return ErrConcurrentUpdate
		}
		return fmt.Errorf("update user failed: %w", err)
	}

	// the new hash is committed, so a revocation failure does not fail the change
	if err := s.sessions.RevokeAll(ctx, userID); err != nil {
		logger.Error("revoke sessions after password change failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}

	return nil
}
