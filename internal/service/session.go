package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/repository"
	"github.com/investhub/backend/pkg/token"

	"github.com/google/uuid"
)

type sessionService struct {
	sessionRepository repository.Sessions
	tokens            token.Generator
	ttl               time.Duration
	now               func() time.Time
}

func newSessionService(sessionRepository repository.Sessions, tokens token.Generator, ttl time.Duration, now func() time.Time) *sessionService {
	return &sessionService{
		sessionRepository: sessionRepository,
		tokens:            tokens,
		ttl:               ttl,
		now:               now,
	}
}

// tokenHash keys the store so a leaked dump does not contain usable tokens.
func tokenHash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *sessionService) Create(ctx context.Context, userID uuid.UUID) (*domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		Token:     s.tokens.NewOpaque(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.sessionRepository.Save(ctx, tokenHash(session.Token), userID, s.ttl); err != nil {
		return nil, fmt.Errorf("save session failed: %w", err)
	}

	return session, nil
}

func (s *sessionService) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthenticated
	}

	userID, err := s.sessionRepository.GetUserID(ctx, tokenHash(token))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, ErrUnauthenticated
		}
		return uuid.Nil, fmt.Errorf("get session failed: %w", err)
	}

	return userID, nil
}

func (s *sessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.sessionRepository.Delete(ctx, tokenHash(token)); err != nil {
		return fmt.Errorf("delete session failed: %w", err)
	}

	return nil
}

func (s *sessionService) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.sessionRepository.DeleteAllByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete user sessions failed: %w", err)
	}

	return nil
}
