package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/investhub/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix      = "session:"
	userSessionsKeyPrefix = "user_sessions:"
)

type sessionRepository struct {
	client redis.UniversalClient
}

func newSessionRepository(client redis.UniversalClient) *sessionRepository {
	return &sessionRepository{
		client: client,
	}
}

func sessionKey(tokenHash string) string {
	return sessionKeyPrefix + tokenHash
}

func userSessionsKey(userID uuid.UUID) string {
	return userSessionsKeyPrefix + userID.String()
}

// Save stores the session and indexes it under its user in one MULTI/EXEC,
// so a stored session is always reachable by DeleteAllByUserID.
func (r *sessionRepository) Save(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	setKey := userSessionsKey(userID)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, sessionKey(tokenHash), userID.String(), ttl)
		pipe.SAdd(ctx, setKey, tokenHash)
		// every session shares the same ttl, so the index lives as long as the newest one
		pipe.Expire(ctx, setKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session failed: %w", err)
	}

	return nil
}

func (r *sessionRepository) GetUserID(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	val, err := r.client.Get(ctx, sessionKey(tokenHash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, domain.ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("redis get session failed: %w", err)
	}

	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("session user id parse failed: %w", err)
	}

	return userID, nil
}

// Delete removes the session; an unknown hash is not an error.
func (r *sessionRepository) Delete(ctx context.Context, tokenHash string) error {
	userID, err := r.GetUserID(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, sessionKey(tokenHash))
		pipe.SRem(ctx, userSessionsKey(userID), tokenHash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del session failed: %w", err)
	}

	return nil
}

func (r *sessionRepository) DeleteAllByUserID(ctx context.Context, userID uuid.UUID) error {
	setKey := userSessionsKey(userID)

	hashes, err := r.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("redis list user sessions failed: %w", err)
	}

	keys := make([]string, 0, len(hashes)+1)
	for _, h := range hashes {
		keys = append(keys, sessionKey(h))
	}
	keys = append(keys, setKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del user sessions failed: %w", err)
	}

	return nil
}
