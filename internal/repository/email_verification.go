package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/investhub/backend/internal/domain"
)

type emailVerificationRepository struct {
	db *sqlx.DB
}

func newEmailVerificationRepository(db *sqlx.DB) *emailVerificationRepository {
	return &emailVerificationRepository{
		db: db,
	}
}

// Create stores a new code and invalidates every earlier unconfirmed code of the user.
func (r *emailVerificationRepository) Create(ctx context.Context, verification *domain.EmailVerification) error {
	const op = "repository.emailVerification.Create"

	const invalidateQuery = `
    UPDATE email_verification SET deleted_at = ?, updated_at = ?
    WHERE user_id = uuid_to_bin(?) AND confirmed = 0 AND deleted_at IS NULL
    `
	const insertQuery = `
    INSERT INTO email_verification (id, user_id, code, attempts, confirmed, expires_at, created_at, updated_at)
    VALUES (uuid_to_bin(:id), uuid_to_bin(:user_id), :code, :attempts, :confirmed, :expires_at, :created_at, :updated_at)
    `

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx failed: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, invalidateQuery, verification.CreatedAt, verification.CreatedAt, verification.UserID); err != nil {
		return fmt.Errorf("%s: invalidate previous codes failed: %w", op, err)
	}

	res, err := tx.NamedExecContext(ctx, insertQuery, verification)
	if err != nil {
		return fmt.Errorf("%s: insert email verification failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows != 1 {
		return fmt.Errorf("%s: expected 1 row affected, got %d", op, rows)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit failed: %w", op, err)
	}

	return nil
}

func (r *emailVerificationRepository) GetActiveByUserID(ctx context.Context, userID uuid.UUID) (*domain.EmailVerification, error) {
	const op = "repository.emailVerification.GetActiveByUserID"

	const query = `
    SELECT id, user_id, code, attempts, confirmed, confirmed_at, expires_at, created_at, updated_at, deleted_at
    FROM email_verification
    WHERE user_id = uuid_to_bin(?) AND confirmed = 0 AND deleted_at IS NULL
    ORDER BY created_at DESC
    LIMIT 1
    `

	var verification domain.EmailVerification
	if err := r.db.GetContext(ctx, &verification, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select email verification failed: %w", op, err)
	}

	return &verification, nil
}

func (r *emailVerificationRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) error {
	const op = "repository.emailVerification.IncrementAttempts"

	const query = `
    UPDATE email_verification SET attempts = attempts + 1, updated_at = ?
    WHERE id = uuid_to_bin(?)
    `

	if _, err := r.db.ExecContext(ctx, query, time.Now(), id); err != nil {
		return fmt.Errorf("%s: update email_verification failed: %w", op, err)
	}

	return nil
}

// Confirm consumes the code and marks the owner's e-mail verified. A code that
// was already consumed or invalidated yields domain.ErrNoRowsAffected.
func (r *emailVerificationRepository) Confirm(ctx context.Context, verification *domain.EmailVerification, confirmedAt time.Time) error {
	const op = "repository.emailVerification.Confirm"

	const confirmQuery = `
    UPDATE email_verification
    SET confirmed = 1, confirmed_at = ?, updated_at = ?
    WHERE id = uuid_to_bin(?) AND confirmed = 0 AND deleted_at IS NULL
    `
	const userQuery = `
    UPDATE user SET email_verified = 1, version = version + 1, updated_at = ?
    WHERE id = uuid_to_bin(?)
    `

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx failed: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, confirmQuery, confirmedAt, confirmedAt, verification.ID)
	if err != nil {
		return fmt.Errorf("%s: update email_verification failed: %w", op, err)
	}

	if err := expectOneRow(res, domain.ErrNoRowsAffected); err != nil {
		return err
	}

	res, err = tx.ExecContext(ctx, userQuery, confirmedAt, verification.UserID)
	if err != nil {
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	if err := expectOneRow(res, domain.ErrNotFound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit failed: %w", op, err)
	}

	return nil
}
