package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/investhub/backend/internal/domain"

	"github.com/jmoiron/sqlx"
)

const kycColumns = `id, user_id, full_name, date_of_birth, id_type, id_front, id_back, selfie, status, submitted_at, verified_at, verified_by, rejected_at, rejected_by, rejection_reason`

type kycRepository struct {
	db *sqlx.DB
}

func newKYCRepository(db *sqlx.DB) *kycRepository {
	return &kycRepository{
		db: db,
	}
}

// loadKYC fills user.KYC from the submission the user row points at.
func loadKYC(ctx context.Context, q sqlx.QueryerContext, user *domain.User) error {
	if user.KYCSubmissionID == nil {
		user.KYC = domain.KYCNone{}
		return nil
	}

	const query = `SELECT ` + kycColumns + ` FROM kyc_submission WHERE id = uuid_to_bin(?);`

	var record domain.KYCRecord
	if err := sqlx.GetContext(ctx, q, &record, query, *user.KYCSubmissionID); err != nil {
		return fmt.Errorf("select kyc submission failed: %w", err)
	}

	info, err := record.Info()
	if err != nil {
		return err
	}
	user.KYC = info

	return nil
}

func (r *kycRepository) Submit(ctx context.Context, user *domain.User, record *domain.KYCRecord) error {
	const op = "repository.kyc.Submit"

	const insertQuery = `
	INSERT INTO kyc_submission (id, user_id, full_name, date_of_birth, id_type, id_front, id_back, selfie, status, submitted_at)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?, ?, ?, ?, ?);
	`
	const updateUserQuery = `
	UPDATE user SET kyc_status = 'submitted', kyc_verified = 0, kyc_submission_id = uuid_to_bin(?), version = version + 1, updated_at = ?
	WHERE id = uuid_to_bin(?) AND version = ? AND kyc_status IN ('none', 'rejected');
	`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx failed: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, insertQuery,
		record.ID,
		record.UserID,
		record.FullName,
		record.DateOfBirth,
		record.IDType,
		record.IDFront,
		record.IDBack,
		record.Selfie,
		domain.KYCStatusSubmitted,
		record.SubmittedAt,
	); err != nil {
		return fmt.Errorf("%s: insert kyc submission failed: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, updateUserQuery, record.ID, record.SubmittedAt, user.ID, user.Version)
	if err != nil {
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}

	if err := expectOneRow(res, domain.ErrVersionConflict); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit failed: %w", op, err)
	}

	return nil
}

// Decide moves the user's pending submission into a terminal state and
// appends the notification in the same transaction.
func (r *kycRepository) Decide(ctx context.Context, user *domain.User, decision domain.KYCDecision, notification *domain.Notification) error {
	const op = "repository.kyc.Decide"

	const updateUserQuery = `
	UPDATE user SET kyc_status = ?, kyc_verified = ?, version = version + 1, updated_at = ?
	WHERE id = uuid_to_bin(?) AND version = ? AND kyc_status = 'submitted' AND kyc_submission_id = uuid_to_bin(?);
	`
	const verifyQuery = `
	UPDATE kyc_submission SET status = 'verified', verified_at = ?, verified_by = uuid_to_bin(?)
	WHERE id = uuid_to_bin(?) AND status = 'submitted';
	`
	const rejectQuery = `
	UPDATE kyc_submission SET status = 'rejected', rejected_at = ?, rejected_by = uuid_to_bin(?), rejection_reason = ?
	WHERE id = uuid_to_bin(?) AND status = 'submitted';
	`

	var submissionRes sql.Result

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin tx failed: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, updateUserQuery,
		decision.Status,
		decision.Status == domain.KYCStatusVerified,
		decision.DecidedAt,
		user.ID,
		user.Version,
		decision.SubmissionID,
	)
	if err != nil {
		return fmt.Errorf("%s: update user failed: %w", op, err)
	}
	if err := expectOneRow(res, domain.ErrVersionConflict); err != nil {
		return err
	}

	switch decision.Status {
	case domain.KYCStatusVerified:
		submissionRes, err = tx.ExecContext(ctx, verifyQuery, decision.DecidedAt, decision.DecidedBy, decision.SubmissionID)
	case domain.KYCStatusRejected:
		submissionRes, err = tx.ExecContext(ctx, rejectQuery, decision.DecidedAt, decision.DecidedBy, decision.Reason, decision.SubmissionID)
	default:
		return fmt.Errorf("%s: unsupported decision %q", op, decision.Status)
	}
	if err != nil {
		return fmt.Errorf("%s: update kyc submission failed: %w", op, err)
	}
	if err := expectOneRow(submissionRes, domain.ErrVersionConflict); err != nil {
		return err
	}

	if err := insertNotification(ctx, tx, notification); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit failed: %w", op, err)
	}

	return nil
}

// ListPending returns the current submissions of users awaiting review, oldest first.
func (r *kycRepository) ListPending(ctx context.Context) ([]domain.KYCRecord, error) {
	const query = `
	SELECT k.id, k.user_id, k.full_name, k.date_of_birth, k.id_type, k.id_front, k.id_back, k.selfie, k.status, k.submitted_at,
		k.verified_at, k.verified_by, k.rejected_at, k.rejected_by, k.rejection_reason
	FROM kyc_submission k
	JOIN user u ON u.kyc_submission_id = k.id
	WHERE u.kyc_status = 'submitted'
	ORDER BY k.submitted_at ASC;
	`

	var records []domain.KYCRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("select pending kyc failed: %w", err)
	}

	return records, nil
}

// ListByUserID returns every submission of the user, newest first.
func (r *kycRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.KYCRecord, error) {
	const query = `SELECT ` + kycColumns + ` FROM kyc_submission WHERE user_id = uuid_to_bin(?) ORDER BY submitted_at DESC;`

	var records []domain.KYCRecord
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("select kyc history failed: %w", err)
	}

	return records, nil
}

func expectOneRow(res sql.Result, errZero error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected failed: %w", err)
	}

	if rows == 0 {
		return errZero
	}
	if rows != 1 {
		return fmt.Errorf("expected 1 row affected, got %d", rows)
	}

	return nil
}

