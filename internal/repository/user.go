package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/investhub/backend/internal/db"
	"github.com/investhub/backend/internal/domain"

	"github.com/jmoiron/sqlx"
)

const userColumns = `id, email, password_hash, first_name, last_name, country, role, email_verified, kyc_status, kyc_verified, kyc_submission_id, version, created_at, updated_at`

const unknownCountry = "Unknown"

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
	INSERT INTO user (id, email, password_hash, first_name, last_name, country, role, email_verified, kyc_status, kyc_verified, version, created_at, updated_at)
	VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Country,
		user.Role,
		user.EmailVerified,
		user.KYCStatus,
		user.KYCVerified,
		user.Version,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("db insert user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user WHERE id = uuid_to_bin(?);`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by id failed: %w", err)
	}

	if err := loadKYC(ctx, r.db, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT ` + userColumns + ` FROM user WHERE email = ?;`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by email failed: %w", err)
	}

	if err := loadKYC(ctx, r.db, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
	UPDATE user SET first_name = ?, last_name = ?, country = ?, password_hash = ?, role = ?, version = version + 1, updated_at = ?
	WHERE id = uuid_to_bin(?) AND version = ?;
	`

	result, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Country,
		user.PasswordHash,
		user.Role,
		user.UpdatedAt,
		user.ID,
		user.Version,
	)
	if err != nil {
		return fmt.Errorf("update user by id failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	if rows == 0 {
		return domain.ErrVersionConflict
	}

	user.Version++

	return nil
}

// List returns a page of users without their KYC submissions.
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	const query = `SELECT ` + userColumns + ` FROM user ORDER BY created_at DESC LIMIT ? OFFSET ?;`
	const countQuery = `SELECT COUNT(*) FROM user;`

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery); err != nil {
		return nil, 0, fmt.Errorf("count users failed: %w", err)
	}

	users := make([]domain.User, 0, limit)
	if err := r.db.SelectContext(ctx, &users, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("select users failed: %w", err)
	}

	return users, total, nil
}

// Stats scans the whole user table on every call.
func (r *userRepository) Stats(ctx context.Context) (*domain.UserStats, error) {
	const totalsQuery = `
	SELECT
		COUNT(*) AS total_users,
		COALESCE(SUM(email_verified), 0) AS email_verified,
		COALESCE(SUM(kyc_verified), 0) AS kyc_verified,
		COALESCE(SUM(kyc_status = 'submitted'), 0) AS kyc_pending
	FROM user;
	`
	const byCountryQuery = `SELECT country, COUNT(*) AS count FROM user GROUP BY country;`

	var stats domain.UserStats
	if err := r.db.GetContext(ctx, &stats, totalsQuery); err != nil {
		return nil, fmt.Errorf("get user totals failed: %w", err)
	}

	type countryStat struct {
		Country string `db:"country"`
		Count   int64  `db:"count"`
	}

	var rows []countryStat
	if err := r.db.SelectContext(ctx, &rows, byCountryQuery); err != nil {
		return nil, fmt.Errorf("get users by country failed: %w", err)
	}

	stats.ByCountry = make(map[string]int64, len(rows))
	for _, row := range rows {
		country := row.Country
		if country == "" {
			country = unknownCountry
		}
		stats.ByCountry[country] += row.Count
	}

	return &stats, nil
}
