package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID              uuid.UUID  `db:"id"`
	Email           string     `db:"email"`
	PasswordHash    string     `db:"password_hash"`
	FirstName       string     `db:"first_name"`
	LastName        string     `db:"last_name"`
	Country         string     `db:"country"`
	Role            Role       `db:"role"`
	EmailVerified   bool       `db:"email_verified"`
	KYCStatus       KYCStatus  `db:"kyc_status"`
	KYCVerified     bool       `db:"kyc_verified"`
	KYCSubmissionID *uuid.UUID `db:"kyc_submission_id"`
	Version         int        `db:"version"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`

	// KYC is the current submission, KYCNone when the user never submitted.
	KYC KYCInfo `db:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserStats struct {
	TotalUsers    int64            `db:"total_users"`
	EmailVerified int64            `db:"email_verified"`
	KYCVerified   int64            `db:"kyc_verified"`
	KYCPending    int64            `db:"kyc_pending"`
	ByCountry     map[string]int64 `db:"-"`
}
