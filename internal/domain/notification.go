package domain

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationKYCApproved NotificationType = "kyc_approved"
	NotificationKYCRejected NotificationType = "kyc_rejected"
)

type Notification struct {
	ID        uuid.UUID        `db:"id"`
	UserID    uuid.UUID        `db:"user_id"`
	Type      NotificationType `db:"type"`
	Title     string           `db:"title"`
	Message   string           `db:"message"`
	Read      bool             `db:"is_read"`
	CreatedAt time.Time        `db:"created_at"`
}

// EmailKind selects the template of an outgoing e-mail.
type EmailKind string

const (
	EmailKindVerificationCode EmailKind = "verification_code"
	EmailKindKYCApproved      EmailKind = "kyc_approved"
	EmailKindKYCRejected      EmailKind = "kyc_rejected"
)
