package v1

import (
	"time"

	"github.com/investhub/backend/internal/domain"

	"github.com/google/uuid"
)

type userResponse struct {
	ID            uuid.UUID        `json:"id"`
	Email         string           `json:"email"`
	FirstName     string           `json:"first_name"`
	LastName      string           `json:"last_name"`
	Country       string           `json:"country"`
	Role          domain.Role      `json:"role"`
	EmailVerified bool             `json:"email_verified"`
	KYCStatus     domain.KYCStatus `json:"kyc_status"`
	KYCVerified   bool             `json:"kyc_verified"`
	KYC           *kycResponse     `json:"kyc,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
} // @name User

type kycResponse struct {
	Status          domain.KYCStatus `json:"status"`
	FullName        string           `json:"full_name"`
	DateOfBirth     string           `json:"date_of_birth"`
	IDType          string           `json:"id_type"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	VerifiedAt      *time.Time       `json:"verified_at,omitempty"`
	VerifiedBy      *uuid.UUID       `json:"verified_by,omitempty"`
	RejectedAt      *time.Time       `json:"rejected_at,omitempty"`
	RejectedBy      *uuid.UUID       `json:"rejected_by,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
} // @name KYC

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Country:       u.Country,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		KYCStatus:     u.KYCStatus,
		KYCVerified:   u.KYCVerified,
		KYC:           newKYCResponse(u.KYC),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func newKYCResponse(info domain.KYCInfo) *kycResponse {
	fromSubmitted := func(s domain.KYCSubmitted) *kycResponse {
		return &kycResponse{
			Status:      s.Status(),
			FullName:    s.Documents.FullName,
			DateOfBirth: s.Documents.DateOfBirth,
			IDType:      s.Documents.IDType,
			SubmittedAt: s.SubmittedAt,
		}
	}

	switch v := info.(type) {
	case domain.KYCSubmitted:
		return fromSubmitted(v)
	case domain.KYCVerified:
		res := fromSubmitted(v.KYCSubmitted)
		res.Status = v.Status()
		res.VerifiedAt, res.VerifiedBy = &v.VerifiedAt, &v.VerifiedBy
		return res
	case domain.KYCRejected:
		res := fromSubmitted(v.KYCSubmitted)
		res.Status = v.Status()
		res.RejectedAt, res.RejectedBy = &v.RejectedAt, &v.RejectedBy
		res.RejectionReason = v.Reason
		return res
	}

	return nil
}

type documentResponse struct {
	Key string `json:"key"`
	URL string `json:"url,omitempty"`
}

type kycSubmissionResponse struct {
	ID              uuid.UUID        `json:"id"`
	Status          domain.KYCStatus `json:"status"`
	FullName        string           `json:"full_name"`
	DateOfBirth     string           `json:"date_of_birth"`
	IDType          string           `json:"id_type"`
	IDFront         documentResponse `json:"id_front"`
	IDBack          documentResponse `json:"id_back"`
	Selfie          documentResponse `json:"selfie"`
	SubmittedAt     time.Time        `json:"submitted_at"`
	VerifiedAt      *time.Time       `json:"verified_at,omitempty"`
	VerifiedBy      *uuid.UUID       `json:"verified_by,omitempty"`
	RejectedAt      *time.Time       `json:"rejected_at,omitempty"`
	RejectedBy      *uuid.UUID       `json:"rejected_by,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
} // @name KYCSubmission

func newKYCSubmissionResponse(r domain.KYCRecord) kycSubmissionResponse {
	return kycSubmissionResponse{
		ID:              r.ID,
		Status:          r.Status,
		FullName:        r.FullName,
		DateOfBirth:     r.DateOfBirth,
		IDType:          r.IDType,
		IDFront:         documentResponse{Key: r.IDFront},
		IDBack:          documentResponse{Key: r.IDBack},
		Selfie:          documentResponse{Key: r.Selfie},
		SubmittedAt:     r.SubmittedAt,
		VerifiedAt:      r.VerifiedAt,
		VerifiedBy:      r.VerifiedBy,
		RejectedAt:      r.RejectedAt,
		RejectedBy:      r.RejectedBy,
		RejectionReason: r.RejectionReason.String,
	}
}

type notificationResponse struct {
	ID        uuid.UUID               `json:"id"`
	Type      domain.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
} // @name Notification
