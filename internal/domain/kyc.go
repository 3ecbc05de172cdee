package domain

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type KYCStatus string

const (
	KYCStatusNone      KYCStatus = "none"
	KYCStatusSubmitted KYCStatus = "submitted"
	KYCStatusVerified  KYCStatus = "verified"
	KYCStatusRejected  KYCStatus = "rejected"
)

// CanSubmit reports whether a new submission may be made from s.
func (s KYCStatus) CanSubmit() bool {
	return s == KYCStatusNone || s == KYCStatusRejected
}

// KYCInfo is one of KYCNone, KYCSubmitted, KYCVerified or KYCRejected.
type KYCInfo interface {
	Status() KYCStatus
	isKYCInfo()
}

type KYCDocuments struct {
	FullName    string
	DateOfBirth string
	IDType      string
	IDFront     string
	IDBack      string
	Selfie      string
}

type KYCNone struct{}

type KYCSubmitted struct {
	SubmissionID uuid.UUID
	Documents    KYCDocuments
	SubmittedAt  time.Time
}

type KYCVerified struct {
	KYCSubmitted
	VerifiedAt time.Time
	VerifiedBy uuid.UUID
}

type KYCRejected struct {
	KYCSubmitted
	RejectedAt time.Time
	RejectedBy uuid.UUID
	Reason     string
}

func (KYCNone) Status() KYCStatus      { return KYCStatusNone }
func (KYCSubmitted) Status() KYCStatus { return KYCStatusSubmitted }
func (KYCVerified) Status() KYCStatus  { return KYCStatusVerified }
func (KYCRejected) Status() KYCStatus  { return KYCStatusRejected }

func (KYCNone) isKYCInfo()      {}
func (KYCSubmitted) isKYCInfo() {}
func (KYCVerified) isKYCInfo()  {}
func (KYCRejected) isKYCInfo()  {}

// KYCRecord is the stored form of a single submission and its disposition.
type KYCRecord struct {
	ID              uuid.UUID      `db:"id"`
	UserID          uuid.UUID      `db:"user_id"`
	FullName        string         `db:"full_name"`
	DateOfBirth     string         `db:"date_of_birth"`
	IDType          string         `db:"id_type"`
	IDFront         string         `db:"id_front"`
	IDBack          string         `db:"id_back"`
	Selfie          string         `db:"selfie"`
	Status          KYCStatus      `db:"status"`
	SubmittedAt     time.Time      `db:"submitted_at"`
	VerifiedAt      *time.Time     `db:"verified_at"`
	VerifiedBy      *uuid.UUID     `db:"verified_by"`
	RejectedAt      *time.Time     `db:"rejected_at"`
	RejectedBy      *uuid.UUID     `db:"rejected_by"`
	RejectionReason sql.NullString `db:"rejection_reason"`
}

func (r *KYCRecord) Documents() KYCDocuments {
	return KYCDocuments{
		FullName:    r.FullName,
		DateOfBirth: r.DateOfBirth,
		IDType:      r.IDType,
		IDFront:     r.IDFront,
		IDBack:      r.IDBack,
		Selfie:      r.Selfie,
	}
}

// Info converts the record into its KYCInfo variant. A terminal status without
// its disposition fields is reported as an error.
func (r *KYCRecord) Info() (KYCInfo, error) {
	submitted := KYCSubmitted{
		SubmissionID: r.ID,
		Documents:    r.Documents(),
		SubmittedAt:  r.SubmittedAt,
	}

	switch r.Status {
	case KYCStatusSubmitted:
		return submitted, nil
	case KYCStatusVerified:
		if r.VerifiedAt == nil || r.VerifiedBy == nil {
			return nil, fmt.Errorf("kyc submission %s: verified without verifier", r.ID)
		}
		return KYCVerified{KYCSubmitted: submitted, VerifiedAt: *r.VerifiedAt, VerifiedBy: *r.VerifiedBy}, nil
	case KYCStatusRejected:
		if r.RejectedAt == nil || r.RejectedBy == nil {
			return nil, fmt.Errorf("kyc submission %s: rejected without reviewer", r.ID)
		}
		return KYCRejected{
			KYCSubmitted: submitted,
			RejectedAt:   *r.RejectedAt,
			RejectedBy:   *r.RejectedBy,
			Reason:       r.RejectionReason.String,
		}, nil
	}

	return nil, fmt.Errorf("kyc submission %s: unknown status %q", r.ID, r.Status)
}

// KYCDecision is an admin disposition of a pending submission.
type KYCDecision struct {
	UserID       uuid.UUID
	SubmissionID uuid.UUID
	Status       KYCStatus
	DecidedAt    time.Time
	DecidedBy    uuid.UUID
	Reason       string
}
