package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/repository"
	"github.com/investhub/backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultRejectionReason = "No reason provided"
	maxDecisionAttempts    = 3
)

// Column widths of kyc_submission.
const (
	maxFullNameLength = 255
	maxIDTypeLength   = 32
	dateOfBirthLayout = "2006-01-02"
)

type kycService struct {
	userRepository repository.Users
	kycRepository  repository.KYC
	storage        DocumentStorage
	notifier       Notifier
	now            func() time.Time
}

func newKYCService(userRepository repository.Users,
	kycRepository repository.KYC,
	storage DocumentStorage,
	notifier Notifier,
	now func() time.Time,
) *kycService {
	return &kycService{
		userRepository: userRepository,
		kycRepository:  kycRepository,
		storage:        storage,
		notifier:       notifier,
		now:            now,
	}
}

// Document is one uploaded identity image.
type Document struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func (d *Document) present() bool {
	return d != nil && d.Reader != nil && d.Size > 0
}

type SubmitKYCInput struct {
	FullName    string
	DateOfBirth string
	IDType      string
	IDFront     *Document
	IDBack      *Document
	Selfie      *Document
}

// PendingKYC is a submission awaiting review with short-lived download links.
type PendingKYC struct {
	User       *domain.User
	Submission domain.KYCRecord
	IDFrontURL string
	IDBackURL  string
	SelfieURL  string
}

func (s *kycService) Submit(ctx context.Context, userID uuid.UUID, input SubmitKYCInput) (*domain.User, error) {
	input.FullName = strings.TrimSpace(input.FullName)
	input.DateOfBirth = strings.TrimSpace(input.DateOfBirth)
	input.IDType = strings.TrimSpace(input.IDType)

	if input.FullName == "" || input.DateOfBirth == "" || input.IDType == "" ||
		!input.IDFront.present() || !input.IDBack.present() || !input.Selfie.present() {
		return nil, ErrMissingFields
	}
	if err := s.validateDetails(input); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	if err := submitAllowed(user.KYC.Status()); err != nil {
		return nil, err
	}

	submissionID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate submission id failed: %w", err)
	}

	record := &domain.KYCRecord{
		ID:          submissionID,
		UserID:      userID,
		FullName:    input.FullName,
		DateOfBirth: input.DateOfBirth,
		IDType:      input.IDType,
		Status:      domain.KYCStatusSubmitted,
		SubmittedAt: s.now(),
	}

	uploaded := make([]string, 0, 3)
	uploads := []struct {
		kind string
		doc  *Document
		dst  *string
	}{
		{"id_front", input.IDFront, &record.IDFront},
		{"id_back", input.IDBack, &record.IDBack},
		{"selfie", input.Selfie, &record.Selfie},
	}
	for _, u := range uploads {
		key := documentKey(userID, submissionID, u.kind, u.doc.Filename)
		if err := s.storage.Put(ctx, key, u.doc.Reader, u.doc.Size, u.doc.ContentType); err != nil {
			s.removeDocuments(ctx, uploaded)
			return nil, fmt.Errorf("upload %s failed: %w", u.kind, err)
		}
		uploaded = append(uploaded, key)
		*u.dst = key
	}

	if err := s.kycRepository.Submit(ctx, user, record); err != nil {
		s.removeDocuments(ctx, uploaded)

		if errors.Is(err, domain.ErrVersionConflict) {
			current, getErr := s.getUser(ctx, userID)
			if getErr != nil {
				return nil, getErr
			}
			if err := submitAllowed(current.KYC.Status()); err != nil {
				return nil, err
			}
			return nil, ErrConcurrentUpdate
		}
		return nil, fmt.Errorf("submit kyc failed: %w", err)
	}

	return s.getUser(ctx, userID)
}

// validateDetails rejects values the submission row cannot hold. The date of
// birth must be a calendar date strictly before today.
func (s *kycService) validateDetails(input SubmitKYCInput) error {
	if utf8.RuneCountInString(input.FullName) > maxFullNameLength ||
		utf8.RuneCountInString(input.IDType) > maxIDTypeLength {
		return ErrInvalidKYCDetails
	}

	dob, err := time.Parse(dateOfBirthLayout, input.DateOfBirth)
	if err != nil {
		return fmt.Errorf("%w: date of birth: %v", ErrInvalidKYCDetails, err)
	}
	today := s.now().UTC().Truncate(24 * time.Hour)
	if !dob.Before(today) {
		return fmt.Errorf("%w: date of birth is not in the past", ErrInvalidKYCDetails)
	}

	return nil
}

func submitAllowed(status domain.KYCStatus) error {
	switch status {
	case domain.KYCStatusSubmitted:
		return ErrKYCAlreadySubmitted
	case domain.KYCStatusVerified:
		return ErrKYCAlreadyVerified
	}
	return nil
}

func documentKey(userID, submissionID uuid.UUID, kind, filename string) string {
	return fmt.Sprintf("kyc/%s/%s/%s%s", userID, submissionID, kind, strings.ToLower(path.Ext(filename)))
}

func (s *kycService) removeDocuments(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
			logger.Warn("remove orphaned kyc document failed", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *kycService) Approve(ctx context.Context, userID, adminID uuid.UUID) (*domain.User, error) {
	return s.decide(ctx, userID, adminID, domain.KYCStatusVerified, "")
}

func (s *kycService) Reject(ctx context.Context, userID, adminID uuid.UUID, reason string) (*domain.User, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultRejectionReason
	}

	return s.decide(ctx, userID, adminID, domain.KYCStatusRejected, reason)
}

// decide applies an admin disposition to the pending submission. A lost
// version race is retried against fresh state, so a competing decision that
// already landed surfaces as ErrKYCNotPending.
func (s *kycService) decide(ctx context.Context, userID, adminID uuid.UUID, status domain.KYCStatus, reason string) (*domain.User, error) {
	for attempt := 0; attempt < maxDecisionAttempts; attempt++ {
		user, err := s.getUser(ctx, userID)
		if err != nil {
			return nil, err
		}

		pending, ok := user.KYC.(domain.KYCSubmitted)
		if !ok {
			return nil, ErrKYCNotPending
		}

		notificationID, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate notification id failed: %w", err)
		}

		now := s.now()
		decision := domain.KYCDecision{
			UserID:       userID,
			SubmissionID: pending.SubmissionID,
			Status:       status,
			DecidedAt:    now,
			DecidedBy:    adminID,
			Reason:       reason,
		}
		notification := newDecisionNotification(notificationID, userID, status, reason, now)

		err = s.kycRepository.Decide(ctx, user, decision, notification)
		if errors.Is(err, domain.ErrVersionConflict) {
			logger.Debug("kyc decision lost version race", zap.String("user_id", userID.String()), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("decide kyc failed: %w", err)
		}

		kind := domain.EmailKindKYCApproved
		if status == domain.KYCStatusRejected {
			kind = domain.EmailKindKYCRejected
		}
		s.notifier.Notify(ctx, user.Email, kind, NotificationPayload{FirstName: user.FirstName, Reason: reason})

		return s.getUser(ctx, userID)
	}

	return nil, ErrConcurrentUpdate
}

func newDecisionNotification(id, userID uuid.UUID, status domain.KYCStatus, reason string, now time.Time) *domain.Notification {
	n := &domain.Notification{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
	}

	if status == domain.KYCStatusVerified {
		n.Type = domain.NotificationKYCApproved
		n.Title = "KYC Approved!"
		n.Message = "Congratulations! Your KYC verification has been approved. You can now access all features."
	} else {
		n.Type = domain.NotificationKYCRejected
		n.Title = "KYC Rejected"
		n.Message = fmt.Sprintf("Your KYC verification was rejected. Reason: %s. Please resubmit with correct documents.", reason)
	}

	return n
}

func (s *kycService) ListPending(ctx context.Context) ([]PendingKYC, error) {
	records, err := s.kycRepository.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pending kyc failed: %w", err)
	}

	res := make([]PendingKYC, 0, len(records))
	for _, record := range records {
		user, err := s.getUser(ctx, record.UserID)
		if err != nil {
			return nil, err
		}

		item := PendingKYC{User: user, Submission: record}
		links := []struct {
			key string
			dst *string
		}{
			{record.IDFront, &item.IDFrontURL},
			{record.IDBack, &item.IDBackURL},
			{record.Selfie, &item.SelfieURL},
		}
		for _, l := range links {
			url, err := s.storage.PresignedURL(ctx, l.key)
			if err != nil {
				// the reviewer still gets the object key
				logger.Warn("presign kyc document failed", zap.String("key", l.key), zap.Error(err))
				continue
			}
			*l.dst = url
		}

		res = append(res, item)
	}

	return res, nil
}

func (s *kycService) History(ctx context.Context, userID uuid.UUID) ([]domain.KYCRecord, error) {
	if _, err := s.getUser(ctx, userID); err != nil {
		return nil, err
	}

	records, err := s.kycRepository.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list kyc history failed: %w", err)
	}

	return records, nil
}

func (s *kycService) getUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user failed: %w", err)
	}

	return user, nil
}
