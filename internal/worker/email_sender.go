package worker

import (
	"context"
	"embed"
	"fmt"

	"github.com/investhub/backend/internal/config"
	emailProvider "github.com/investhub/backend/pkg/email"
	"github.com/investhub/backend/pkg/logger"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

const templatesDir = "templates/"

type emailSender struct {
	sender emailProvider.Sender
	config config.EmailConfig
}

func newEmailSender(
	sender emailProvider.Sender,
	config config.EmailConfig,
) *emailSender {
	return &emailSender{
		sender: sender,
		config: config,
	}
}

type verificationEmailInput struct {
	FirstName        string
	VerificationCode string
}

type kycEmailInput struct {
	FirstName string
	Reason    string
}

func (s *emailSender) SendVerificationCode(ctx context.Context, email, firstName, code string) error {
	return s.send(email, "Verify your email address", s.config.Templates.Verification,
		verificationEmailInput{FirstName: firstName, VerificationCode: code})
}

func (s *emailSender) SendKYCApproved(ctx context.Context, email, firstName string) error {
	return s.send(email, "KYC Verification Approved", s.config.Templates.KYCApproved,
		kycEmailInput{FirstName: firstName})
}

func (s *emailSender) SendKYCRejected(ctx context.Context, email, firstName, reason string) error {
	return s.send(email, "KYC Verification Update Required", s.config.Templates.KYCRejected,
		kycEmailInput{FirstName: firstName, Reason: reason})
}

func (s *emailSender) send(to, subject, templateName string, data any) error {
	if !s.config.Enabled {
		logger.Debug("email disabled, skipping", zap.String("subject", subject))
		return nil
	}

	msg := emailProvider.Message{Subject: subject, To: to}

	if err := msg.RenderHTML(templatesFS, templatesDir+templateName, data); err != nil {
		return fmt.Errorf("generate email failed: %w", err)
	}

	if err := msg.Validate(); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	if err := s.sender.Send(msg); err != nil {
		return fmt.Errorf("send email failed: %w", err)
	}

	return nil
}
