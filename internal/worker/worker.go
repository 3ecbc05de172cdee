package worker

import (
	"context"

	"github.com/investhub/backend/internal/config"
	emailProvider "github.com/investhub/backend/pkg/email"
)

type Workers struct {
	EmailSender EmailSender
}

type Deps struct {
	EmailProvider emailProvider.Sender
	Config        *config.Config
}

type EmailSender interface {
	SendVerificationCode(ctx context.Context, email, firstName, code string) error
	SendKYCApproved(ctx context.Context, email, firstName string) error
	SendKYCRejected(ctx context.Context, email, firstName, reason string) error
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender: newEmailSender(deps.EmailProvider, deps.Config.Email),
	}
}
