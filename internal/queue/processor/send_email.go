package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/queue/task"
	"github.com/investhub/backend/internal/worker"

	"github.com/hibiken/asynq"
)

type sendEmailProcessor struct {
	workers *worker.Workers
}

func NewSendEmailProcessor(workers *worker.Workers) *sendEmailProcessor {
	return &sendEmailProcessor{
		workers: workers,
	}
}

func (p *sendEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendEmail
	if err := json.Unmarshal(t.Payload(), &data); err != nil {
		// a malformed payload will never succeed
		return fmt.Errorf("process send email task json unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	sender := p.workers.EmailSender

	var err error
	switch data.Kind {
	case domain.EmailKindVerificationCode:
		err = sender.SendVerificationCode(ctx, data.Email, data.FirstName, data.Code)
	case domain.EmailKindKYCApproved:
		err = sender.SendKYCApproved(ctx, data.Email, data.FirstName)
	case domain.EmailKindKYCRejected:
		err = sender.SendKYCRejected(ctx, data.Email, data.FirstName, data.Reason)
	default:
		return fmt.Errorf("unknown email kind %q: %w", data.Kind, asynq.SkipRetry)
	}
	if err != nil {
		return fmt.Errorf("send %s email failed: %w", data.Kind, err)
	}

	return nil
}
