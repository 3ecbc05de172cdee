package service

import (
	"context"

	"github.com/investhub/backend/internal/domain"
	"github.com/investhub/backend/internal/queue/task"
	"github.com/investhub/backend/pkg/logger"

	"go.uber.org/zap"
)

type NotificationPayload struct {
	FirstName string
	Code      string
	Reason    string
}

// Notifier delivers e-mails out of band. It never reports failure to the
// caller: the state transition that triggered it is already committed.
type Notifier interface {
	Notify(ctx context.Context, email string, kind domain.EmailKind, payload NotificationPayload)
}

type queueNotifier struct {
	enqueuer TaskEnqueuer
}

func newNotifier(enqueuer TaskEnqueuer) *queueNotifier {
	return &queueNotifier{
		enqueuer: enqueuer,
	}
}

func (n *queueNotifier) Notify(ctx context.Context, email string, kind domain.EmailKind, payload NotificationPayload) {
	if n.enqueuer == nil {
		logger.Warn("notifier has no queue, email dropped", zap.String("kind", string(kind)))
		return
	}

	t, err := task.NewSendEmailTask(task.SendEmail{
		Kind:      kind,
		Email:     email,
		FirstName: payload.FirstName,
		Code:      payload.Code,
		Reason:    payload.Reason,
	})
	if err != nil {
		logger.Error("create send email task failed", zap.String("kind", string(kind)), zap.Error(err))
		return
	}

	// the request may be gone by now, the task should still be queued
	if _, err := n.enqueuer.EnqueueContext(context.WithoutCancel(ctx), t); err != nil {
		logger.Error("enqueue send email task failed", zap.String("kind", string(kind)), zap.Error(err))
	}
}
