package task

import (
	"encoding/json"
	"fmt"

	"github.com/investhub/backend/internal/domain"

	"github.com/hibiken/asynq"
)

const (
	SendEmailTaskName  = "sendEmailTask"
	SendEmailQueueName = "sendEmailQueue"

	sendEmailMaxRetry = 5
)

type SendEmail struct {
	Kind      domain.EmailKind `json:"kind"`
	Email     string           `json:"email"`
	FirstName string           `json:"first_name"`
	Code      string           `json:"code,omitempty"`
	Reason    string           `json:"reason,omitempty"`
}

func NewSendEmailTask(data SendEmail) (*asynq.Task, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("json data marshal failed: %w", err)
	}

	return asynq.NewTask(
		SendEmailTaskName,
		payload,
		asynq.MaxRetry(sendEmailMaxRetry),
		asynq.Queue(SendEmailQueueName),
	), nil
}
