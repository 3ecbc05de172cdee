package mock_email

import (
	"github.com/investhub/backend/pkg/email"

	"github.com/stretchr/testify/mock"
)

// Sender records every message handed to the transport.
type Sender struct {
	mock.Mock
}

func (m *Sender) Send(msg email.Message) error {
	return m.Called(msg).Error(0)
}
