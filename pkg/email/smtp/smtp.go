package smtp

import (
	"errors"
	"fmt"

	"github.com/investhub/backend/pkg/email"

	"github.com/go-gomail/gomail"
)

type SMTPSender struct {
	from     string
	fromName string
	dialer   *gomail.Dialer
}

func NewSMTPSender(from, fromName, pass, host string, port int) (*SMTPSender, error) {
	if !email.IsEmailValid(from) {
		return nil, errors.New("invalid from email")
	}

	return &SMTPSender{
		from:     from,
		fromName: fromName,
		dialer:   gomail.NewDialer(host, port, from, pass),
	}, nil
}

func (s *SMTPSender) Send(msg email.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}

	return nil
}
