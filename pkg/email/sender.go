// Package email holds the outgoing mail model shared by the workers and the
// SMTP transport.
package email

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"

	"github.com/go-playground/validator/v10"
)

var (
	ErrNoRecipient      = errors.New("email: recipient is empty")
	ErrInvalidRecipient = errors.New("email: recipient is not a valid address")
	ErrNoContent        = errors.New("email: subject or body is empty")
)

// Message is a single HTML e-mail to one recipient.
type Message struct {
	To      string
	Subject string
	HTML    string
}

type Sender interface {
	Send(msg Message) error
}

var addressValidator = validator.New()

// RenderHTML executes the named template from fsys into m.HTML.
// html/template escapes data, so user supplied text is safe to pass.
func (m *Message) RenderHTML(fsys fs.FS, name string, data any) error {
	t, err := template.ParseFS(fsys, name)
	if err != nil {
		return fmt.Errorf("parse template %s failed: %w", name, err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("execute template %s failed: %w", name, err)
	}
	m.HTML = buf.String()

	return nil
}

func (m Message) Validate() error {
	switch {
	case m.To == "":
		return ErrNoRecipient
	case !IsEmailValid(m.To):
		return ErrInvalidRecipient
	case m.Subject == "" || m.HTML == "":
		return ErrNoContent
	}
	return nil
}

func IsEmailValid(address string) bool {
	return addressValidator.Var(address, "required,email") == nil
}
