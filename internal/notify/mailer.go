package notify

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/gomail.v2"
)

// Notifier delivers a single plain-text message to one recipient.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	Timeout  time.Duration
}

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends mail through an SMTP account.
type Mailer struct {
	from     string
	fromName string
	timeout  time.Duration
	dialer   sender
}

func NewMailer(cfg SMTPConfig) *Mailer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mailer{
		from:     cfg.From,
		fromName: cfg.FromName,
		timeout:  timeout,
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *Mailer) message(to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	if m.fromName != "" {
		msg.SetAddressHeader("From", m.from, m.fromName)
	} else {
		msg.SetHeader("From", m.from)
	}
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

// Send blocks until the SMTP exchange finishes, the timeout expires or ctx is done.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("smtp: no recipient")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("smtp: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	msg := m.message(to, subject, body)
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp: send to %s: %w", to, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp: %w", ctx.Err())
	}
}
