// Package mailer abstracts outbound notification delivery. The scheduler only
// sees the Dispatcher interface and treats every send as fallible.
package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Dispatcher sends a message to an address. Implementations may time out,
// reject addresses, or fail transiently; callers must isolate failures per
// recipient.
type Dispatcher interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPDispatcher sends plain-text email over SMTP.
type SMTPDispatcher struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPDispatcher creates a dispatcher for the given SMTP server.
func NewSMTPDispatcher(host string, port int, username, password, from string) *SMTPDispatcher {
	return &SMTPDispatcher{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send delivers one message, honoring context cancellation.
func (d *SMTPDispatcher) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", d.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- d.dialer.DialAndSend(m)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send to %s: %w", to, err)
		}
		return nil
	}
}
