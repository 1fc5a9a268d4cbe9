package notifier

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTP delivers notifications over an authenticated SMTP submission
// connection. Each Send dials, authenticates, transmits and releases the
// connection; nothing is kept open between deliveries.
type SMTP struct {
	// host is the mail server hostname.
	host string
	// port is the mail submission port.
	port int
	// username authenticates against the mail server and is also the
	// sender address.
	username string
	// password is the app password for username.
	password string
}

// NewSMTP creates an SMTP sender for the given server and credential.
func NewSMTP(host string, port int, username, password string) *SMTP {
	return &SMTP{
		host:     host,
		port:     port,
		username: username,
		password: password,
	}
}

// Send performs one delivery attempt. The connection is established,
// upgraded to TLS, authenticated, used and closed within this call, on
// failure paths included.
func (s *SMTP) Send(ctx context.Context, req Request) error {
	msg := mail.NewMsg()

	if err := msg.From(s.username); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}

	if err := msg.To(req.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	msg.Subject(req.Subject)
	msg.SetBodyString(mail.TypeTextPlain, req.Body)

	client, err := mail.NewClient(
		s.host,
		mail.WithPort(s.port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.username),
		mail.WithPassword(s.password),
	)
	if err != nil {
		return fmt.Errorf("create mail client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	return nil
}
