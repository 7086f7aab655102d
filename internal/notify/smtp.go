package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

const implicitTLSPort = 465

type SMTPConfig struct {
	Server   string
	Port     int
	User     string
	Password string
}

// SMTPNotifier sends orders as plain-text email. Port 465 uses implicit TLS,
// any other port requires STARTTLS.
type SMTPNotifier struct {
	cfg     SMTPConfig
	timeout time.Duration
	deliver func(ctx context.Context, c *mail.Client, m *mail.Msg) error
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{
		cfg:     cfg,
		timeout: 30 * time.Second,
		deliver: func(ctx context.Context, c *mail.Client, m *mail.Msg) error {
			return c.DialAndSendWithContext(ctx, m)
		},
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if n.cfg.User == "" || n.cfg.Password == "" {
		return ErrMissingCredentials
	}

	m, err := buildMailMsg(msg)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(n.cfg.Server, n.clientOptions()...)
	if err != nil {
		return fmt.Errorf("create smtp client failed: %w", err)
	}

	if err := n.deliver(ctx, client, m); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(n.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(n.cfg.User),
		mail.WithPassword(n.cfg.Password),
		mail.WithTimeout(n.timeout),
	}
	if n.cfg.Port == implicitTLSPort {
		return append(opts, mail.WithSSL())
	}
	return append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
}

func buildMailMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	return m, nil
}
