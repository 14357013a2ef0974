package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	mail "github.com/wneessen/go-mail"

	"github.com/voltpath/labstock-backend/pkg/config"
	"github.com/voltpath/labstock-backend/pkg/logger"
)

// Message is a plain-text email ready for dispatch.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender dispatches alert emails. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail over SMTP with a short retry on transient
// failures.
type SMTPSender struct {
	cfg config.SMTPConfig
	log *logger.Logger
}

// NewSMTPSender returns a Sender backed by the configured SMTP relay, or a
// no-op sender when SMTP is not configured.
func NewSMTPSender(cfg config.SMTPConfig, log *logger.Logger) Sender {
	if !cfg.Enabled() {
		return noopSender{log: log}
	}
	return &SMTPSender{cfg: cfg, log: log}
}

// Send delivers the message, retrying transient SMTP failures with
// exponential backoff.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient address is required")
	}

	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	backoff := retry.WithMaxRetries(2, retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := client.DialAndSendWithContext(ctx, m); err != nil {
			return retry.RetryableError(fmt.Errorf("send mail to %s: %w", msg.To, err))
		}
		return nil
	})
}

type noopSender struct {
	log *logger.Logger
}

func (n noopSender) Send(ctx context.Context, msg Message) error {
	if n.log != nil {
		n.log.Info(ctx, fmt.Sprintf("smtp disabled, dropping email %q to %s", msg.Subject, msg.To))
	}
	return nil
}
