// Package mailer delivers transactional email. The SMTP sender is used when
// a host is configured; otherwise messages are only logged.
package mailer

import (
	"context"

	"github.com/dmitrijs2005/culturehub/internal/logging"
	"github.com/dmitrijs2005/culturehub/internal/server/config"
)

// Message is one HTML email to a single recipient.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Sender delivers a Message or reports why it could not.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the sender for cfg.
func New(cfg *config.Config, logger logging.Logger) Sender {
	if cfg.SMTPHost == "" {
		return NewLogSender(logger)
	}
	return NewSMTPSender(SMTPSettings{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

// LogSender records that a message would have been sent. The body is not
// logged because it carries the reset link.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(l logging.Logger) *LogSender {
	return &LogSender{logger: l.With("module", "mailer")}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.Info(ctx, "mail delivery skipped, no SMTP host configured", "to", msg.To, "subject", msg.Subject)
	return nil
}
