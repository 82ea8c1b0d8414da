package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"
	"go.uber.org/zap"
)

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	from     string
	fromName string
	logger   *zap.Logger
}

// SMTPConfig configures the SMTP sender.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Pass     string
	From     string
	FromName string
}

// NewSMTPSender creates an SMTP-backed Sender.
func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) *SMTPSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}
	return &SMTPSender{
		addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:     auth,
		from:     cfg.From,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

// Send delivers one message. The SMTP dialogue itself is not cancellable
// mid-flight; ctx is honored before dialing.
func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mail := mailyak.New(s.addr, s.auth)
	mail.From(s.from)
	if s.fromName != "" {
		mail.FromName(s.fromName)
	}
	mail.To(msg.To)
	mail.Subject(msg.Subject)
	mail.HTML().Set(msg.HTML)
	for _, in := range msg.Inlines {
		mail.AttachInlineWithMimeType(in.Name, bytes.NewReader(in.Data), in.ContentType)
	}
	if err := mail.Send(); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	s.logger.Debug("mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
