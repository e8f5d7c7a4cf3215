// Package email renders and delivers transactional email.
package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/config"
	"github.com/uaebusinessdesk/uae-business-setup-sub001/platform/logger"
)

// Message is one rendered email.
type Message struct {
	Kind    string
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a rendered message. Implementations must honor ctx cancellation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NoopSender logs and drops every message.
type NoopSender struct {
	log *logger.Logger
}

func NewNoopSender(log *logger.Logger) NoopSender {
	if log == nil {
		log = logger.Discard()
	}
	return NoopSender{log: log}
}

func (s NoopSender) Send(_ context.Context, msg Message) error {
	if s.log != nil {
		s.log.Debug("email delivery disabled", "kind", msg.Kind, "to", logger.MaskEmail(msg.To), "subject", msg.Subject)
	}
	return nil
}

// NewSender builds the sender selected by EMAIL_PROVIDER.
func NewSender(ctx context.Context, cfg config.EmailConfig, log *logger.Logger) (Sender, error) {
	switch strings.ToLower(cfg.GetEmailProvider()) {
	case "", "noop":
		return NewNoopSender(log), nil
	case "brevo":
		return NewBrevoSender(cfg.GetBrevoAPIKey(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName()), nil
	case "smtp":
		return NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName()), nil
	case "sendgrid":
		return NewSendGridSender(cfg.GetSendGridAPIKey(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName()), nil
	case "ses":
		return NewSESSenderFromRegion(ctx, cfg.GetSESRegion(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName())
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
}
