package mailer

import (
	"context"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/food-donation-service/internal/config"
)

type resendMailer struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendMailer returns a Resend-backed mailer. When no API key is
// configured, messages are logged instead of sent so local runs still work.
func NewResendMailer(cfg config.MailerConfig, logger *zap.Logger) Mailer {
	if strings.TrimSpace(cfg.ResendAPIKey) == "" {
		logger.Warn("RESEND_API_KEY not provided; emails will be logged, not sent")
		return &resendMailer{from: cfg.From, logger: logger}
	}
	return &resendMailer{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.From,
		logger: logger,
	}
}

func (m *resendMailer) Send(ctx context.Context, msg Message) error {
	if m.client == nil {
		m.logger.Info("email (not sent)",
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject))
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Text:    msg.Text,
	}
	if _, err := m.client.Emails.Send(params); err != nil {
		return err
	}
	m.logger.Debug("email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
