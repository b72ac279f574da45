package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/civic-kit/grievance-service/internal/config"
)

// StatusUpdate describes a citizen-facing status notification.
type StatusUpdate struct {
	To          string
	Subject     string
	Title       string
	Description string
	Status      string
	Remarks     string
}

// Mailer delivers citizen notifications. Implementations must return an
// error rather than panic; callers treat delivery as best-effort.
type Mailer interface {
	SendStatusUpdate(ctx context.Context, update StatusUpdate) error
}

type smtpMailer struct {
	cfg    config.MailConfig
	logger *zap.Logger
}

// NewSMTPMailer builds the default mailer. When SMTP credentials are absent
// delivery is skipped and logged, so development setups need no mail server.
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) Mailer {
	return &smtpMailer{cfg: cfg, logger: logger}
}

func (m *smtpMailer) SendStatusUpdate(ctx context.Context, update StatusUpdate) error {
	if m.cfg.SMTPUser == "" || m.cfg.SMTPPass == "" {
		m.logger.Warn("smtp credentials not configured; skipping email delivery",
			zap.String("to", update.To),
			zap.String("status", update.Status))
		return nil
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	msg := buildMessage(m.cfg.From, update)

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{update.To}, msg); err != nil {
		return fmt.Errorf("send status update mail: %w", err)
	}
	m.logger.Info("status update email sent",
		zap.String("to", update.To),
		zap.String("status", update.Status))
	return nil
}

func buildMessage(from string, update StatusUpdate) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", update.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", update.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")

	fmt.Fprintf(&b, "The status of your complaint %q has been updated to %s.\r\n\r\n", update.Title, update.Status)
	fmt.Fprintf(&b, "Issue: %s\r\n", preview(update.Description, 200))
	if update.Remarks != "" {
		fmt.Fprintf(&b, "\r\nOfficial remarks: %s\r\n", update.Remarks)
	}
	b.WriteString("\r\nThis is an automated notification from the grievance redressal platform. Please do not reply.\r\n")
	return []byte(b.String())
}

// preview truncates to max characters without splitting a rune.
func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max]) + "..."
}
