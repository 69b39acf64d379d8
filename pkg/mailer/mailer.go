package mailer

import (
	"fmt"
	"net/smtp"

	"github.com/asimov86/ecommerce-api/pkg/utils"

	"go.uber.org/zap"
)

// Mailer sends plain-text mail. Callers treat delivery as best-effort:
// a failed send is logged and never fails the triggering operation.
type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct {
	config utils.EmailConfig
	log    *zap.Logger
}

func NewSMTPMailer(config utils.EmailConfig, log *zap.Logger) Mailer {
	return &smtpMailer{
		config: config,
		log:    log.With(zap.String("component", "mailer")),
	}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)

	msg := "From: " + m.config.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" +
		body

	// Local relays (MailHog etc.) run without auth
	var auth smtp.Auth
	if m.config.User != "" {
		auth = smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)
	}

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(msg)); err != nil {
		m.log.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", to),
			zap.String("subject", subject),
		)
		return fmt.Errorf("send email to %s: %w", to, err)
	}

	m.log.Info("Email sent",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
