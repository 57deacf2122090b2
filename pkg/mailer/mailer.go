package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/tablemate-app/tablemate-backend/pkg/config"
	pkgerrors "github.com/tablemate-app/tablemate-backend/pkg/errors"
	"github.com/tablemate-app/tablemate-backend/pkg/logger"
)

// Notifier delivers verification codes to account holders.
type Notifier interface {
	SendSignupCode(ctx context.Context, toEmail, code string, ttl time.Duration) error
	SendResetCode(ctx context.Context, toEmail, code string, ttl time.Duration) error
}

type dialer interface {
	DialAndSend(...*gomail.Message) error
}

// SMTPNotifier sends transactional mail over SMTP.
type SMTPNotifier struct {
	cfg    config.SMTPConfig
	logg   *logger.Logger
	dialer dialer
}

// NewSMTPNotifier validates the SMTP config and returns a ready notifier.
func NewSMTPNotifier(cfg config.SMTPConfig, logg *logger.Logger) (*SMTPNotifier, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.FromEmail == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "smtp host, user and from address are required")
	}
	return &SMTPNotifier{
		cfg:    cfg,
		logg:   logg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}, nil
}

// SendSignupCode mails the email-verification code issued during signup.
func (n *SMTPNotifier) SendSignupCode(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	body := buildCodeBody("Verify your email", "Use this code to finish creating your TableMate account:", code, ttl)
	return n.send(ctx, toEmail, "TableMate email verification", body)
}

// SendResetCode mails the password-reset code.
func (n *SMTPNotifier) SendResetCode(ctx context.Context, toEmail, code string, ttl time.Duration) error {
	body := buildCodeBody("Reset your password", "Use this code to set a new TableMate password:", code, ttl)
	return n.send(ctx, toEmail, "TableMate password reset", body)
}

func (n *SMTPNotifier) send(ctx context.Context, toEmail, subject, body string) error {
	if strings.TrimSpace(toEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.FromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending email")
	}

	if n.logg != nil {
		n.logg.Info(ctx, fmt.Sprintf("email sent: %s", subject))
	}
	return nil
}

func buildCodeBody(heading, lead, code string, ttl time.Duration) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937;">
  <div style="max-width: 520px; margin: 0 auto; padding: 16px;">
    <h2>%s</h2>
    <p>%s</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 3px;">%s</div>
    <p>This code expires in %d minutes.</p>
    <p style="font-size: 12px; color: #6b7280;">If you did not request this, you can ignore this email.</p>
  </div>
</body>
</html>`, heading, lead, code, int(ttl.Minutes()))
}
