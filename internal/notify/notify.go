// Package notify sends creators an email when a payout settles.
package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/selivanovm/creatorpay/internal/config"
	"go.uber.org/zap"
)

type Notifier interface {
	PayoutPaid(ctx context.Context, to string, amount int64) error
	PayoutFailed(ctx context.Context, to string, amount int64, reason string) error
}

type EmailNotifier struct {
	addr string
	auth smtp.Auth
	from string
}

// New returns nil when SMTP is not configured; callers treat a nil
// Notifier as notifications disabled.
func New(cfg *config.Config) *EmailNotifier {
	if cfg.SMTPHost == "" {
		return nil
	}
	return &EmailNotifier{
		addr: fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort),
		auth: smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost),
		from: cfg.SMTPFrom,
	}
}

func (n *EmailNotifier) PayoutPaid(ctx context.Context, to string, amount int64) error {
	subject := "Your payout is on its way"
	body := fmt.Sprintf("Your withdrawal of %d has been transferred to your bank account.", amount)
	return n.send(to, subject, body)
}

func (n *EmailNotifier) PayoutFailed(ctx context.Context, to string, amount int64, reason string) error {
	subject := "Your payout could not be completed"
	body := fmt.Sprintf("Your withdrawal of %d failed: %s\nThe amount has been returned to your withdrawable balance.", amount, reason)
	return n.send(to, subject, body)
}

func (n *EmailNotifier) send(to, subject, body string) error {
	e := email.NewEmail()
	e.From = n.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	if err := e.Send(n.addr, n.auth); err != nil {
		zap.L().Error("failed to send notification email", zap.String("to", to), zap.Error(err))
		return err
	}
	return nil
}
