package alert

import (
	"context"
	"errors"

	"gopkg.in/gomail.v2"

	"github.com/b0ase/portal/pkg/config"
	"github.com/b0ase/portal/pkg/logutils"
)

type SMTPAlerter struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func newSMTPAlerter(cfg *config.Config) *SMTPAlerter {
	s := cfg.SMTP
	return &SMTPAlerter{
		dialer:   gomail.NewDialer(s.Host, s.Port, s.User, s.Password),
		from:     s.From,
		fromName: s.FromName,
	}
}

func (sa *SMTPAlerter) SendMessageTo(ctx context.Context, receiver *Receiver, subject, body string) error {
	if receiver == nil || receiver.Email == "" {
		return errors.New("receiver has no email address")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", sa.from, sa.fromName)
	if receiver.Name != "" {
		m.SetAddressHeader("To", receiver.Email, receiver.Name)
	} else {
		m.SetHeader("To", receiver.Email)
	}
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := sa.dialer.DialAndSend(m); err != nil {
		logutils.Log.Errorf("Failed to send email to %s: %v", receiver.Email, err)
		return err
	}

	logutils.Log.Infof("Sent email to %s", receiver.Email)
	return nil
}

// noopAlerter stands in when SMTP is not configured. Every send fails with ErrNotConfigured.
type noopAlerter struct{}

func (noopAlerter) SendMessageTo(_ context.Context, receiver *Receiver, subject, _ string) error {
	to := ""
	if receiver != nil {
		to = receiver.Email
	}
	logutils.Log.WithFields(logutils.Fields{"to": to, "subject": subject}).Warn("smtp not configured, message dropped")
	return ErrNotConfigured
}
