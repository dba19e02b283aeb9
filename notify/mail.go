/*
Package notify delivers absence lifecycle notifications.

PURPOSE:
  Implements absence.Notifier twice: Mailer sends email over SMTP for
  production, LogNotifier writes to the log for development and tests.
  Delivery is best-effort by contract - the lifecycle logs failures and
  commits the transition regardless, so neither implementation needs to
  retry.
*/
package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/smylay/absence-engine/absence"
)

// MailConfig holds SMTP connection settings.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	// From is the sender address on every notification.
	From string
}

// Mailer sends lifecycle notifications over SMTP.
type Mailer struct {
	cfg MailConfig
	log logrus.FieldLogger

	// send is swappable for tests; defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

var _ absence.Notifier = (*Mailer)(nil)

// NewMailer creates an SMTP-backed notifier.
func NewMailer(cfg MailConfig, log logrus.FieldLogger) *Mailer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Mailer{cfg: cfg, log: log, send: smtp.SendMail}
}

// NotifyApproved tells the owner their request was approved.
func (m *Mailer) NotifyApproved(_ context.Context, owner absence.Employee, req absence.Request) error {
	body := fmt.Sprintf("%s your absence request has been approved", owner.Name)
	return m.deliver([]string{owner.Email}, "Absence Request Update", body)
}

// NotifyDenied tells the owner their request was denied.
func (m *Mailer) NotifyDenied(_ context.Context, owner absence.Employee, req absence.Request) error {
	body := fmt.Sprintf("%s your absence request has been denied", owner.Name)
	return m.deliver([]string{owner.Email}, "Absence Request Update", body)
}

// NotifySubmitted tells the moderators a new request needs action.
func (m *Mailer) NotifySubmitted(_ context.Context, moderators []absence.Employee, owner absence.Employee, req absence.Request) error {
	to := make([]string, 0, len(moderators))
	for _, mod := range moderators {
		if mod.Email != "" {
			to = append(to, mod.Email)
		}
	}
	if len(to) == 0 {
		return nil
	}
	body := fmt.Sprintf("A new absence has been requested by %s", owner.Name)
	return m.deliver(to, "New Absence Request", body)
}

func (m *Mailer) deliver(to []string, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("\r\n")
	msg.WriteString(body)
	msg.WriteString("\r\n")

	if err := m.send(addr, auth, m.cfg.From, to, []byte(msg.String())); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", strings.Join(to, ", "), err)
	}

	m.log.WithFields(logrus.Fields{
		"to":      strings.Join(to, ", "),
		"subject": subject,
	}).Debug("notification mail sent")
	return nil
}
