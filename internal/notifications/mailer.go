package notifications

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/thesachinyyadav/socio2026v2-sub000/config"
)

// Mailer sends email over the configured SMTP relay.
type Mailer struct {
	cfg config.EmailConfig
}

// NewMailer creates an SMTP mailer. Returns nil when no SMTP host is
// configured; callers treat a nil mailer as "log only".
func NewMailer(cfg config.EmailConfig) *Mailer {
	if cfg.SMTPHost == "" {
		return nil
	}
	return &Mailer{cfg: cfg}
}

// Send delivers one HTML email.
func (m *Mailer) Send(to, subject, bodyHTML string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	from := m.cfg.FromAddress

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.cfg.FromName, from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(bodyHTML)

	var a smtp.Auth
	if m.cfg.SMTPUser != "" {
		a = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, a, from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
