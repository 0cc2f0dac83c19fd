package smtp

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/xirothedev/facebook-clone-backend/config"
)

// Mailer sends account-security mail over SMTP. It implements
// usecase.Notifier; callers treat sends as fire-and-forget.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	app    string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
		app:    cfg.AppName,
	}
}

func (m *Mailer) SendResetPasswordAccount(email, code string) error {
	body := fmt.Sprintf(
		"<p>Your %s recovery code is <b>%s</b>.</p><p>It expires in 5 minutes. If you did not request it, ignore this mail.</p>",
		m.app, code,
	)
	return m.send(email, "Your recovery code", body)
}

func (m *Mailer) SendNotificationResetPassword(email string) error {
	body := fmt.Sprintf(
		"<p>The password for your %s account was just changed.</p><p>If this was not you, recover your account immediately.</p>",
		m.app,
	)
	return m.send(email, "Your password was changed", body)
}

func (m *Mailer) SendDetectOtherDevice(email, ip, userAgent, deviceName string) error {
	body := fmt.Sprintf(
		"<p>A new login to your %s account was detected.</p><ul><li>Device: %s</li><li>IP: %s</li><li>User agent: %s</li></ul><p>If this was not you, change your password.</p>",
		m.app, deviceName, ip, userAgent,
	)
	return m.send(email, "New device login", body)
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	return m.dialer.DialAndSend(msg)
}
