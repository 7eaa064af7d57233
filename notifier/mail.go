// Package notifier mails the audit managers when a session reaches a terminal state.
package notifier

import (
	"context"
	"fmt"
	"html"

	"wms-audit/config"
	"wms-audit/events"
	"wms-audit/models"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type MailNotifier struct {
	from   string
	to     []string
	dialer sender
	log    *logrus.Logger
}

// NewMailNotifier returns nil when SMTP is not configured or there is nobody to mail.
func NewMailNotifier(log *logrus.Logger) *MailNotifier {
	if config.SMTPHost == "" || len(config.MailTo) == 0 {
		return nil
	}
	return &MailNotifier{
		from:   config.MailFrom,
		to:     config.MailTo,
		dialer: gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPUser, config.SMTPPassword),
		log:    log,
	}
}

// Handle is an events.Handler. Mail goes out in the background so a slow SMTP server
// never holds up the request that finished the session.
func (n *MailNotifier) Handle(_ context.Context, event events.Event) {
	msg := n.message(event)
	if msg == nil {
		return
	}
	go n.send(msg, event)
}

func (n *MailNotifier) message(event events.Event) *gomail.Message {
	e, ok := event.(events.SessionTransitioned)
	if !ok {
		return nil
	}

	var subject, body string
	switch e.To {
	case models.AuditStatusCompleted:
		subject = "Audit " + e.AuditCode + " completed"
		body = fmt.Sprintf(`
		<html>
			<body>
				<h3>Audit session completed</h3>
				<p>Audit code: <strong>%s</strong></p>
				<p>Completed at %s. The final audit report is now available.</p>
				<p>This is an auto-generated email. Please do not reply to this email or its recipients.</p>
			</body>
		</html>
	`, html.EscapeString(e.AuditCode), e.At.Format("2006-01-02 15:04 MST"))
	case models.AuditStatusCancelled:
		subject = "Audit " + e.AuditCode + " cancelled"
		body = fmt.Sprintf(`
		<html>
			<body>
				<h3>Audit session cancelled</h3>
				<p>Audit code: <strong>%s</strong></p>
				<p>Reason: %s</p>
				<p>This is an auto-generated email. Please do not reply to this email or its recipients.</p>
			</body>
		</html>
	`, html.EscapeString(e.AuditCode), html.EscapeString(e.Reason))
	default:
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", n.to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)
	return msg
}

func (n *MailNotifier) send(msg *gomail.Message, event events.Event) {
	if err := n.dialer.DialAndSend(msg); err != nil {
		config.LogError(n.log, "notifier", "send", "smtp", event, err)
		return
	}
	n.log.WithFields(logrus.Fields{"module": "notifier", "to": n.to}).Info("audit notification sent")
}
