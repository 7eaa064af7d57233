package notifier

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"wms-audit/config"
	"wms-audit/events"
	"wms-audit/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeDialer struct {
	mu   sync.Mutex
	sent []*gomail.Message
	done chan struct{}
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.mu.Lock()
	d.sent = append(d.sent, m...)
	d.mu.Unlock()
	d.done <- struct{}{}
	return nil
}

func newTestNotifier() (*MailNotifier, *fakeDialer) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	d := &fakeDialer{done: make(chan struct{}, 1)}
	return &MailNotifier{from: "audit@wms.local", to: []string{"ops@wms.local"}, dialer: d, log: log}, d
}

func body(t *testing.T, msg *gomail.Message) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestMessageForTerminalTransitions(t *testing.T) {
	n, _ := newTestNotifier()

	completed := n.message(events.SessionTransitioned{
		AuditCode: "AUD202610150001",
		From:      models.AuditStatusReconciliation,
		To:        models.AuditStatusCompleted,
		At:        time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	})
	require.NotNil(t, completed)
	assert.Equal(t, []string{"Audit AUD202610150001 completed"}, completed.GetHeader("Subject"))
	assert.Equal(t, []string{"ops@wms.local"}, completed.GetHeader("To"))
	assert.Contains(t, body(t, completed), "<strong>AUD202610150001</strong>")

	cancelled := n.message(events.SessionTransitioned{
		AuditCode: "AUD202610150002",
		To:        models.AuditStatusCancelled,
		Reason:    "<script>",
	})
	require.NotNil(t, cancelled)
	assert.Equal(t, []string{"Audit AUD202610150002 cancelled"}, cancelled.GetHeader("Subject"))
	assert.NotContains(t, body(t, cancelled), "<script>")
}

func TestMessageIgnoresOtherEvents(t *testing.T) {
	n, _ := newTestNotifier()

	assert.Nil(t, n.message(events.SessionTransitioned{To: models.AuditStatusInProgress}))
	assert.Nil(t, n.message(events.VerificationRecorded{}))
}

func TestHandleSendsInBackground(t *testing.T) {
	n, d := newTestNotifier()

	n.Handle(context.Background(), events.SessionTransitioned{AuditCode: "AUD202610150001", To: models.AuditStatusCompleted})

	select {
	case <-d.done:
	case <-time.After(2 * time.Second):
		t.Fatal("mail was not sent")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	assert.Len(t, d.sent, 1)
}

func TestNewMailNotifierNeedsSMTP(t *testing.T) {
	host, to := config.SMTPHost, config.MailTo
	t.Cleanup(func() { config.SMTPHost, config.MailTo = host, to })

	config.SMTPHost, config.MailTo = "", []string{"ops@wms.local"}
	assert.Nil(t, NewMailNotifier(logrus.New()))

	config.SMTPHost, config.MailTo = "smtp.wms.local", nil
	assert.Nil(t, NewMailNotifier(logrus.New()))

	config.MailTo = []string{"ops@wms.local"}
	assert.NotNil(t, NewMailNotifier(logrus.New()))
}
