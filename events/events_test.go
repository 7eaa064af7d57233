package events

import (
	"bytes"
	"context"
	"testing"

	"wms-audit/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestBusDeliversInSubscriptionOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.Subscribe(func(_ context.Context, e Event) { got = append(got, "first:"+e.EventName()) })
	bus.Subscribe(func(_ context.Context, e Event) { got = append(got, "second:"+e.EventName()) })

	bus.Publish(context.Background(), SessionTransitioned{From: models.AuditStatusOpen, To: models.AuditStatusInProgress})

	assert.Equal(t, []string{"first:SessionTransitioned", "second:SessionTransitioned"}, got)
}

func TestNilBusDropsEvents(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() {
		bus.Publish(context.Background(), VerificationRecorded{})
	})
}

func TestLogSubscriber(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	LogSubscriber(logger)(context.Background(), VerificationRecorded{AuditCode: "AUD202610150001"})

	assert.Contains(t, buf.String(), `"event":"VerificationRecorded"`)
	assert.Contains(t, buf.String(), "AUD202610150001")
}
