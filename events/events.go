package events

import (
	"context"
	"sync"
	"time"

	"wms-audit/models"
	"wms-audit/types"

	"github.com/sirupsen/logrus"
)

// Event is published after the transaction that produced it has committed.
type Event interface {
	EventName() string
}

type VerificationRecorded struct {
	SessionID        types.SnowflakeID         `json:"session_id"`
	AuditCode        string                    `json:"audit_code"`
	VerificationID   types.SnowflakeID         `json:"verification_id"`
	SerialNumber     int                       `json:"serial_number"`
	PhysicalQuantity int                       `json:"physical_quantity"`
	Discrepancy      int                       `json:"discrepancy"`
	Status           models.VerificationStatus `json:"status"`
	RecordedBy       uint                      `json:"recorded_by"`
	RecordedAt       time.Time                 `json:"recorded_at"`
}

func (VerificationRecorded) EventName() string { return "VerificationRecorded" }

type SessionTransitioned struct {
	SessionID   types.SnowflakeID  `json:"session_id"`
	AuditCode   string             `json:"audit_code"`
	WarehouseID uint               `json:"warehouse_id"`
	From        models.AuditStatus `json:"from"`
	To          models.AuditStatus `json:"to"`
	ActorID     uint               `json:"actor_id"`
	Reason      string             `json:"reason,omitempty"`
	At          time.Time          `json:"at"`
}

func (SessionTransitioned) EventName() string { return "SessionTransitioned" }

type Handler func(ctx context.Context, event Event)

// Bus dispatches events synchronously to every subscriber in subscription order.
// A nil *Bus drops events.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(ctx context.Context, event Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}

// LogSubscriber writes every event to the structured log.
func LogSubscriber(logger *logrus.Logger) Handler {
	return func(_ context.Context, event Event) {
		logger.WithFields(logrus.Fields{
			"module": "events",
			"event":  event.EventName(),
			"data":   event,
		}).Info("domain event")
	}
}
