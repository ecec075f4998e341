package events

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Topics published by the domain stores.
const (
	TopicPriceChanged     = "price.changed"
	TopicInventoryCounted = "inventory.counted"
	TopicSessionClosed    = "register.session.closed"
)

// Handler consumes one published event. Handlers must tolerate being
// called from the publisher's goroutine.
type Handler func(ctx context.Context, payload any)

// Bus is a synchronous in-process publish/subscribe bus. Publishing is
// best-effort: a panicking subscriber is logged and swallowed so it can
// never fail the operation that published the event.
type Bus struct {
	log *zap.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewBus builds the process-wide event bus.
func NewBus(log *zap.Logger) *Bus {
	return &Bus{
		log:      log.Named("events"),
		handlers: make(map[string][]Handler),
	}
}

// Module wires the bus via Fx.
var Module = fx.Module("events",
	fx.Provide(NewBus),
)

// Subscribe registers a handler for a topic.
func (b *Bus) Subscribe(topic string, handler Handler) {
	if handler == nil {
		return
	}
	b.mu.Lock()
	b.handlers[topic] = append(b.handlers[topic], handler)
	b.mu.Unlock()
}

// Publish dispatches the payload to every subscriber of the topic.
func (b *Bus) Publish(ctx context.Context, topic string, payload any) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[topic]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.dispatch(ctx, topic, handler, payload)
	}
}

func (b *Bus) dispatch(ctx context.Context, topic string, handler Handler, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Warn("event handler panicked",
				zap.String("topic", topic),
				zap.Any("panic", r),
			)
		}
	}()
	handler(ctx, payload)
}

// PriceChanged is the payload for TopicPriceChanged.
type PriceChanged struct {
	ProductID string
	NewPrice  float64
}

// InventoryCounted is the payload for TopicInventoryCounted.
type InventoryCounted struct {
	ProductID string
	Location  string
	Variance  int64
}

// SessionClosed is the payload for TopicSessionClosed.
type SessionClosed struct {
	RegisterID string
	SessionID  int64
}
