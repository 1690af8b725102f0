package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/forgekit/internal/domain/model"
)

// ErrInvalidPayload is returned by Receive when the body is not well-formed JSON.
var ErrInvalidPayload = errors.New("invalid JSON payload")

// EventHandler reacts to one webhook event type.
type EventHandler interface {
	HandleEvent(ctx context.Context, event model.Event) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event model.Event) error

// HandleEvent calls f(ctx, event).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event model.Event) error {
	return f(ctx, event)
}

// WebhookService accepts inbound deliveries, logs them and hands each one to the
// handler registered for its event type. Events without a registered handler go to
// the fallback, which only logs. Inbound events are not authenticated.
type WebhookService struct {
	mu       sync.RWMutex
	handlers map[string]EventHandler
	fallback EventHandler
	logger   *slog.Logger
	now      func() time.Time
}

// NewWebhookService creates a WebhookService with a log-only fallback handler.
func NewWebhookService(logger *slog.Logger) *WebhookService {
	s := &WebhookService{
		handlers: make(map[string]EventHandler),
		logger:   logger,
		now:      time.Now,
	}
	s.fallback = EventHandlerFunc(s.logOnly)
	return s
}

// Handle registers h for eventType, replacing any previous registration.
func (s *WebhookService) Handle(eventType string, h EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[eventType] = h
}

// Receive validates and logs one delivery, then dispatches it. A handler error is
// logged and does not fail the delivery: the event has still been received.
func (s *WebhookService) Receive(ctx context.Context, eventType, deliveryID string, payload []byte) (model.Receipt, error) {
	if !json.Valid(payload) {
		return model.Receipt{}, ErrInvalidPayload
	}

	event := model.Event{
		Type:       eventType,
		DeliveryID: deliveryID,
		Payload:    json.RawMessage(payload),
		ReceivedAt: s.now().UTC(),
	}
	receipt := model.Receipt{
		ID:         uuid.NewString(),
		Event:      eventType,
		Delivery:   deliveryID,
		ReceivedAt: event.ReceivedAt,
	}

	logger := s.logger.With("receipt_id", receipt.ID)
	logger.Info("github event received")
	logger.Info("event metadata", "event_type", eventType, "delivery_id", deliveryID)
	logger.Info("event payload", "payload", indent(payload))

	if err := s.handlerFor(eventType).HandleEvent(ctx, event); err != nil {
		logger.Error("event handler failed", "event_type", eventType, "error", err)
	}

	return receipt, nil
}

// Handles reports whether a handler is registered for eventType.
func (s *WebhookService) Handles(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.handlers[eventType]
	return ok
}

func (s *WebhookService) handlerFor(eventType string) EventHandler {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if h, ok := s.handlers[eventType]; ok {
		return h
	}
	return s.fallback
}

func (s *WebhookService) logOnly(ctx context.Context, event model.Event) error {
	s.logger.DebugContext(ctx, "no handler registered for event", "event_type", event.Type)
	return nil
}

// indent pretty-prints valid JSON with two-space indentation.
func indent(payload []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return string(payload)
	}
	return buf.String()
}
