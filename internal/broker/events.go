package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"order-analytics/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing analytics events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishReportGenerated publishes a ReportGenerated event
func (ep *EventPublisher) PublishReportGenerated(ctx context.Context, event *models.ReportGeneratedEvent) error {
	key := fmt.Sprintf("report-%s", event.Org)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishReportFailed publishes a ReportFailed event
func (ep *EventPublisher) PublishReportFailed(ctx context.Context, event *models.ReportFailedEvent) error {
	key := fmt.Sprintf("report-%s", event.Org)
	return ep.producer.PublishEvent(ctx, key, event)
}

// OrderEventHandler routes order-mutation events from the order CRUD
// system to a registered callback.
type OrderEventHandler struct {
	onOrderMutated func(context.Context, *models.OrderMutatedEvent) error
}

// NewOrderEventHandler creates a new handler
func NewOrderEventHandler() *OrderEventHandler {
	return &OrderEventHandler{}
}

// OnOrderMutated registers a callback for order create/edit/delete events
func (eh *OrderEventHandler) OnOrderMutated(handler func(context.Context, *models.OrderMutatedEvent) error) {
	eh.onOrderMutated = handler
}

// HandleMessage routes messages to the appropriate handler
func (eh *OrderEventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	switch baseEvent.EventType {
	case models.EventTypeOrderUpserted, models.EventTypeOrderDeleted:
		if eh.onOrderMutated != nil {
			var event models.OrderMutatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal order event: %w", err)
			}
			return eh.onOrderMutated(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
