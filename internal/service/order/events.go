package order

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderbook/internal/entity"
)

// Event types carried in the "event-type" header of order messages.
const (
	EventOrderCreated = "order.created"
	EventOrderUpdated = "order.updated"
	EventOrderDeleted = "order.deleted"
)

// EventTypeHeader names the message header carrying the event type.
const EventTypeHeader = "event-type"

// OrderEvent is the payload published after a successful order write.
type OrderEvent struct {
	Type        string          `json:"type"`
	ID          int64           `json:"id,omitempty"`
	OrderNumber string          `json:"orderNumber,omitempty"`
	Status      string          `json:"status,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurredAt"`
}

func newOrderEvent(eventType string, order *entity.Order) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Amount:      order.Amount,
		OccurredAt:  time.Now().UTC(),
	}
}

// publish is best effort: the write already committed, so failures are only logged.
func (s *Service) publish(ctx context.Context, eventType string, order *entity.Order) {
	if s.publisher == nil {
		return
	}

	payload, err := json.Marshal(newOrderEvent(eventType, order))
	if err != nil {
		s.logger.Warn("failed to encode order event", zap.String("type", eventType), zap.Error(err))
		return
	}

	headers := map[string]string{EventTypeHeader: eventType}
	if err := s.publisher.Publish(ctx, eventKey(order), payload, headers); err != nil {
		s.logger.Warn("failed to publish order event",
			zap.String("type", eventType),
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
}

// eventKey partitions by order number, falling back to the id for events
// that only carry one.
func eventKey(order *entity.Order) []byte {
	if order.OrderNumber != "" {
		return []byte(order.OrderNumber)
	}
	return []byte(strconv.FormatInt(order.ID, 10))
}
