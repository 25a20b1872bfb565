package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderbook/internal/config"
	"github.com/Additional-Code/orderbook/internal/messaging"
	ordersvc "github.com/Additional-Code/orderbook/internal/service/order"
	"github.com/Additional-Code/orderbook/internal/worker"
)

var workerTracer = otel.Tracer("github.com/Additional-Code/orderbook/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderEventsHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderEventsHandler logs order lifecycle events published by the service.
func NewOrderEventsHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handleOrderEvent(logger),
	}
}

func handleOrderEvent(logger *zap.Logger) messaging.Handler {
	return func(ctx context.Context, msg messaging.Message) error {
		_, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
			attribute.Int64("messaging.offset", msg.Offset),
		))
		defer span.End()

		var event ordersvc.OrderEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// redelivery cannot fix a malformed payload, so it is acknowledged
			logger.Error("failed to decode order event", zap.Error(err), zap.Int64("offset", msg.Offset))
			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return nil
		}

		eventType := msg.Headers[ordersvc.EventTypeHeader]
		if eventType == "" {
			eventType = event.Type
		}
		span.SetAttributes(attribute.String("order.event", eventType))

		fields := []zap.Field{
			zap.String("type", eventType),
			zap.Int64("id", event.ID),
			zap.String("order_number", event.OrderNumber),
		}

		switch eventType {
		case ordersvc.EventOrderCreated, ordersvc.EventOrderUpdated:
			logger.Info("order event processed", append(fields,
				zap.String("status", event.Status),
				zap.String("amount", event.Amount.StringFixed(2)),
			)...)
		case ordersvc.EventOrderDeleted:
			logger.Info("order event processed", fields...)
		default:
			logger.Warn("unknown order event type", fields...)
		}
		return nil
	}
}
