package order

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Additional-Code/orderbook/internal/entity"
)

// MaxRecentLimit caps GetRecentOrdersWithItems.
const MaxRecentLimit = 200

// GetOrderWithItems loads the first order with the number and attaches its
// items. Items are only queried once the order is known to exist.
func (s *Service) GetOrderWithItems(ctx context.Context, orderNumber string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.GetOrderWithItems", trace.WithAttributes(attribute.String("order.number", orderNumber)))
	defer span.End()

	order, err := s.store.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, storeError(span, err, "failed to load order")
	}

	items, err := s.store.FindItemsByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, storeError(span, err, "failed to load order items")
	}
	order.Items = nonNilItems(items)
	return order, nil
}

// GetRecentOrdersWithItems loads the newest orders and their items with one
// query for the orders plus one per order, issued in sequence.
func (s *Service) GetRecentOrdersWithItems(ctx context.Context, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		return []entity.Order{}, nil
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	ctx, span := serviceTracer.Start(ctx, "OrderService.GetRecentOrdersWithItems", trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	orders, err := s.store.FindRecent(ctx, limit)
	if err != nil {
		return nil, storeError(span, err, "failed to load recent orders")
	}

	for i := range orders {
		items, err := s.store.FindItemsByOrderNumber(ctx, orders[i].OrderNumber)
		if err != nil {
			return nil, storeError(span, err, "failed to load order items")
		}
		orders[i].Items = nonNilItems(items)
	}

	span.SetAttributes(attribute.Int("orders.count", len(orders)), attribute.Int("db.queries", 1+len(orders)))
	if orders == nil {
		orders = []entity.Order{}
	}
	return orders, nil
}

func nonNilItems(items []entity.OrderItem) []entity.OrderItem {
	if items == nil {
		return []entity.OrderItem{}
	}
	return items
}
