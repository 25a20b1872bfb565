package order

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderbook/internal/config"
	"github.com/Additional-Code/orderbook/internal/entity"
	"github.com/Additional-Code/orderbook/internal/messaging"
	repo "github.com/Additional-Code/orderbook/internal/repository/order"
	"github.com/Additional-Code/orderbook/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/Additional-Code/orderbook/service/order")

// Module provides the order service to Fx.
var Module = fx.Provide(NewService)

// Store is the persistence surface the service relies on.
type Store interface {
	FindAll(ctx context.Context) ([]entity.Order, error)
	FindByID(ctx context.Context, id int64) (*entity.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Order, error)
	FindItemsByOrderNumber(ctx context.Context, orderNumber string) ([]entity.OrderItem, error)
	Save(ctx context.Context, order *entity.Order) (int64, error)
	UpdateByOrderNumber(ctx context.Context, orderNumber string, order *entity.Order) (int64, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// Service encapsulates business logic around orders.
type Service struct {
	store     Store
	logger    *zap.Logger
	publisher messaging.Client
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Repository *repo.Repository
	Config     config.Config
	Logger     *zap.Logger
	Publisher  messaging.Client
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	publisher := p.Publisher
	if !p.Config.Messaging.Enabled {
		publisher = nil
	}
	return New(p.Repository, publisher, p.Logger)
}

// New builds a Service over any Store. A nil publisher disables order events.
func New(store Store, publisher messaging.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger, publisher: publisher}
}

// List returns the bounded order listing.
func (s *Service) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.List")
	defer span.End()

	orders, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, storeError(span, err, "failed to list orders")
	}
	return orders, nil
}

// Get retrieves an order by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Get", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(span, err, "failed to load order")
	}
	return order, nil
}

// GetByNumber retrieves an order by its business key.
func (s *Service) GetByNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.GetByNumber", trace.WithAttributes(attribute.String("order.number", orderNumber)))
	defer span.End()

	order, err := s.store.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, storeError(span, err, "failed to load order")
	}
	return order, nil
}

// Create persists the order through Save. Duplicate order numbers are accepted.
func (s *Service) Create(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errorbank.BadRequest("order payload is required")
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.Create", trace.WithAttributes(attribute.String("order.number", order.OrderNumber)))
	defer span.End()

	if _, err := s.store.Save(ctx, order); err != nil {
		return storeError(span, err, "failed to create order")
	}

	s.publish(ctx, EventOrderCreated, order)
	return nil
}

// Update copies customer name, status and amount from details onto the stored
// order and saves it. A row removed between the load and the save is reported
// as not found.
func (s *Service) Update(ctx context.Context, id int64, details *entity.Order) (*entity.Order, error) {
	if details == nil {
		return nil, errorbank.BadRequest("order payload is required")
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.Update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(span, err, "failed to load order")
	}

	existing.CustomerName = details.CustomerName
	existing.Status = details.Status
	existing.Amount = details.Amount

	affected, err := s.store.Save(ctx, existing)
	if err != nil {
		return nil, storeError(span, err, "failed to update order")
	}
	if affected == 0 {
		return nil, errorbank.NotFound("order not found")
	}

	s.publish(ctx, EventOrderUpdated, existing)
	return existing, nil
}

// UpdateByNumber applies details to every order with the number and reports
// whether any row changed.
func (s *Service) UpdateByNumber(ctx context.Context, orderNumber string, details *entity.Order) (bool, error) {
	if details == nil {
		return false, errorbank.BadRequest("order payload is required")
	}
	ctx, span := serviceTracer.Start(ctx, "OrderService.UpdateByNumber", trace.WithAttributes(attribute.String("order.number", orderNumber)))
	defer span.End()

	affected, err := s.store.UpdateByOrderNumber(ctx, orderNumber, details)
	if err != nil {
		return false, storeError(span, err, "failed to update order")
	}
	if affected == 0 {
		return false, nil
	}

	event := *details
	event.OrderNumber = orderNumber
	s.publish(ctx, EventOrderUpdated, &event)
	return true, nil
}

// Delete removes the order row; missing ids are not an error. The deleted
// event is only published when a row was actually removed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	affected, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return storeError(span, err, "failed to delete order")
	}
	if affected == 0 {
		return nil
	}

	s.publish(ctx, EventOrderDeleted, &entity.Order{ID: id})
	return nil
}

// Count returns the number of stored orders.
func (s *Service) Count(ctx context.Context) (int64, error) {
	ctx, span := serviceTracer.Start(ctx, "OrderService.Count")
	defer span.End()

	n, err := s.store.Count(ctx)
	if err != nil {
		return 0, storeError(span, err, "failed to count orders")
	}
	return n, nil
}

// storeError maps a store failure onto the application error taxonomy.
func storeError(span trace.Span, err error, msg string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return errorbank.NotFound("order not found")
	}
	span.RecordError(err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		span.SetStatus(codes.Error, "repository unavailable")
		return errorbank.Unavailable(msg, errorbank.WithCause(err))
	}
	span.SetStatus(codes.Error, "repository error")
	return errorbank.Internal(msg, errorbank.WithCause(err))
}
