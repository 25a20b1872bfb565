package seeder

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderbook/internal/entity"
	repo "github.com/Additional-Code/orderbook/internal/repository/order"
)

// Module provides the seeder to Fx.
var Module = fx.Provide(New)

// Store is the subset of the order repository the seeder writes through.
type Store interface {
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, order *entity.Order) error
	InsertItem(ctx context.Context, item *entity.OrderItem) error
}

// Seeder performs database seeding for local/dev setups.
type Seeder struct {
	store  Store
	logger *zap.Logger
}

// New constructs a Seeder backed by the order repository.
func New(repository *repo.Repository, logger *zap.Logger) *Seeder {
	return NewWithStore(repository, logger)
}

// NewWithStore constructs a Seeder over any Store.
func NewWithStore(store Store, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{store: store, logger: logger}
}

type sampleOrder struct {
	order entity.Order
	items []entity.OrderItem
}

func samples() []sampleOrder {
	return []sampleOrder{
		{
			order: entity.Order{
				OrderNumber:     "ORD-1000",
				CustomerName:    "Ada Lovelace",
				CustomerEmail:   "ada@example.com",
				Status:          "PENDING",
				Amount:          decimal.RequireFromString("59.97"),
				ShippingAddress: "12 St James's Square, London",
				OrderMetadata:   `{"channel":"web"}`,
			},
			items: []entity.OrderItem{
				{ProductSKU: "SKU-NOTE-01", ProductName: "Notebook", Quantity: 3, UnitPrice: decimal.RequireFromString("19.99")},
			},
		},
		{
			order: entity.Order{
				OrderNumber:     "ORD-1001",
				CustomerName:    "Grace Hopper",
				CustomerEmail:   "grace@example.com",
				Status:          "SHIPPED",
				Amount:          decimal.RequireFromString("134.50"),
				ShippingAddress: "1 Navy Yard, Arlington",
				OrderMetadata:   `{"channel":"mobile","gift":true}`,
			},
			items: []entity.OrderItem{
				{ProductSKU: "SKU-KB-02", ProductName: "Keyboard", Quantity: 1, UnitPrice: decimal.RequireFromString("89.50")},
				{ProductSKU: "SKU-MS-03", ProductName: "Mouse", Quantity: 1, UnitPrice: decimal.RequireFromString("45.00")},
			},
		},
		{
			order: entity.Order{
				OrderNumber:   "ORD-1002",
				CustomerName:  "Alan Turing",
				CustomerEmail: "alan@example.com",
				Status:        "CANCELLED",
				Amount:        decimal.Zero,
			},
		},
	}
}

// Orders inserts sample orders and their items when the orders table is
// empty. It reports how many orders were written.
func (s *Seeder) Orders(ctx context.Context) (int, error) {
	existing, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	if existing > 0 {
		s.logger.Info("orders already present; skipping seed", zap.Int64("count", existing))
		return 0, nil
	}

	seeded := 0
	for _, sample := range samples() {
		order := sample.order
		if err := s.store.Insert(ctx, &order); err != nil {
			return seeded, fmt.Errorf("seed order %s: %w", order.OrderNumber, err)
		}
		for _, item := range sample.items {
			item.OrderNumber = order.OrderNumber
			if err := s.store.InsertItem(ctx, &item); err != nil {
				return seeded, fmt.Errorf("seed item %s for %s: %w", item.ProductSKU, order.OrderNumber, err)
			}
		}
		seeded++
	}

	s.logger.Info("seeded orders", zap.Int("count", seeded))
	return seeded, nil
}
