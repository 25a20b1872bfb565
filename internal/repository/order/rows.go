package order

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	"github.com/Additional-Code/orderbook/internal/entity"
)

// orderRow mirrors one row of the orders table.
type orderRow struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID              int64           `bun:"id,pk,autoincrement"`
	OrderNumber     string          `bun:"order_number"`
	CustomerName    string          `bun:"customer_name"`
	CustomerEmail   string          `bun:"customer_email"`
	Status          string          `bun:"status"`
	Amount          decimal.Decimal `bun:"amount"`
	ShippingAddress string          `bun:"shipping_address"`
	OrderMetadata   string          `bun:"order_metadata"`
	CreatedAt       *time.Time      `bun:"created_at"`
	UpdatedAt       *time.Time      `bun:"updated_at"`
}

// orderItemRow mirrors one row of the order_items table.
type orderItemRow struct {
	bun.BaseModel `bun:"table:order_items,alias:oi"`

	ID          int64           `bun:"id,pk,autoincrement"`
	OrderNumber string          `bun:"order_number"`
	ProductSKU  string          `bun:"product_sku"`
	ProductName string          `bun:"product_name"`
	Quantity    int             `bun:"quantity"`
	UnitPrice   decimal.Decimal `bun:"unit_price"`
	CreatedAt   *time.Time      `bun:"created_at"`
}

// Columns written by Update and UpdateByOrderNumber. Everything else is
// fixed at insert time.
var mutableOrderColumns = []string{"customer_name", "status", "amount", "updated_at"}

func newOrderRow(order *entity.Order) *orderRow {
	return &orderRow{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		Status:          order.Status,
		Amount:          order.Amount,
		ShippingAddress: order.ShippingAddress,
		OrderMetadata:   order.OrderMetadata,
		CreatedAt:       normalizeTime(order.CreatedAt),
		UpdatedAt:       normalizeTime(order.UpdatedAt),
	}
}

func (r *orderRow) toEntity() entity.Order {
	return entity.Order{
		ID:              r.ID,
		OrderNumber:     r.OrderNumber,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		Status:          r.Status,
		Amount:          r.Amount,
		ShippingAddress: r.ShippingAddress,
		OrderMetadata:   r.OrderMetadata,
		CreatedAt:       normalizeTime(r.CreatedAt),
		UpdatedAt:       normalizeTime(r.UpdatedAt),
	}
}

func newOrderItemRow(item *entity.OrderItem) *orderItemRow {
	return &orderItemRow{
		ID:          item.ID,
		OrderNumber: item.OrderNumber,
		ProductSKU:  item.ProductSKU,
		ProductName: item.ProductName,
		Quantity:    item.Quantity,
		UnitPrice:   item.UnitPrice,
		CreatedAt:   normalizeTime(item.CreatedAt),
	}
}

func (r *orderItemRow) toEntity() entity.OrderItem {
	return entity.OrderItem{
		ID:          r.ID,
		OrderNumber: r.OrderNumber,
		ProductSKU:  r.ProductSKU,
		ProductName: r.ProductName,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
		CreatedAt:   normalizeTime(r.CreatedAt),
	}
}

func ordersToEntities(rows []orderRow) []entity.Order {
	out := make([]entity.Order, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out
}

func itemsToEntities(rows []orderItemRow) []entity.OrderItem {
	out := make([]entity.OrderItem, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toEntity())
	}
	return out
}

// normalizeTime keeps nil as nil and maps every engine's timestamp into UTC.
func normalizeTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	utc := t.UTC()
	return &utc
}

// stamp returns the instant written for created_at/updated_at. Postgres and
// MySQL DATETIME(6) keep microseconds, so anything finer would not round-trip.
func stamp(now time.Time) time.Time {
	return now.UTC().Truncate(time.Microsecond)
}
