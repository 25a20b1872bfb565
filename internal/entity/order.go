package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order represents a purchase order stored in the relational database.
//
// ID is zero until the order is first persisted. CreatedAt and UpdatedAt are
// stamped by the store; a nil timestamp means the column was never set.
// Items is only populated by aggregate lookups and stays nil otherwise.
type Order struct {
	ID              int64
	OrderNumber     string
	CustomerName    string
	CustomerEmail   string
	Status          string
	Amount          decimal.Decimal
	ShippingAddress string
	OrderMetadata   string
	CreatedAt       *time.Time
	UpdatedAt       *time.Time

	Items []OrderItem
}

// OrderItem is a line item belonging to the order with the same order number.
type OrderItem struct {
	ID          int64
	OrderNumber string
	ProductSKU  string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	CreatedAt   *time.Time
}
