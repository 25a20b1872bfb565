package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Additional-Code/orderbook/internal/entity"
)

// OrderResponse represents an order as exposed via transport layers.
type OrderResponse struct {
	ID              int64           `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	ShippingAddress string          `json:"shippingAddress,omitempty"`
	OrderMetadata   string          `json:"orderMetadata,omitempty"`
	CreatedAt       *time.Time      `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time      `json:"updatedAt,omitempty"`
}

// OrderItemResponse represents a single order line.
type OrderItemResponse struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"orderNumber"`
	ProductSKU  string          `json:"productSku"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	CreatedAt   *time.Time      `json:"createdAt,omitempty"`
}

// OrderDetailResponse is an order with its items attached. Items is always
// rendered, as an empty array when the order has no lines.
type OrderDetailResponse struct {
	OrderResponse
	Items []OrderItemResponse `json:"items"`
}

// OrderRequest is the inbound payload for create and update calls.
type OrderRequest struct {
	OrderNumber     string          `json:"orderNumber"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	Status          string          `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
	ShippingAddress string          `json:"shippingAddress"`
	OrderMetadata   string          `json:"orderMetadata"`
}

// CountResponse carries the total number of stored orders.
type CountResponse struct {
	Count int64 `json:"count"`
}

// ToEntity converts the request into an unsaved order.
func (r OrderRequest) ToEntity() *entity.Order {
	return &entity.Order{
		OrderNumber:     r.OrderNumber,
		CustomerName:    r.CustomerName,
		CustomerEmail:   r.CustomerEmail,
		Status:          r.Status,
		Amount:          r.Amount,
		ShippingAddress: r.ShippingAddress,
		OrderMetadata:   r.OrderMetadata,
	}
}

// FromOrder builds the plain order response.
func FromOrder(order *entity.Order) OrderResponse {
	return OrderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		CustomerEmail:   order.CustomerEmail,
		Status:          order.Status,
		Amount:          order.Amount,
		ShippingAddress: order.ShippingAddress,
		OrderMetadata:   order.OrderMetadata,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

// FromOrders builds plain responses for a list of orders.
func FromOrders(orders []entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, FromOrder(&orders[i]))
	}
	return out
}

// FromOrderWithItems builds the detail response including items.
func FromOrderWithItems(order *entity.Order) OrderDetailResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			OrderNumber: item.OrderNumber,
			ProductSKU:  item.ProductSKU,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			CreatedAt:   item.CreatedAt,
		})
	}
	return OrderDetailResponse{
		OrderResponse: FromOrder(order),
		Items:         items,
	}
}

// FromOrdersWithItems builds detail responses for a list of orders.
func FromOrdersWithItems(orders []entity.Order) []OrderDetailResponse {
	out := make([]OrderDetailResponse, 0, len(orders))
	for i := range orders {
		out = append(out, FromOrderWithItems(&orders[i]))
	}
	return out
}
