package order

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/Additional-Code/orderbook/internal/dto"
	"github.com/Additional-Code/orderbook/internal/entity"
	"github.com/Additional-Code/orderbook/internal/presentation/http/response"
	service "github.com/Additional-Code/orderbook/internal/service/order"
	"github.com/Additional-Code/orderbook/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/Additional-Code/orderbook/transport/http/order")

// DefaultRecentLimit applies when /recent is called without a limit.
const DefaultRecentLimit = 50

// Module wires HTTP order handlers.
var Module = fx.Options(
	fx.Provide(NewHandler),
	fx.Invoke(func(e *echo.Echo, h *Handler) {
		Register(e, h)
	}),
)

// Service is the order behaviour the HTTP layer depends on.
type Service interface {
	List(ctx context.Context) ([]entity.Order, error)
	Get(ctx context.Context, id int64) (*entity.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*entity.Order, error)
	GetOrderWithItems(ctx context.Context, orderNumber string) (*entity.Order, error)
	GetRecentOrdersWithItems(ctx context.Context, limit int) ([]entity.Order, error)
	Create(ctx context.Context, order *entity.Order) error
	Update(ctx context.Context, id int64, details *entity.Order) (*entity.Order, error)
	UpdateByNumber(ctx context.Context, orderNumber string, details *entity.Order) (bool, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// Handler exposes order endpoints over HTTP.
type Handler struct {
	svc Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the order routes under /api/orders.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/api/orders")
	g.GET("", h.list)
	g.GET("/count", h.count)
	g.GET("/recent", h.recent)
	g.GET("/:id", h.getByID)
	g.GET("/number/:orderNumber", h.getByNumber)
	g.GET("/number/:orderNumber/details", h.getDetails)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.PUT("/number/:orderNumber", h.updateByNumber)
	g.DELETE("/:id", h.delete)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.list")
	defer span.End()

	orders, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrders(orders)).Build()
}

func (h *Handler) count(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.count")
	defer span.End()

	n, err := h.svc.Count(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.CountResponse{Count: n}).Build()
}

func (h *Handler) recent(c echo.Context) error {
	b := response.New(c)

	limit := DefaultRecentLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return b.WithError(errorbank.BadRequest("invalid limit", errorbank.WithCause(err))).Build()
		}
		limit = parsed
	}
	if limit <= 0 {
		return b.WithError(errorbank.BadRequest("limit must be positive", errorbank.WithDetail("limit", limit))).Build()
	}
	if limit > service.MaxRecentLimit {
		limit = service.MaxRecentLimit
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.recent", trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	orders, err := h.svc.GetRecentOrdersWithItems(ctx, limit)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrdersWithItems(orders)).WithMeta("limit", limit).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Get(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) getByNumber(c echo.Context) error {
	b := response.New(c)
	number := c.Param("orderNumber")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getByNumber", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order, err := h.svc.GetByNumber(ctx, number)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) getDetails(c echo.Context) error {
	b := response.New(c)
	number := c.Param("orderNumber")

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.getDetails", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	order, err := h.svc.GetOrderWithItems(ctx, number)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrderWithItems(order)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	payload, err := bindOrder(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	if missing := missingFields(payload); len(missing) > 0 {
		return b.WithError(errorbank.Unprocessable("orderNumber and status are required",
			errorbank.WithDetails(map[string]any{"missing": missing}))).Build()
	}
	order := payload.ToEntity()

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.create", trace.WithAttributes(attribute.String("order.number", order.OrderNumber)))
	defer span.End()

	if err := h.svc.Create(ctx, order); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}
	payload, err := bindOrder(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.update", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.Update(ctx, id, payload.ToEntity())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(dto.FromOrder(order)).Build()
}

func (h *Handler) updateByNumber(c echo.Context) error {
	b := response.New(c)
	number := c.Param("orderNumber")

	payload, err := bindOrder(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.updateByNumber", trace.WithAttributes(attribute.String("order.number", number)))
	defer span.End()

	updated, err := h.svc.UpdateByNumber(ctx, number, payload.ToEntity())
	if err != nil {
		return b.WithError(err).Build()
	}
	if !updated {
		return b.WithError(errorbank.NotFound("order not found", errorbank.WithDetail("orderNumber", number))).Build()
	}
	return b.Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "orders.delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.NoContent()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}

func bindOrder(c echo.Context) (dto.OrderRequest, error) {
	var payload dto.OrderRequest
	if err := c.Bind(&payload); err != nil {
		return payload, errorbank.BadRequest("invalid payload", errorbank.WithCause(err))
	}
	return payload, nil
}

func missingFields(payload dto.OrderRequest) []string {
	var missing []string
	if payload.OrderNumber == "" {
		missing = append(missing, "orderNumber")
	}
	if payload.Status == "" {
		missing = append(missing, "status")
	}
	return missing
}
