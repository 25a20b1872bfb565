package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/Additional-Code/orderbook/internal/database"
	"github.com/Additional-Code/orderbook/internal/entity"
)

// Module provides the order repository to Fx.
var Module = fx.Provide(NewRepository)

var repoTracer = otel.Tracer("github.com/Additional-Code/orderbook/repository/order")

// ListLimit bounds FindAll.
const ListLimit = 100

// ErrNotFound is returned when a point lookup matches no row.
var ErrNotFound = errors.New("order not found")

// Repository encapsulates read/write access for orders and their items.
//
// order_number is not indexed unless DB_INDEX_ORDER_NUMBER is enabled, so
// every lookup or update keyed by order number is a full table scan.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
	now    func() time.Time
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
		now:    time.Now,
	}
}

// WithClock replaces the timestamp source used for created_at and updated_at.
func (r *Repository) WithClock(now func() time.Time) *Repository {
	if now != nil {
		r.now = now
	}
	return r
}

// FindAll returns up to ListLimit orders in natural storage order.
func (r *Repository) FindAll(ctx context.Context) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.FindAll")
	defer span.End()

	var rows []orderRow
	if err := r.reader.NewSelect().Model(&rows).Limit(ListLimit).Scan(ctx); err != nil {
		return nil, fail(span, err, "select failed")
	}
	return ordersToEntities(rows), nil
}

// FindByID fetches an order by primary key using the read replica when available.
func (r *Repository) FindByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.FindByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	row := new(orderRow)
	err := r.reader.NewSelect().Model(row).Where("id = ?", id).Limit(1).Scan(ctx)
	return r.single(span, row, err)
}

// FindByOrderNumber fetches the first order carrying the business key.
// Order numbers are not unique; duplicates resolve to natural storage order.
func (r *Repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.FindByOrderNumber", trace.WithAttributes(attribute.String("order.number", orderNumber)))
	defer span.End()

	row := new(orderRow)
	err := r.reader.NewSelect().Model(row).Where("order_number = ?", orderNumber).Limit(1).Scan(ctx)
	return r.single(span, row, err)
}

// FindRecent returns up to limit orders, newest created_at first.
func (r *Repository) FindRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.FindRecent", trace.WithAttributes(attribute.Int("limit", limit)))
	defer span.End()

	var rows []orderRow
	err := r.reader.NewSelect().
		Model(&rows).
		OrderExpr("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fail(span, err, "select failed")
	}
	return ordersToEntities(rows), nil
}

// FindItemsByOrderNumber lists the items joined to an order by order number.
// The result is never nil.
func (r *Repository) FindItemsByOrderNumber(ctx context.Context, orderNumber string) ([]entity.OrderItem, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.FindItemsByOrderNumber", trace.WithAttributes(attribute.String("order.number", orderNumber)))
	defer span.End()

	var rows []orderItemRow
	if err := r.reader.NewSelect().Model(&rows).Where("order_number = ?", orderNumber).Scan(ctx); err != nil {
		return nil, fail(span, err, "select failed")
	}
	return itemsToEntities(rows), nil
}

// Save inserts orders that were never persisted (ID == 0) and updates the
// rest. It reports affected rows: 1 for an insert, 0 when updating an id
// that does not exist.
func (r *Repository) Save(ctx context.Context, order *entity.Order) (int64, error) {
	if order == nil {
		return 0, errors.New("nil order")
	}
	if order.ID == 0 {
		if err := r.Insert(ctx, order); err != nil {
			return 0, err
		}
		return 1, nil
	}
	return r.Update(ctx, order)
}

// Insert persists a new order, stamping created_at and updated_at with the
// same instant, and fills ID and both timestamps in place.
func (r *Repository) Insert(ctx context.Context, order *entity.Order) error {
	if order == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Insert", trace.WithAttributes(attribute.String("order.number", order.OrderNumber)))
	defer span.End()

	now := stamp(r.now())
	row := newOrderRow(order)
	row.ID = 0
	row.CreatedAt = &now
	row.UpdatedAt = &now

	id, err := insertWithKey(ctx, r.writer, row)
	if err != nil {
		return fail(span, err, "insert failed")
	}

	createdAt, updatedAt := now, now
	order.ID = id
	order.CreatedAt = &createdAt
	order.UpdatedAt = &updatedAt
	span.SetAttributes(attribute.Int64("order.id", id))
	return nil
}

// Update writes customer name, status, amount and a fresh updated_at for the
// order's ID. Other columns are immutable through this path.
func (r *Repository) Update(ctx context.Context, order *entity.Order) (int64, error) {
	if order == nil {
		return 0, errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Update", trace.WithAttributes(attribute.Int64("order.id", order.ID)))
	defer span.End()

	now := stamp(r.now())
	affected, err := r.updateMutable(ctx, order, now, "id = ?", order.ID)
	if err != nil {
		return 0, fail(span, err, "update failed")
	}
	order.UpdatedAt = &now
	return affected, nil
}

// UpdateByOrderNumber applies the Update column set to every order carrying
// orderNumber and returns how many rows changed.
func (r *Repository) UpdateByOrderNumber(ctx context.Context, orderNumber string, order *entity.Order) (int64, error) {
	if order == nil {
		return 0, errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateByOrderNumber", trace.WithAttributes(attribute.String("order.number", orderNumber)))
	defer span.End()

	affected, err := r.updateMutable(ctx, order, stamp(r.now()), "order_number = ?", orderNumber)
	if err != nil {
		return 0, fail(span, err, "update failed")
	}
	span.SetAttributes(attribute.Int64("rows.affected", affected))
	return affected, nil
}

func (r *Repository) updateMutable(ctx context.Context, order *entity.Order, now time.Time, where string, arg interface{}) (int64, error) {
	row := &orderRow{
		CustomerName: order.CustomerName,
		Status:       order.Status,
		Amount:       order.Amount,
		UpdatedAt:    &now,
	}
	res, err := r.writer.NewUpdate().
		Model(row).
		Column(mutableOrderColumns...).
		Where(where, arg).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByID removes the order row and returns the number of rows deleted.
// Items are left in place and deleting a missing id is not an error.
func (r *Repository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.DeleteByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*orderRow)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return 0, fail(span, err, "delete failed")
	}
	return res.RowsAffected()
}

// Count returns the total number of orders.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Count")
	defer span.End()

	n, err := r.reader.NewSelect().Model((*orderRow)(nil)).Count(ctx)
	if err != nil {
		return 0, fail(span, err, "count failed")
	}
	return int64(n), nil
}

// InsertItem persists an order line and fills its ID and created_at.
func (r *Repository) InsertItem(ctx context.Context, item *entity.OrderItem) error {
	if item == nil {
		return errors.New("nil order item")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.InsertItem", trace.WithAttributes(attribute.String("order.number", item.OrderNumber)))
	defer span.End()

	now := stamp(r.now())
	row := newOrderItemRow(item)
	row.ID = 0
	row.CreatedAt = &now

	id, err := insertWithKey(ctx, r.writer, row)
	if err != nil {
		return fail(span, err, "insert failed")
	}
	item.ID = id
	item.CreatedAt = &now
	return nil
}

func (r *Repository) single(span trace.Span, row *orderRow, err error) (*entity.Order, error) {
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fail(span, err, "select failed")
	}
	order := row.toEntity()
	return &order, nil
}

func fail(span trace.Span, err error, msg string) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return err
}
