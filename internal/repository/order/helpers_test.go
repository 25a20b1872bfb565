package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/Additional-Code/orderbook/internal/database"
	"github.com/Additional-Code/orderbook/internal/entity"
	"github.com/Additional-Code/orderbook/internal/migration"
)

var testEpoch = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

// stepClock advances by one second on every reading.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

// queryCounter counts statements that reach the database.
type queryCounter struct {
	mu      sync.Mutex
	queries []string
}

func (c *queryCounter) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (c *queryCounter) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = append(c.queries, event.Query)
}

func (c *queryCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queries)
}

func (c *queryCounter) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queries = nil
}

func newTestRepository(tb testing.TB, indexOrderNumber bool) (*Repository, *bun.DB) {
	tb.Helper()

	db, err := database.Open("sqlite", ":memory:")
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = db.Close() })

	m, err := migration.NewMigrator(db, "sqlite", indexOrderNumber, zap.NewNop())
	require.NoError(tb, err)
	require.NoError(tb, m.Up(context.Background()))

	clock := &stepClock{cur: testEpoch}
	repo := NewRepository(&database.Connections{Writer: db, Reader: db, Driver: "sqlite"}).WithClock(clock.Now)
	return repo, db
}

func sampleOrder(number string) *entity.Order {
	return &entity.Order{
		OrderNumber:     number,
		CustomerName:    "A",
		CustomerEmail:   "a@example.com",
		Status:          "PENDING",
		Amount:          decimal.RequireFromString("99.99"),
		ShippingAddress: "1 Main St",
		OrderMetadata:   `{"channel":"web"}`,
	}
}
