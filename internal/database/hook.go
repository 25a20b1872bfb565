package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/Additional-Code/orderbook/database"

// QueryHook records every statement sent to the database as one round trip.
type QueryHook struct {
	logger   *zap.Logger
	queries  metric.Int64Counter
	duration metric.Float64Histogram
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook builds a hook reporting to the global meter provider.
func NewQueryHook(logger *zap.Logger) (*QueryHook, error) {
	return newQueryHook(logger, otel.Meter(instrumentationName))
}

func newQueryHook(logger *zap.Logger, meter metric.Meter) (*QueryHook, error) {
	queries, err := meter.Int64Counter("db.client.queries",
		metric.WithDescription("Database round trips issued by the service."),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("db.client.query.duration",
		metric.WithDescription("Database round trip latency."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryHook{logger: logger, queries: queries, duration: duration}, nil
}

// BeforeQuery implements bun.QueryHook.
func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

// AfterQuery implements bun.QueryHook.
func (h *QueryHook) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	elapsed := time.Since(event.StartTime)
	failed := event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows)

	attrs := metric.WithAttributes(
		attribute.String("db.operation", event.Operation()),
		attribute.Bool("error", failed),
	)
	h.queries.Add(ctx, 1, attrs)
	h.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)

	if failed {
		h.logger.Warn("query failed",
			zap.String("operation", event.Operation()),
			zap.Duration("duration", elapsed),
			zap.Error(event.Err),
		)
		return
	}
	if ce := h.logger.Check(zap.DebugLevel, "query"); ce != nil {
		ce.Write(
			zap.String("operation", event.Operation()),
			zap.String("sql", event.Query),
			zap.Duration("duration", elapsed),
		)
	}
}
