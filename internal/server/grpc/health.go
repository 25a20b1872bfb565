package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/Additional-Code/orderbook/pkg/errorbank"
)

const probeTimeout = 2 * time.Second

// OrderCounter is the probe the health check runs against the store.
type OrderCounter interface {
	Count(ctx context.Context) (int64, error)
}

// Health reports SERVING while orders can be counted.
type Health struct {
	healthpb.UnimplementedHealthServer

	counter OrderCounter
	logger  *zap.Logger
}

// NewHealth builds the health service.
func NewHealth(counter OrderCounter, logger *zap.Logger) *Health {
	return &Health{counter: counter, logger: logger}
}

// Check answers for the empty (overall) service and "orderbook".
func (h *Health) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	switch req.GetService() {
	case "", "orderbook":
	default:
		appErr := errorbank.NotFound("unknown service")
		return nil, status.Error(appErr.GRPCCode(), appErr.Message())
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if _, err := h.counter.Count(probeCtx); err != nil {
		h.logger.Warn("health probe failed", zap.Error(err))
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}
	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

// Watch is not supported; clients should poll Check.
func (h *Health) Watch(*healthpb.HealthCheckRequest, healthpb.Health_WatchServer) error {
	return status.Error(codes.Unimplemented, "watch is not supported")
}
