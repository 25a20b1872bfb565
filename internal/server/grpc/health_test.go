package grpc

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type stubCounter struct {
	err error
}

func (s stubCounter) Count(context.Context) (int64, error) { return 3, s.err }

func dialHealth(t *testing.T, counter OrderCounter) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	server := NewServer(zap.NewNop())
	healthpb.RegisterHealthServer(server, NewHealth(counter, zap.NewNop()))
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name    string
		counter OrderCounter
		service string
		want    healthpb.HealthCheckResponse_ServingStatus
	}{
		{name: "store reachable", counter: stubCounter{}, want: healthpb.HealthCheckResponse_SERVING},
		{name: "named service", counter: stubCounter{}, service: "orderbook", want: healthpb.HealthCheckResponse_SERVING},
		{name: "store down", counter: stubCounter{err: errors.New("db down")}, want: healthpb.HealthCheckResponse_NOT_SERVING},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := dialHealth(t, tt.counter)
			resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: tt.service})
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.GetStatus())
		})
	}
}

func TestHealthCheckUnknownService(t *testing.T) {
	client := dialHealth(t, stubCounter{})
	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "inventory"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}
