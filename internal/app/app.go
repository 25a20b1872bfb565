package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/orderbook/internal/config"
	"github.com/Additional-Code/orderbook/internal/database"
	"github.com/Additional-Code/orderbook/internal/logger"
	"github.com/Additional-Code/orderbook/internal/messaging"
	"github.com/Additional-Code/orderbook/internal/observability"
	repositoryorder "github.com/Additional-Code/orderbook/internal/repository/order"
	grpcserver "github.com/Additional-Code/orderbook/internal/server/grpc"
	httpserver "github.com/Additional-Code/orderbook/internal/server/http"
	serviceorder "github.com/Additional-Code/orderbook/internal/service/order"
	transporthttp "github.com/Additional-Code/orderbook/internal/transport/http"
	"github.com/Additional-Code/orderbook/internal/worker"
	workerorder "github.com/Additional-Code/orderbook/internal/worker/order"
)

// Storage is the minimum graph for commands that only touch the database.
var Storage = fx.Options(
	config.Module,
	logger.Module,
	database.Module,
)

// Core provides the foundational modules shared across executables.
var Core = fx.Options(
	Storage,
	messaging.Module,
	observability.Module,
	repositoryorder.Module,
	serviceorder.Module,
)

// HTTP wires the HTTP transport and the gRPC health server on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	transporthttp.Module,
	grpcserver.Module,
)

// Worker exposes background worker processing.
var Worker = fx.Options(
	Core,
	worker.Module,
	workerorder.Module,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
