package main

import (
	"action-relay/codec"
	"action-relay/infrastructure/grpc/server"
	"action-relay/infrastructure/websocket"
	"action-relay/internal"
	"action-relay/observability"
	"action-relay/runtime"
	"action-relay/runtime/workers"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	grpc3 "github.com/mama165/sdk-go/grpc"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Relay terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the relay and blocks until SIGINT or SIGTERM.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.Load()
	if err != nil {
		return exitConfig, err
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	// 2. Relay core
	registry := runtime.NewRegistry()
	monitoring := observability.NewMonitoringManager(logger)
	dispatcher := runtime.NewDispatcher(logger, registry, codec.NewProtobuf(), monitoring, config.DeliveryTimeout)

	// 3. Transports
	wsOptions := websocket.Options{
		ConnectionBufferSize: config.ConnectionBufferSize,
		MaxMessageSize:       config.MaxMessageSize,
		WriteWait:            config.WriteWait,
		PongWait:             config.PongWait,
		AllowedOrigins:       config.Origins(),
	}
	wsHandler := websocket.NewHandler(logger, dispatcher, wsOptions)
	mux := newMux(config.EndpointPath, wsHandler, monitoring, registry)

	sup := workers.NewSupervisor(logger)
	sup.Add(
		workers.NewHttpServerWorker(logger, config.HttpAddress(), mux, config.ShutdownTimeout),
		workers.NewHeartbeatWorker(logger, monitoring, registry, config.HeartbeatInterval),
	)

	if config.EnableGrpc {
		s := grpc.NewServer(grpc.ChainUnaryInterceptor(grpc3.UnaryLoggingInterceptor(logger)))
		healthServer := server.Register(s, server.NewRelayServer(logger, dispatcher, config.ConnectionBufferSize))
		sup.Add(workers.NewGrpcServerWorker(logger, config.GrpcAddress(), s, healthServer, config.ShutdownTimeout))
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Relay starting",
		"http_address", config.HttpAddress(),
		"endpoint", config.EndpointPath,
		"grpc_enabled", config.EnableGrpc,
		"delivery_timeout", config.DeliveryTimeout,
	)

	// 5. Run until a signal arrives. Workers shut their servers down on cancel.
	sup.Run(ctx)

	stats := monitoring.GetLatest(registry)
	logger.Info("Relay stopped cleanly",
		"opened_sessions", stats.OpenedSessions,
		"broadcasts", stats.Counters.Broadcasts,
	)
	return exitOK, nil
}
