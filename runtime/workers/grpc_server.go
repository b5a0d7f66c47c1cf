package workers

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// GrpcServerWorker serves the relay stream and the health service.
type GrpcServerWorker struct {
	log             *slog.Logger
	address         string
	server          *grpc.Server
	health          *health.Server
	shutdownTimeout time.Duration
}

func NewGrpcServerWorker(log *slog.Logger, address string, server *grpc.Server,
	health *health.Server, shutdownTimeout time.Duration) *GrpcServerWorker {
	return &GrpcServerWorker{
		log:             log,
		address:         address,
		server:          server,
		health:          health,
		shutdownTimeout: shutdownTimeout,
	}
}

func (w *GrpcServerWorker) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", w.address)
	if err != nil {
		return err
	}

	served := make(chan error, 1)
	go func() {
		w.log.Info("Starting gRPC server", "address", listener.Addr().String())
		for serviceName := range w.server.GetServiceInfo() {
			w.log.Debug("gRPC exposed service", "name", serviceName)
		}
		served <- w.server.Serve(listener)
	}()

	select {
	case err := <-served:
		return err
	case <-ctx.Done():
	}

	if w.health != nil {
		w.health.Shutdown()
	}
	// Open relay streams only end when their clients leave: force them after the timeout.
	stopped := make(chan struct{})
	go func() {
		w.server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(w.shutdownTimeout):
		w.log.Warn("gRPC graceful stop timed out, closing open streams")
		w.server.Stop()
		<-stopped
	}

	if err := <-served; err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	w.log.Info("gRPC server stopped")
	return nil
}
