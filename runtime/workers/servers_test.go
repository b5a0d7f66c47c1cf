package workers

import (
	"action-relay/infrastructure/grpc/server"
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func freeAddress(t *testing.T) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())
	return address
}

func runWorker(ctx context.Context, run func(ctx context.Context) error) <-chan error {
	result := make(chan error, 1)
	go func() { result <- run(ctx) }()
	return result
}

func TestHttpServerWorker_Serves_Until_Canceled(t *testing.T) {
	req := require.New(t)
	address := freeAddress(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	worker := NewHttpServerWorker(logs.GetLoggerFromLevel(slog.LevelDebug), address, mux, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	result := runWorker(ctx, worker.Run)

	// When the server is up
	var body []byte
	req.Eventually(func() bool {
		resp, err := http.Get("http://" + address + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ = io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)
	req.Equal("ok", string(body))

	// Then canceling stops it cleanly
	cancel()
	select {
	case err := <-result:
		req.NoError(err)
	case <-time.After(2 * time.Second):
		req.Fail("HTTP worker did not stop")
	}
}

func TestHttpServerWorker_Fails_When_Address_Is_Taken(t *testing.T) {
	req := require.New(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	req.NoError(err)
	defer listener.Close()

	worker := NewHttpServerWorker(logs.GetLoggerFromLevel(slog.LevelDebug),
		listener.Addr().String(), http.NewServeMux(), time.Second)

	req.Error(worker.Run(context.Background()))
}

func TestGrpcServerWorker_Serves_Health_Until_Canceled(t *testing.T) {
	req := require.New(t)
	address := freeAddress(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	s := grpc.NewServer()
	healthServer := server.Register(s, server.NewRelayServer(log, nil, 1))
	worker := NewGrpcServerWorker(log, address, s, healthServer, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	result := runWorker(ctx, worker.Run)

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	req.NoError(err)
	defer conn.Close()

	req.Eventually(func() bool {
		callCtx, callCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer callCancel()
		resp, err := healthpb.NewHealthClient(conn).Check(callCtx,
			&healthpb.HealthCheckRequest{Service: server.RelayServiceName})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-result:
		req.NoError(err)
	case <-time.After(3 * time.Second):
		req.Fail("gRPC worker did not stop")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
