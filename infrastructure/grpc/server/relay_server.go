package server

import (
	"action-relay/contract"
	"action-relay/errors"
	"action-relay/sink"
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// RelayServer exposes the relay over a bidirectional gRPC stream.
// Each Connect call is one session, the same way a websocket connection is.
type RelayServer struct {
	log                  *slog.Logger
	dispatcher           contract.IDispatcher
	connectionBufferSize int
}

func NewRelayServer(log *slog.Logger, dispatcher contract.IDispatcher, connectionBufferSize int) *RelayServer {
	return &RelayServer{
		log:                  log,
		dispatcher:           dispatcher,
		connectionBufferSize: connectionBufferSize,
	}
}

// Register exposes the relay and the standard health service on s.
// The returned health server is flipped to NOT_SERVING on shutdown.
func Register(s *grpc.Server, relay *RelayServer) *health.Server {
	s.RegisterService(&RelayServiceDesc, relay)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(s, healthServer)
	healthServer.SetServingStatus(RelayServiceName, healthpb.HealthCheckResponse_SERVING)
	return healthServer
}

// Connect blocks until the client closes its side or the stream breaks.
// OnDisconnect runs once the writer has stopped, so nothing is sent after the handler returns.
func (s *RelayServer) Connect(stream grpc.ServerStream) error {
	session := sink.NewSessionSink(uuid.NewString(), s.connectionBufferSize)
	log := s.log.With("session_id", session.ID())
	ctx := context.WithoutCancel(stream.Context())

	written := make(chan error, 1)
	go func() {
		written <- s.writeLoop(stream, session)
	}()

	log.Debug("gRPC stream opened")
	s.dispatcher.OnConnect(ctx, session)
	readErr := s.readLoop(ctx, stream, session)

	session.Close()
	writeErr := <-written
	s.dispatcher.OnDisconnect(ctx, session)
	log.Debug("gRPC stream closed")

	if readErr != nil {
		return errors.MapToGRPCError(readErr)
	}
	if writeErr != nil {
		log.Debug("Stream write failed", "error", writeErr)
	}
	return nil
}

func (s *RelayServer) readLoop(ctx context.Context, stream grpc.ServerStream, session contract.Session) error {
	for {
		frame := &wrapperspb.BytesValue{}
		if err := stream.RecvMsg(frame); err != nil {
			if err == io.EOF || status.Code(err) == codes.Canceled {
				return nil
			}
			return err
		}
		s.dispatcher.OnBinary(ctx, session, frame.GetValue())
	}
}

// writeLoop is the only goroutine calling SendMsg on the stream.
// The session is closed whenever it returns.
func (s *RelayServer) writeLoop(stream grpc.ServerStream, session *sink.SessionSink) error {
	for {
		select {
		case <-session.Done():
			return nil
		case <-stream.Context().Done():
			session.Close()
			return stream.Context().Err()
		case data := <-session.Outbound():
			if err := stream.SendMsg(wrapperspb.Bytes(data)); err != nil {
				session.Close()
				return err
			}
		}
	}
}
