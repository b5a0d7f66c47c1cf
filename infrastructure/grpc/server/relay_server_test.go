package server

import (
	"action-relay/errors"
	"action-relay/sink"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

// contextStream is a server stream that only carries a context.
type contextStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s contextStream) Context() context.Context {
	return s.ctx
}

func TestRelayServer_WriteLoop_Closes_Session_When_Stream_Ends(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	relay := NewRelayServer(log, nil, 1)
	session := sink.NewSessionSink(uuid.NewString(), 1)

	// Given a stream whose client went away
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// When the writer notices
	written := make(chan error, 1)
	go func() {
		written <- relay.writeLoop(contextStream{ctx: ctx}, session)
	}()
	select {
	case err := <-written:
		req.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		req.FailNow("writeLoop did not return")
	}

	// Then the session refuses further envelopes instead of queueing them
	select {
	case <-session.Done():
	default:
		req.FailNow("session still open")
	}
	req.ErrorIs(session.SendBinary(context.Background(), []byte{0x01}), errors.ErrSessionClosed)
}
