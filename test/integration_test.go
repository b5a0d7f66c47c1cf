package test

import (
	"action-relay/codec"
	"action-relay/domain"
	"action-relay/observability"
	"action-relay/runtime"
	"action-relay/sink"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, session *sink.SessionSink) domain.ActionEnvelope {
	t.Helper()
	select {
	case data := <-session.Outbound():
		envelope, err := codec.NewProtobuf().DecodeEnvelope(data)
		require.NoError(t, err)
		return envelope
	case <-time.After(time.Second):
		require.FailNow(t, "no envelope received", "session %s", session.ID())
		return domain.ActionEnvelope{}
	}
}

func Test_Scenario(t *testing.T) {
	ctx := context.Background()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := runtime.NewRegistry()
	monitoring := observability.NewMonitoringManager(log)
	wire := codec.NewProtobuf()
	dispatcher := runtime.NewDispatcher(log, registry, wire, monitoring, time.Second)

	a := sink.NewSessionSink(uuid.NewString(), 16)
	b := sink.NewSessionSink(uuid.NewString(), 16)

	// 1. A connects and is alone
	dispatcher.OnConnect(ctx, a)
	join := receive(t, a)
	req.Equal("User #0", join.UserName)
	req.Equal(domain.UserJoin{UserCount: 1}, join.Payload)

	// 2. B connects, both are told
	dispatcher.OnConnect(ctx, b)
	for _, s := range []*sink.SessionSink{a, b} {
		join := receive(t, s)
		req.Equal("User #1", join.UserName)
		req.Equal(domain.UserJoin{UserCount: 2}, join.Payload)
	}

	// 3. A orders a large pizza
	data, err := wire.EncodeRequest(domain.ActionRequest{
		RawType: domain.ActionOrderPizza,
		Payload: domain.OrderPizza{Size: "large"},
	})
	req.NoError(err)
	dispatcher.OnBinary(ctx, a, data)
	for _, s := range []*sink.SessionSink{a, b} {
		envelope := receive(t, s)
		req.Equal("User #0", envelope.UserName)
		req.Equal(domain.OrderPizza{Size: "large"}, envelope.Payload)
	}

	// 4. B leaves, A is told
	b.Close()
	dispatcher.OnDisconnect(ctx, b)
	leave := receive(t, a)
	req.Equal("User #1", leave.UserName)
	req.Equal(domain.UserLeave{UserCount: 1}, leave.Payload)

	// 5. Nothing else was sent
	req.Empty(a.Outbound())
	stats := monitoring.GetLatest(registry)
	req.Equal(1, stats.LiveSessions)
	req.Equal(int64(2), stats.OpenedSessions)
	req.Equal(uint64(4), stats.Counters.Broadcasts)
	req.Zero(stats.Counters.DeliveryFailures)
}
