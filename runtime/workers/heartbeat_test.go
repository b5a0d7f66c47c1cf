package workers

import (
	"action-relay/observability"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type fixedSessions struct{}

func (fixedSessions) CurrentCount() int  { return 4 }
func (fixedSessions) TotalOpened() int64 { return 9 }

func TestHeartbeatWorker_Logs_Stats_On_Every_Tick(t *testing.T) {
	req := require.New(t)
	out := &syncBuffer{}
	log := slog.New(slog.NewTextHandler(out, nil))
	monitoring := observability.NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug))
	monitoring.IncrBroadcasts()
	worker := NewHeartbeatWorker(log, monitoring, fixedSessions{}, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	// When the worker runs for a few intervals
	err := worker.Run(ctx)

	// Then it stopped cleanly and reported the relay state
	req.NoError(err)
	logged := out.String()
	req.Contains(logged, "msg=Heartbeat")
	req.Contains(logged, "live_sessions=4")
	req.Contains(logged, "opened_sessions=9")
	req.Contains(logged, "broadcasts=1")
}
