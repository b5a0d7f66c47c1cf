package workers

import (
	"action-relay/observability"
	"context"
	"log/slog"
	"time"
)

// HeartbeatWorker logs a snapshot of the relay at a fixed interval.
type HeartbeatWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	sessions   observability.SessionCounter
	interval   time.Duration
}

func NewHeartbeatWorker(
	log *slog.Logger,
	monitoring *observability.MonitoringManager,
	sessions observability.SessionCounter,
	interval time.Duration,
) *HeartbeatWorker {
	return &HeartbeatWorker{
		log:        log,
		monitoring: monitoring,
		sessions:   sessions,
		interval:   interval,
	}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := w.monitoring.GetLatest(w.sessions)
			w.log.Info("Heartbeat",
				"live_sessions", stats.LiveSessions,
				"opened_sessions", stats.OpenedSessions,
				"uptime", stats.Uptime,
				"broadcasts", stats.Counters.Broadcasts,
				"deliveries", stats.Counters.Deliveries,
				"delivery_failures", stats.Counters.DeliveryFailures,
				"decode_failures", stats.Counters.DecodeFailures,
				"ram_bytes", stats.Process.RamBytes,
				"cpu_percent", stats.Process.CpuPercent,
				"goroutines", stats.Process.Goroutines,
			)
		}
	}
}
