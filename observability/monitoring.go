package observability

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// RelayCounters are the cumulative counters of the dispatch engine.
type RelayCounters struct {
	Connections      uint64 `json:"connections"`
	Disconnections   uint64 `json:"disconnections"`
	Broadcasts       uint64 `json:"broadcasts"`
	Deliveries       uint64 `json:"deliveries"`
	DeliveryFailures uint64 `json:"delivery_failures"`
	DecodeFailures   uint64 `json:"decode_failures"`
	UnknownActions   uint64 `json:"unknown_actions"`
	Unregistered     uint64 `json:"unregistered_messages"`
	TextMessages     uint64 `json:"text_messages"`
}

// ProcessStats describes the relay process itself.
type ProcessStats struct {
	Pid        int32   `json:"pid"`
	RamBytes   uint64  `json:"ram_bytes"`
	CpuPercent float64 `json:"cpu_percent"`
	AllocMemMb uint64  `json:"alloc_mem_mb"`
	NumGC      uint32  `json:"num_gc"`
	Goroutines int     `json:"goroutines"`
}

// MonitoringStats aggregates everything exposed on /stats and logged by the heartbeat.
type MonitoringStats struct {
	LiveSessions   int           `json:"live_sessions"`
	OpenedSessions int64         `json:"opened_sessions"`
	Uptime         string        `json:"uptime"`
	Counters       RelayCounters `json:"counters"`
	Process        ProcessStats  `json:"process"`
}

// SessionCounter is the part of the registry the monitoring reads.
type SessionCounter interface {
	CurrentCount() int
	TotalOpened() int64
}

// MonitoringManager collects relay telemetry. Counters are lock free,
// the process handle is created lazily and reused.
type MonitoringManager struct {
	log       *slog.Logger
	startedAt time.Time

	connections      atomic.Uint64
	disconnections   atomic.Uint64
	broadcasts       atomic.Uint64
	deliveries       atomic.Uint64
	deliveryFailures atomic.Uint64
	decodeFailures   atomic.Uint64
	unknownActions   atomic.Uint64
	unregistered     atomic.Uint64
	textMessages     atomic.Uint64

	procOnce sync.Once
	proc     *process.Process
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log, startedAt: time.Now()}
}

func (mm *MonitoringManager) IncrConnections()      { mm.connections.Add(1) }
func (mm *MonitoringManager) IncrDisconnections()   { mm.disconnections.Add(1) }
func (mm *MonitoringManager) IncrBroadcasts()       { mm.broadcasts.Add(1) }
func (mm *MonitoringManager) IncrDeliveries()       { mm.deliveries.Add(1) }
func (mm *MonitoringManager) IncrDeliveryFailures() { mm.deliveryFailures.Add(1) }
func (mm *MonitoringManager) IncrDecodeFailures()   { mm.decodeFailures.Add(1) }
func (mm *MonitoringManager) IncrUnknownActions()   { mm.unknownActions.Add(1) }
func (mm *MonitoringManager) IncrUnregistered()     { mm.unregistered.Add(1) }
func (mm *MonitoringManager) IncrTextMessages()     { mm.textMessages.Add(1) }

func (mm *MonitoringManager) Counters() RelayCounters {
	return RelayCounters{
		Connections:      mm.connections.Load(),
		Disconnections:   mm.disconnections.Load(),
		Broadcasts:       mm.broadcasts.Load(),
		Deliveries:       mm.deliveries.Load(),
		DeliveryFailures: mm.deliveryFailures.Load(),
		DecodeFailures:   mm.decodeFailures.Load(),
		UnknownActions:   mm.unknownActions.Load(),
		Unregistered:     mm.unregistered.Load(),
		TextMessages:     mm.textMessages.Load(),
	}
}

// GetLatest builds a fresh snapshot. Process metrics are best effort:
// when the OS refuses them, the Go runtime figures are still reported.
func (mm *MonitoringManager) GetLatest(sessions SessionCounter) MonitoringStats {
	stats := MonitoringStats{
		Uptime:   time.Since(mm.startedAt).Truncate(time.Second).String(),
		Counters: mm.Counters(),
		Process:  mm.processStats(),
	}
	if sessions != nil {
		stats.LiveSessions = sessions.CurrentCount()
		stats.OpenedSessions = sessions.TotalOpened()
	}
	return stats
}

func (mm *MonitoringManager) processStats() ProcessStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	stats := ProcessStats{
		Pid:        int32(os.Getpid()),
		AllocMemMb: m.Alloc / 1024 / 1024,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}

	mm.procOnce.Do(func() {
		p, err := process.NewProcess(stats.Pid)
		if err != nil {
			mm.log.Warn("Process metrics unavailable", "error", err)
			return
		}
		mm.proc = p
	})
	if mm.proc == nil {
		return stats
	}

	if memInfo, err := mm.proc.MemoryInfo(); err == nil {
		stats.RamBytes = memInfo.RSS
	} else {
		mm.log.Debug("Failed to read process memory", "error", err)
	}
	if cpu, err := mm.proc.CPUPercent(); err == nil {
		stats.CpuPercent = cpu
	} else {
		mm.log.Debug("Failed to read process cpu", "error", err)
	}
	return stats
}
