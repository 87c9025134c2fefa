package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"chat-relay/observability"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically logs the relay counters together with the
// process's own memory and CPU figures. It is the loud heartbeat of the
// relay: a store outage or a leaking connection shows up here first.
type TelemetryWorker struct {
	log      *slog.Logger
	monitor  *observability.Monitor
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, monitor *observability.Monitor,
	interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, monitor: monitor, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting relay telemetry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			stats := w.monitor.GetLatest()
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			w.log.Info("Relay stats",
				"live_connections", stats.LiveConnections,
				"messages_stored", stats.MessagesStored,
				"broadcasts_sent", stats.BroadcastsSent,
				"broadcast_failures", stats.BroadcastFailures,
				"history_clears", stats.HistoryClears,
				"rss_mb", rss/1024/1024,
				"cpu_percent", cpu,
			)
		}
	}
}

// selfStats retrieves memory and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
