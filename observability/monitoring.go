package observability

import "sync/atomic"

// RelayStats is a point-in-time snapshot of the relay counters.
type RelayStats struct {
	MessagesStored    uint64 `json:"messages_stored"`
	BroadcastsSent    uint64 `json:"broadcasts_sent"`
	BroadcastFailures uint64 `json:"broadcast_failures"`
	HistoryClears     uint64 `json:"history_clears"`
	LiveConnections   int64  `json:"live_connections"`
}

// Monitor aggregates relay metrics. All counters are atomic; it is safe for
// concurrent use from sessions, the coordinator, and the telemetry worker.
type Monitor struct {
	messagesStored    uint64
	broadcastsSent    uint64
	broadcastFailures uint64
	historyClears     uint64
	liveConnections   int64
}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) IncrMessagesStored() {
	atomic.AddUint64(&m.messagesStored, 1)
}

func (m *Monitor) IncrBroadcastsSent() {
	atomic.AddUint64(&m.broadcastsSent, 1)
}

func (m *Monitor) IncrBroadcastFailures() {
	atomic.AddUint64(&m.broadcastFailures, 1)
}

func (m *Monitor) IncrHistoryClears() {
	atomic.AddUint64(&m.historyClears, 1)
}

func (m *Monitor) ConnectionOpened() {
	atomic.AddInt64(&m.liveConnections, 1)
}

func (m *Monitor) ConnectionClosed() {
	atomic.AddInt64(&m.liveConnections, -1)
}

func (m *Monitor) GetLatest() RelayStats {
	return RelayStats{
		MessagesStored:    atomic.LoadUint64(&m.messagesStored),
		BroadcastsSent:    atomic.LoadUint64(&m.broadcastsSent),
		BroadcastFailures: atomic.LoadUint64(&m.broadcastFailures),
		HistoryClears:     atomic.LoadUint64(&m.historyClears),
		LiveConnections:   atomic.LoadInt64(&m.liveConnections),
	}
}
