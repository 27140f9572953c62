// Package metrics implements the six process-wide counters spec §3 requires
// RequestMetrics to report, plus an optional Prometheus exporter.
package metrics

import "sync/atomic"

// Snapshot is an immutable copy of the counters at one instant. Metrics
// never hands out the live struct: every reader gets its own copy so a
// RequestMetrics response can't race a concurrent increment.
type Snapshot struct {
	CurrentClients      uint32
	HistoricClients      uint64
	ClientBytesSent      uint64
	ClientBytesReceived  uint64
	CurrentManagers      uint32
	HistoricManagers     uint64
}

// Metrics holds the live counters as atomics so the hot path (byte metering
// on every relay chunk) never takes a lock.
type Metrics struct {
	currentClients     atomic.Uint32
	historicClients    atomic.Uint64
	clientBytesSent    atomic.Uint64
	clientBytesReceived atomic.Uint64
	currentManagers    atomic.Uint32
	historicManagers   atomic.Uint64
}

// New returns a zeroed Metrics.
func New() *Metrics {
	return &Metrics{}
}

// ClientConnected records a newly accepted SOCKS5 client: current is
// balanced (incremented here, decremented in ClientDisconnected), historic
// only ever grows.
func (m *Metrics) ClientConnected() {
	m.currentClients.Add(1)
	m.historicClients.Add(1)
}

// ClientDisconnected balances a prior ClientConnected.
func (m *Metrics) ClientDisconnected() {
	m.currentClients.Add(^uint32(0))
}

// AddBytesSent accumulates bytes relayed client->destination.
func (m *Metrics) AddBytesSent(n uint64) {
	if n == 0 {
		return
	}
	m.clientBytesSent.Add(n)
}

// AddBytesReceived accumulates bytes relayed destination->client.
func (m *Metrics) AddBytesReceived(n uint64) {
	if n == 0 {
		return
	}
	m.clientBytesReceived.Add(n)
}

// ManagerConnected records a newly accepted Sandstorm session.
func (m *Metrics) ManagerConnected() {
	m.currentManagers.Add(1)
	m.historicManagers.Add(1)
}

// ManagerDisconnected balances a prior ManagerConnected.
func (m *Metrics) ManagerDisconnected() {
	m.currentManagers.Add(^uint32(0))
}

// Snapshot copies every counter's current value.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		CurrentClients:      m.currentClients.Load(),
		HistoricClients:     m.historicClients.Load(),
		ClientBytesSent:     m.clientBytesSent.Load(),
		ClientBytesReceived: m.clientBytesReceived.Load(),
		CurrentManagers:     m.currentManagers.Load(),
		HistoricManagers:    m.historicManagers.Load(),
	}
}
