// Package metrics implements the in-process atomic counter system used by the
// session coordinator. Counters are fixed at compile time and lock-free; a
// disabled instance turns every operation into a no-op.
package metrics

import "sync/atomic"

// MetricID identifies one counter.
type MetricID uint16

const (
	MetricLinkRequested MetricID = iota
	MetricLinkRequestFailed
	MetricLinkVerified
	MetricLinkRejected
	MetricSecondFactorRequired
	MetricSecondFactorSetupRequired
	MetricSecondFactorSuccess
	MetricSecondFactorFailure
	MetricLoginSuccess
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricRefreshCoalesced
	MetricRefreshRotated
	MetricRestoreSuccess
	MetricRestoreFailure
	MetricLogout
	MetricRevokeFailed
	MetricBroadcastPublished
	MetricBroadcastPublishFailed
	MetricBroadcastApplied
	MetricBroadcastIgnored

	MetricIDCount
)

// Config controls metrics collection.
type Config struct {
	Enabled bool
}

// Metrics holds one atomic counter per MetricID.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
