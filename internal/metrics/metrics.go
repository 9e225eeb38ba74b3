package metrics

import "sync/atomic"

// MetricID identifies one counter slot.
type MetricID uint8

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricSessionCreated
	MetricSessionRevoked
	MetricSessionExpired
	MetricCSRFRejected
	MetricPermissionDenied
	MetricPasswordChangeSuccess
	MetricPasswordChangeInvalidOld
	MetricUserCreated
	MetricUserDeleted
	MetricPermissionsUpdated
	MetricBootstrapProvisioned

	MetricIDCount
)

// Config controls metric collection. When Enabled is false all operations
// are no-ops.
type Config struct {
	Enabled bool
}

// counters are padded to a cache line each so concurrent increments of
// different metrics never contend.
type paddedCounter struct {
	value atomic.Uint64
	_     [56]byte
}

// Metrics holds lock-free counters for the engine.
type Metrics struct {
	enabled  bool
	counters [MetricIDCount]paddedCounter
}

func New(cfg Config) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	m.counters[id].value.Add(1)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].value.Load()
	}
	return snap
}
