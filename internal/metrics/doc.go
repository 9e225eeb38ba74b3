// Package metrics provides lock-free counters for engine observability.
//
// Counters live in cache-line-padded uint64 slots and are incremented
// atomically; the write path is allocation-free. Export (Prometheus text
// exposition) lives in httpapi and reads Snapshot values.
//
// This package must not perform I/O or import sibling packages.
package metrics
