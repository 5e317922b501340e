// Package engine provides the order dispatch engine. It owns the pending
// order queue, the unit pool and the completed collection, pairs idle units
// with pending orders, simulates per-assignment progress on a pluggable
// scheduler, and returns in-flight orders to the queue when their unit is
// removed. All state is guarded by a single mutex so every mutation,
// including scheduler callbacks, is serialized.
package engine
