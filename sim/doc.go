// Package sim provides the discrete-event simulation kernel for dcsim.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - event.go: the Event interface, BaseEvent, listeners, callbacks and cancellation
//   - event_queue.go: the (time, send order) priority queue
//   - simulation.go: the clock, Send/SendAfter and the Run loop
//
// # Architecture
//
// The sim package is the leaf of the module; everything else builds on it:
//   - sim/host/: resources, hosts, VMs, the fair-share resource scheduler and
//     the data-centre step driver
//   - sim/management/: host status snapshots, HostData, autonomic managers,
//     policy lifecycle and the action execution framework
//   - sim/policy/: host classification and the placement, relocation and
//     consolidation policies
//   - sim/metrics/: a Prometheus-backed collector fed by simulation signals
//   - sim/trace/: decision trace recording
//   - sim/workload/: VM demand sources
//   - sim/scenario/: YAML scenarios and the experiment builder
//
// # Determinism
//
// Virtual time is an int64 tick count (one tick is one millisecond by
// convention). Events due at the same tick are delivered in the order they
// were sent. All randomness flows from a PartitionedRNG seeded once per
// Simulation, so a fixed seed and fixed policy set reproduce a run exactly.
//
// Nothing in the kernel is safe for concurrent use; a Simulation is driven
// from a single goroutine.
package sim
