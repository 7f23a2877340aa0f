// Package metrics collects run statistics from a simulation.
//
// A Collector is both a sim.Observer, counting every signal the core emits,
// and a host.StepObserver, integrating power draw and CPU utilization across
// data-centre steps. Everything before the record start is ignored. Counters
// and gauges live in a Prometheus registry owned by the collector, which can
// be written out in the text exposition format; the end-of-run Report is
// built from plain fields so it is identical across runs with the same seed.
package metrics
