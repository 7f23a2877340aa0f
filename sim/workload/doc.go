// Package workload provides the demand sources that drive VM resource usage.
//
// A demand source answers host.DemandSource: the resources a VM wants at a
// given tick. Sources are pure functions of time except GaussianWalk, which
// draws from its own RNG stream and advances only at interval boundaries, so
// asking for the same tick twice never consumes randomness.
//
// Scenario files describe demand with DemandSpec; New turns a spec into a
// source for one VM.
package workload
