package metrics

import (
	"fmt"
	"io"
	"sort"
)

// Report is the end-of-run summary of a Collector. It contains no wall-clock
// or run-specific values, so equal seeds give equal reports.
type Report struct {
	RecordStart   int64
	RecordedTicks int64

	Signals  map[string]int
	BySource map[string]map[string]int

	EnergyKWh      float64
	AvgPower       float64
	PeakPower      float64
	AvgActiveHosts float64
	MaxActiveHosts int

	// CPU utilization of powered-on hosts, weighted by time.
	AvgUtilization    float64
	UtilizationStdDev float64
	P95Utilization    float64

	MessagesPerHour float64
}

// Print writes the report in a fixed, human-readable layout.
func (r *Report) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Simulation Metrics ===")
	fmt.Fprintf(w, "Record Start         : %d ticks\n", r.RecordStart)
	fmt.Fprintf(w, "Recorded Time        : %d ticks\n", r.RecordedTicks)
	fmt.Fprintf(w, "Energy               : %.4f kWh\n", r.EnergyKWh)
	fmt.Fprintf(w, "Average Power        : %.2f W\n", r.AvgPower)
	fmt.Fprintf(w, "Peak Power           : %.2f W\n", r.PeakPower)
	fmt.Fprintf(w, "Average Active Hosts : %.2f\n", r.AvgActiveHosts)
	fmt.Fprintf(w, "Max Active Hosts     : %d\n", r.MaxActiveHosts)
	fmt.Fprintf(w, "CPU Utilization      : mean %.4f, stddev %.4f, p95 %.4f\n",
		r.AvgUtilization, r.UtilizationStdDev, r.P95Utilization)
	fmt.Fprintf(w, "Messages per Hour    : %.2f\n", r.MessagesPerHour)

	fmt.Fprintln(w, "=== Signals ===")
	for _, name := range sortedKeys(r.Signals) {
		fmt.Fprintf(w, "%-21s: %d\n", name, r.Signals[name])
	}
	if len(r.BySource) > 0 {
		fmt.Fprintln(w, "=== Signals by Source ===")
		for _, src := range sortedKeys(r.BySource) {
			counts := r.BySource[src]
			for _, name := range sortedKeys(counts) {
				fmt.Fprintf(w, "%s/%s: %d\n", src, name, counts[name])
			}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
