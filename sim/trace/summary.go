package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions     int
	Migrations         int
	PowerOns           int
	Shutdowns          int
	Placed             int
	PlacementFailures  int
	Rejections         int
	UniqueTargets      int
	TargetDistribution map[int]int // host ID → count of VMs migrated or placed onto it
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		TargetDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.Migrations = len(st.Migrations)
	for _, m := range st.Migrations {
		summary.TargetDistribution[m.TargetHost]++
		if m.PowerOn {
			summary.PowerOns++
		}
	}
	summary.Shutdowns = len(st.Shutdowns)
	for _, p := range st.Placements {
		if p.Placed {
			summary.Placed++
			summary.TargetDistribution[p.HostID]++
		} else {
			summary.PlacementFailures++
		}
	}
	summary.Rejections = len(st.Rejections)

	summary.TotalDecisions = summary.Migrations + summary.Shutdowns + len(st.Placements) + summary.Rejections
	summary.UniqueTargets = len(summary.TargetDistribution)

	return summary
}
