package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})

	// WHEN summarized
	summary := Summarize(st)

	// THEN all counts are zero
	assert.Zero(t, summary.TotalDecisions)
	assert.Zero(t, summary.UniqueTargets)
	assert.Empty(t, summary.TargetDistribution)
}

func TestSummarize_NilTrace(t *testing.T) {
	summary := Summarize(nil)
	assert.NotNil(t, summary.TargetDistribution)
	assert.Zero(t, summary.Migrations)
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with every kind of record
	st := NewSimulationTrace(TraceConfig{Level: TraceLevelDecisions})
	st.RecordMigration(MigrationRecord{VMID: 1, SourceHost: 0, TargetHost: 2})
	st.RecordMigration(MigrationRecord{VMID: 2, SourceHost: 1, TargetHost: 3, PowerOn: true})
	st.RecordShutdown(ShutdownRecord{HostID: 0})
	st.RecordPlacement(PlacementRecord{VMID: 4, HostID: 2, Placed: true})
	st.RecordPlacement(PlacementRecord{VMID: 5, HostID: -1})
	st.RecordRejection(RejectionRecord{HostID: 7, Reason: "no target"})

	// WHEN summarized
	summary := Summarize(st)

	// THEN counts match
	assert.Equal(t, 2, summary.Migrations)
	assert.Equal(t, 1, summary.PowerOns)
	assert.Equal(t, 1, summary.Shutdowns)
	assert.Equal(t, 1, summary.Placed)
	assert.Equal(t, 1, summary.PlacementFailures)
	assert.Equal(t, 1, summary.Rejections)
	assert.Equal(t, 6, summary.TotalDecisions)
	assert.Equal(t, 2, summary.UniqueTargets)
	assert.Equal(t, map[int]int{2: 2, 3: 1}, summary.TargetDistribution)
}
