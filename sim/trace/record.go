// Package trace provides decision-trace recording for management policy analysis.
// The package depends on nothing else in the module; it stores plain data types.
package trace

// MigrationRecord captures a decision to migrate a VM.
type MigrationRecord struct {
	Clock      int64
	Policy     string
	VMID       int
	SourceHost int
	TargetHost int
	// PowerOn is set when the target had to be powered on first.
	PowerOn bool
	// TargetUtilization is the target's projected CPU utilization after the move.
	TargetUtilization float64
}

// ShutdownRecord captures a decision to power off or suspend a host.
type ShutdownRecord struct {
	Clock   int64
	Policy  string
	HostID  int
	Suspend bool
}

// PlacementRecord captures the outcome of placing one new VM.
type PlacementRecord struct {
	Clock  int64
	VMID   int
	HostID int // -1 when not placed
	Placed bool
}

// RejectionRecord captures a stressed or underutilized host for which no
// feasible target was found.
type RejectionRecord struct {
	Clock  int64
	Policy string
	HostID int
	Reason string
}
