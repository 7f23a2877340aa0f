package scenario

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
	"github.com/dcsim/dcsim/sim/metrics"
	"github.com/dcsim/dcsim/sim/trace"
)

// Experiment is a built scenario ready to run once.
type Experiment struct {
	// ID identifies this run in logs and exported metrics. It is random and
	// never part of the Report.
	ID         string
	Spec       *Spec
	Sim        *sim.Simulation
	DataCentre *host.DataCentre
	Manager    *management.AutonomicManager
	Pool       *management.HostPoolManager
	Collector  *metrics.Collector
	Trace      *trace.SimulationTrace

	hostManagers []*management.AutonomicManager
	ran          bool
}

// Run starts the data centre and every manager, then simulates up to the
// scenario duration.
func (e *Experiment) Run() error {
	if e.ran {
		return fmt.Errorf("experiment %s already ran", e.ID)
	}
	e.ran = true
	e.DataCentre.Start()
	e.Manager.Start()
	for _, m := range e.hostManagers {
		m.Start()
	}
	logrus.WithField("run_id", e.ID).Infof("running until tick %d", e.Spec.Duration)
	if err := e.Sim.Run(e.Spec.Duration); err != nil {
		return fmt.Errorf("run %s: %w", e.ID, err)
	}
	logrus.WithFields(logrus.Fields{
		"run_id": e.ID, "events": e.Sim.Delivered(),
	}).Info("simulation complete")
	return nil
}

// Result is the deterministic outcome of a run.
type Result struct {
	Seed     int64
	Duration int64
	Hosts    int
	VMs      int
	Metrics  *metrics.Report
	Trace    *trace.TraceSummary // nil when tracing is off
}

// Report summarizes the run.
func (e *Experiment) Report() *Result {
	vms := 0
	for _, h := range e.DataCentre.Hosts() {
		vms += len(h.VMs())
	}
	r := &Result{
		Seed:     e.Spec.Seed,
		Duration: e.Spec.Duration,
		Hosts:    len(e.DataCentre.Hosts()),
		VMs:      vms,
		Metrics:  e.Collector.Report(),
	}
	if e.Trace != nil {
		r.Trace = trace.Summarize(e.Trace)
	}
	return r
}

// Print writes the result.
func (r *Result) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Scenario ===")
	fmt.Fprintf(w, "Seed                 : %d\n", r.Seed)
	fmt.Fprintf(w, "Duration             : %d ticks\n", r.Duration)
	fmt.Fprintf(w, "Hosts                : %d\n", r.Hosts)
	fmt.Fprintf(w, "Running VMs          : %d\n", r.VMs)
	r.Metrics.Print(w)
	if r.Trace != nil {
		fmt.Fprintln(w, "=== Decisions ===")
		fmt.Fprintf(w, "Total Decisions      : %d\n", r.Trace.TotalDecisions)
		fmt.Fprintf(w, "Migrations           : %d (%d behind a power-on)\n", r.Trace.Migrations, r.Trace.PowerOns)
		fmt.Fprintf(w, "Shutdowns            : %d\n", r.Trace.Shutdowns)
		fmt.Fprintf(w, "Placements           : %d placed, %d failed\n", r.Trace.Placed, r.Trace.PlacementFailures)
		fmt.Fprintf(w, "Rejections           : %d\n", r.Trace.Rejections)
		fmt.Fprintf(w, "Unique Targets       : %d\n", r.Trace.UniqueTargets)
	}
}
