package scenario

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
	"github.com/dcsim/dcsim/sim/metrics"
	"github.com/dcsim/dcsim/sim/policy"
	"github.com/dcsim/dcsim/sim/trace"
	"github.com/dcsim/dcsim/sim/workload"
)

// DataCentreManager is the name of the manager holding the host pool.
const DataCentreManager = "dc"

// Build validates spec and wires a ready-to-run experiment. Hosts get IDs in
// declaration order; pinned VMs are placed and every host reports an initial
// status at tick 0.
func Build(spec *Spec) (*Experiment, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	s := sim.NewSimulation(spec.Seed)
	runID := uuid.New().String()
	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevel(spec.Trace)})
	collector, err := metrics.NewCollector(s, spec.MetricRecordStart, runID)
	if err != nil {
		return nil, err
	}
	s.AddObserver(collector)

	dc := host.NewDataCentre(s, spec.Step)
	dc.AddObserver(collector)
	if err := addHosts(dc, spec); err != nil {
		return nil, err
	}

	pool := management.NewHostPoolManager()
	dcManager := management.NewAutonomicManager(s, DataCentreManager, management.Capabilities{HostPool: pool})
	exp := &Experiment{
		ID:         runID,
		Spec:       spec,
		Sim:        s,
		DataCentre: dc,
		Manager:    dcManager,
		Pool:       pool,
		Collector:  collector,
		Trace:      tr,
	}

	for _, h := range dc.Hosts() {
		hm := management.NewAutonomicManager(s, fmt.Sprintf("host-%d", h.ID), management.Capabilities{Host: &management.HostManager{Host: h}})
		interval := spec.Policies.MonitoringInterval
		if err := hm.InstallPeriodicPolicy(policy.NewHostMonitoringPolicy(dcManager), interval, interval); err != nil {
			return nil, err
		}
		pool.AddHost(management.NewHostData(h, hm, spec.HistoryLength))
		exp.hostManagers = append(exp.hostManagers, hm)
	}

	placement := policy.NewPlacementPolicy(spec.Thresholds, tr)
	placement.StartupTime = spec.Policies.Placement.StartupTime
	if err := dcManager.InstallPolicy(&policy.HostStatusPolicy{}); err != nil {
		return nil, err
	}
	if err := dcManager.InstallPolicy(placement); err != nil {
		return nil, err
	}
	if r := spec.Policies.Relocation; r != nil {
		p := policy.NewRelocationPolicy(r.Strategy, spec.Thresholds, spec.MigrationBandwidth, tr)
		if err := dcManager.InstallPeriodicPolicy(p, r.Offset, r.Interval); err != nil {
			return nil, err
		}
	}
	if c := spec.Policies.Consolidation; c != nil {
		p := policy.NewConsolidationPolicy(c.Strategy, spec.Thresholds, spec.MigrationBandwidth, c.Suspend, tr)
		if err := dcManager.InstallPeriodicPolicy(p, c.Offset, c.Interval); err != nil {
			return nil, err
		}
	}

	if err := addVMs(exp); err != nil {
		return nil, err
	}
	for _, d := range pool.Hosts() {
		d.AddHostStatus(management.NewHostStatus(d.Host, 0))
	}

	logrus.WithFields(logrus.Fields{
		"run_id": runID, "hosts": len(dc.Hosts()), "seed": spec.Seed, "duration": spec.Duration,
	}).Info("scenario built")
	return exp, nil
}

func addHosts(dc *host.DataCentre, spec *Spec) error {
	types := make(map[string]*host.HostDescription, len(spec.HostTypes))
	for _, ht := range spec.HostTypes {
		pm, err := powerModel(ht.Power)
		if err != nil {
			return fmt.Errorf("host type %q: %w", ht.Name, err)
		}
		types[ht.Name] = &host.HostDescription{
			Name:         ht.Name,
			Cores:        ht.Cores,
			CoreCapacity: ht.CoreCapacity,
			Memory:       ht.Memory,
			Bandwidth:    ht.Bandwidth,
			Storage:      ht.Storage,
			PrivDomain:   ht.PrivDomain,
			Power:        pm,
			PowerOnTime:  ht.PowerOnTime,
			PowerOffTime: ht.PowerOffTime,
		}
	}
	for _, g := range spec.Hosts {
		state := initialStates[strings.ToLower(g.State)]
		for i := 0; i < g.Count; i++ {
			dc.AddHost(host.NewHost(len(dc.Hosts()), types[g.Type], state, nil))
		}
	}
	return nil
}

// addVMs places pinned VMs now and sends one placement request per arrival
// tick for the rest. VM IDs follow declaration order.
func addVMs(exp *Experiment) error {
	spec, s := exp.Spec, exp.Sim
	types := make(map[string]*host.VmDescription, len(spec.VMTypes))
	for _, vt := range spec.VMTypes {
		types[vt.Name] = &host.VmDescription{
			Name:         vt.Name,
			Cores:        vt.Cores,
			CoreCapacity: vt.CoreCapacity,
			Memory:       vt.Memory,
			Bandwidth:    vt.Bandwidth,
			Storage:      vt.Storage,
		}
	}

	arrivals := make(map[int64][]management.VmRequest)
	for _, g := range spec.VMs {
		desc := types[g.Type]
		for i := 0; i < g.Count; i++ {
			id := s.NextID("vm")
			source := workload.New(g.Demand, desc, g.Arrival, s.RNG().ForSubsystem(sim.SubsystemVM(id)))
			if g.Host == nil {
				arrivals[g.Arrival] = append(arrivals[g.Arrival], management.VmRequest{ID: id, Desc: desc, Source: source})
				continue
			}
			h := exp.DataCentre.Host(*g.Host)
			if h.State() != host.On {
				return fmt.Errorf("vm %d pinned to host %d which is %s", id, h.ID, h.State())
			}
			vm := host.NewVM(id, desc, source, 0)
			if err := h.CheckFits(vm); err != nil {
				return fmt.Errorf("pinning vm %d: %w", id, err)
			}
			if err := h.Place(vm, 0); err != nil {
				return fmt.Errorf("pinning vm %d: %w", id, err)
			}
		}
	}
	for _, h := range exp.DataCentre.Hosts() {
		if err := h.Schedule(); err != nil {
			return fmt.Errorf("initial schedule: %w", err)
		}
	}

	times := make([]int64, 0, len(arrivals))
	for at := range arrivals {
		times = append(times, at)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	for _, at := range times {
		e := management.NewPlacementRequestEvent(exp.Manager, arrivals[at])
		s.Send(e, at)
	}
	return nil
}
