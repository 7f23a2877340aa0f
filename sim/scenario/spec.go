package scenario

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/management"
	"github.com/dcsim/dcsim/sim/policy"
	"github.com/dcsim/dcsim/sim/trace"
	"github.com/dcsim/dcsim/sim/workload"
)

// Defaults applied by Load for fields left at zero.
const (
	DefaultStep               = sim.Minute
	DefaultMonitoringInterval = 5 * sim.Minute
	DefaultMigrationBandwidth = 100 // MB/s
	DefaultPolicyInterval     = 10 * sim.Minute
)

// Spec is the top-level scenario configuration.
// Loaded from YAML via Load(path) or Parse(data).
type Spec struct {
	Seed               int64             `yaml:"seed"`
	Duration           int64             `yaml:"duration"`
	Step               int64             `yaml:"step,omitempty"`
	MetricRecordStart  int64             `yaml:"metric_record_start,omitempty"`
	HistoryLength      int               `yaml:"history_length,omitempty"`
	MigrationBandwidth int64             `yaml:"migration_bandwidth,omitempty"`
	Thresholds         policy.Thresholds `yaml:"thresholds"`
	Trace              string            `yaml:"trace,omitempty"`
	HostTypes          []HostTypeSpec    `yaml:"host_types"`
	Hosts              []HostGroupSpec   `yaml:"hosts"`
	VMTypes            []VMTypeSpec      `yaml:"vm_types"`
	VMs                []VMGroupSpec     `yaml:"vms"`
	Policies           PoliciesSpec      `yaml:"policies"`
}

// HostTypeSpec describes one kind of physical host.
type HostTypeSpec struct {
	Name         string         `yaml:"name"`
	Cores        int            `yaml:"cores"`
	CoreCapacity int64          `yaml:"core_capacity"`
	Memory       int64          `yaml:"memory"`
	Bandwidth    int64          `yaml:"bandwidth"`
	Storage      int64          `yaml:"storage"`
	PrivDomain   host.Resources `yaml:"priv_domain"`
	Power        PowerSpec      `yaml:"power"`
	PowerOnTime  int64          `yaml:"power_on_time"`
	PowerOffTime int64          `yaml:"power_off_time"`
}

// PowerSpec selects a host power model: "linear" between idle and max, or
// "spec" through eleven measured points at 0%, 10%, ... 100% utilization.
type PowerSpec struct {
	Model  string    `yaml:"model"`
	Idle   float64   `yaml:"idle,omitempty"`
	Max    float64   `yaml:"max,omitempty"`
	Points []float64 `yaml:"points,omitempty"`
}

// HostGroupSpec instantiates Count hosts of a type in an initial power state
// (on, off or suspended; default on).
type HostGroupSpec struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
	State string `yaml:"state,omitempty"`
}

// VMTypeSpec describes one kind of VM.
type VMTypeSpec struct {
	Name         string `yaml:"name"`
	Cores        int    `yaml:"cores"`
	CoreCapacity int64  `yaml:"core_capacity"`
	Memory       int64  `yaml:"memory"`
	Bandwidth    int64  `yaml:"bandwidth"`
	Storage      int64  `yaml:"storage"`
}

// VMGroupSpec creates Count VMs of a type. With Host set they run on that
// host from tick 0; otherwise they are submitted for placement at Arrival.
type VMGroupSpec struct {
	Type    string              `yaml:"type"`
	Count   int                 `yaml:"count"`
	Host    *int                `yaml:"host,omitempty"`
	Arrival int64               `yaml:"arrival,omitempty"`
	Demand  workload.DemandSpec `yaml:"demand"`
}

// PoliciesSpec configures the data-centre manager. Placement always runs;
// relocation and consolidation run only when configured.
type PoliciesSpec struct {
	Placement          PlacementSpec      `yaml:"placement,omitempty"`
	Relocation         *PeriodicSpec      `yaml:"relocation,omitempty"`
	Consolidation      *ConsolidationSpec `yaml:"consolidation,omitempty"`
	MonitoringInterval int64              `yaml:"monitoring_interval,omitempty"`
}

// PlacementSpec configures VM placement.
type PlacementSpec struct {
	StartupTime int64 `yaml:"startup_time,omitempty"`
}

// PeriodicSpec configures a periodic policy.
type PeriodicSpec struct {
	Strategy string `yaml:"strategy,omitempty"`
	Offset   int64  `yaml:"offset,omitempty"`
	Interval int64  `yaml:"interval,omitempty"`
}

// ConsolidationSpec configures consolidation. With Suspend set, emptied hosts
// are suspended instead of powered off.
type ConsolidationSpec struct {
	PeriodicSpec `yaml:",inline"`
	Suspend      bool `yaml:"suspend,omitempty"`
}

// Load reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML scenario strictly and fills in defaults. It does not
// validate; call Validate.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	spec.applyDefaults()
	return &spec, nil
}

func (s *Spec) applyDefaults() {
	if s.Step == 0 {
		s.Step = DefaultStep
	}
	if s.HistoryLength == 0 {
		s.HistoryLength = management.DefaultHistoryLength
	}
	if s.MigrationBandwidth == 0 {
		s.MigrationBandwidth = DefaultMigrationBandwidth
	}
	if s.Policies.MonitoringInterval == 0 {
		s.Policies.MonitoringInterval = DefaultMonitoringInterval
	}
	if r := s.Policies.Relocation; r != nil && r.Interval == 0 {
		r.Interval = DefaultPolicyInterval
	}
	if c := s.Policies.Consolidation; c != nil && c.Interval == 0 {
		c.Interval = DefaultPolicyInterval
	}
}

var initialStates = map[string]host.PowerState{"": host.On, "on": host.On, "off": host.Off, "suspended": host.Suspended}

// Validate checks names, references and ranges.
func (s *Spec) Validate() error {
	if s.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %d", s.Duration)
	}
	if s.Step <= 0 {
		return fmt.Errorf("step must be positive, got %d", s.Step)
	}
	if s.MetricRecordStart < 0 || s.MetricRecordStart > s.Duration {
		return fmt.Errorf("metric_record_start must be in [0, duration], got %d", s.MetricRecordStart)
	}
	if s.HistoryLength < 1 {
		return fmt.Errorf("history_length must be at least 1, got %d", s.HistoryLength)
	}
	if s.MigrationBandwidth <= 0 {
		return fmt.Errorf("migration_bandwidth must be positive, got %d", s.MigrationBandwidth)
	}
	if err := s.Thresholds.Validate(); err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}
	if !trace.IsValidTraceLevel(s.Trace) {
		return fmt.Errorf("unknown trace level %q; valid: none, decisions", s.Trace)
	}

	hostTypes := make(map[string]*HostTypeSpec, len(s.HostTypes))
	for i := range s.HostTypes {
		ht := &s.HostTypes[i]
		if err := validateHostType(ht, i); err != nil {
			return err
		}
		if _, dup := hostTypes[ht.Name]; dup {
			return fmt.Errorf("host_types[%d]: duplicate name %q", i, ht.Name)
		}
		hostTypes[ht.Name] = ht
	}
	hostCount := 0
	for i, g := range s.Hosts {
		if _, ok := hostTypes[g.Type]; !ok {
			return fmt.Errorf("hosts[%d]: unknown host type %q", i, g.Type)
		}
		if g.Count < 1 {
			return fmt.Errorf("hosts[%d]: count must be positive, got %d", i, g.Count)
		}
		if _, ok := initialStates[strings.ToLower(g.State)]; !ok {
			return fmt.Errorf("hosts[%d]: unknown state %q; valid: on, off, suspended", i, g.State)
		}
		hostCount += g.Count
	}
	if hostCount == 0 {
		return fmt.Errorf("at least one host required")
	}

	vmTypes := make(map[string]bool, len(s.VMTypes))
	for i, vt := range s.VMTypes {
		if vt.Name == "" {
			return fmt.Errorf("vm_types[%d]: name required", i)
		}
		if vt.Cores < 1 || vt.CoreCapacity <= 0 {
			return fmt.Errorf("vm_types[%d]: cores and core_capacity must be positive", i)
		}
		if vt.Memory < 0 || vt.Bandwidth < 0 || vt.Storage < 0 {
			return fmt.Errorf("vm_types[%d]: memory, bandwidth and storage must be non-negative", i)
		}
		if vmTypes[vt.Name] {
			return fmt.Errorf("vm_types[%d]: duplicate name %q", i, vt.Name)
		}
		vmTypes[vt.Name] = true
	}
	for i, g := range s.VMs {
		prefix := fmt.Sprintf("vms[%d]", i)
		if !vmTypes[g.Type] {
			return fmt.Errorf("%s: unknown vm type %q", prefix, g.Type)
		}
		if g.Count < 1 {
			return fmt.Errorf("%s: count must be positive, got %d", prefix, g.Count)
		}
		if g.Arrival < 0 {
			return fmt.Errorf("%s: arrival must be non-negative, got %d", prefix, g.Arrival)
		}
		if g.Host != nil {
			if *g.Host < 0 || *g.Host >= hostCount {
				return fmt.Errorf("%s: host %d out of range [0, %d)", prefix, *g.Host, hostCount)
			}
			if g.Arrival != 0 {
				return fmt.Errorf("%s: VMs pinned to a host start at tick 0, got arrival %d", prefix, g.Arrival)
			}
		}
		if err := g.Demand.Validate(prefix + ".demand"); err != nil {
			return err
		}
	}

	p := s.Policies
	if p.MonitoringInterval <= 0 {
		return fmt.Errorf("policies.monitoring_interval must be positive, got %d", p.MonitoringInterval)
	}
	if p.Placement.StartupTime < 0 {
		return fmt.Errorf("policies.placement.startup_time must be non-negative, got %d", p.Placement.StartupTime)
	}
	if r := p.Relocation; r != nil {
		if !policy.ValidRelocationStrategies[r.Strategy] {
			return fmt.Errorf("policies.relocation: unknown strategy %q; valid: %s", r.Strategy,
				strings.Join(policy.StrategyNames(policy.ValidRelocationStrategies), ", "))
		}
		if err := validatePeriodic("policies.relocation", *r); err != nil {
			return err
		}
	}
	if c := p.Consolidation; c != nil {
		if !policy.ValidConsolidationStrategies[c.Strategy] {
			return fmt.Errorf("policies.consolidation: unknown strategy %q; valid: %s", c.Strategy,
				strings.Join(policy.StrategyNames(policy.ValidConsolidationStrategies), ", "))
		}
		if err := validatePeriodic("policies.consolidation", c.PeriodicSpec); err != nil {
			return err
		}
	}
	return nil
}

func validateHostType(ht *HostTypeSpec, idx int) error {
	prefix := fmt.Sprintf("host_types[%d]", idx)
	if ht.Name == "" {
		return fmt.Errorf("%s: name required", prefix)
	}
	if ht.Cores < 1 || ht.CoreCapacity <= 0 {
		return fmt.Errorf("%s: cores and core_capacity must be positive", prefix)
	}
	if ht.Memory <= 0 || ht.Bandwidth <= 0 || ht.Storage <= 0 {
		return fmt.Errorf("%s: memory, bandwidth and storage must be positive", prefix)
	}
	if ht.PowerOnTime < 0 || ht.PowerOffTime < 0 {
		return fmt.Errorf("%s: power_on_time and power_off_time must be non-negative", prefix)
	}
	capacity := host.Resources{CPU: int64(ht.Cores) * ht.CoreCapacity, Memory: ht.Memory, Bandwidth: ht.Bandwidth, Storage: ht.Storage}
	if !ht.PrivDomain.Fits(capacity) {
		return fmt.Errorf("%s: priv_domain %s exceeds capacity %s", prefix, ht.PrivDomain, capacity)
	}
	if _, err := powerModel(ht.Power); err != nil {
		return fmt.Errorf("%s.power: %w", prefix, err)
	}
	return nil
}

func validatePeriodic(prefix string, p PeriodicSpec) error {
	if p.Offset < 0 {
		return fmt.Errorf("%s.offset must be non-negative, got %d", prefix, p.Offset)
	}
	if p.Interval <= 0 {
		return fmt.Errorf("%s.interval must be positive, got %d", prefix, p.Interval)
	}
	return nil
}

// powerModel builds the model a PowerSpec names.
func powerModel(p PowerSpec) (host.PowerModel, error) {
	switch p.Model {
	case "", "linear":
		if p.Idle < 0 || p.Max < p.Idle {
			return nil, fmt.Errorf("linear model needs 0 <= idle <= max, got idle=%g max=%g", p.Idle, p.Max)
		}
		return host.LinearPowerModel{Idle: p.Idle, Max: p.Max}, nil
	case "spec":
		m, err := host.NewSPECPowerModel(p.Points)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown power model %q; valid: linear, spec", p.Model)
}
