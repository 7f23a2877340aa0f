package metrics

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
)

// Metric names exported by a Collector.
const (
	SignalsTotal     = "dcsim_signals_total"
	EnergyJoules     = "dcsim_energy_joules_total"
	PowerWatts       = "dcsim_power_watts"
	ActiveHosts      = "dcsim_active_hosts"
	CPUUtilization   = "dcsim_cpu_utilization"
	SimulatedSeconds = "dcsim_simulated_seconds_total"

	LabelSignal = "signal"
	LabelSource = "source"
	LabelRunID  = "run_id"
)

// sample is the state of the data centre after one step. It holds until the
// next step. utilization is the mean over powered-on hosts.
type sample struct {
	power       float64
	active      int
	utilization float64
}

// Collector records signals and step samples of one simulation.
//
// Thread-safety: NOT thread-safe.
type Collector struct {
	sim         *sim.Simulation
	recordStart int64
	registry    *prometheus.Registry

	signals     *prometheus.CounterVec
	energy      prometheus.Counter
	power       prometheus.Gauge
	active      prometheus.Gauge
	utilization prometheus.Gauge
	simulated   prometheus.Counter

	counts     map[sim.Signal]int
	bySource   map[string]map[sim.Signal]int
	last       *sample
	recorded   int64
	joules     float64
	peakPower  float64
	maxActive  int
	utilValues []float64
	utilWeight []float64
	actValues  []float64
	actWeight  []float64
}

// NewCollector creates a collector that ignores everything before
// recordStart. runID, if non-empty, labels every exported metric.
func NewCollector(s *sim.Simulation, recordStart int64, runID string) (*Collector, error) {
	c := &Collector{
		sim:         s,
		recordStart: recordStart,
		registry:    prometheus.NewRegistry(),
		counts:      make(map[sim.Signal]int),
		bySource:    make(map[string]map[sim.Signal]int),
	}
	c.signals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: SignalsTotal,
		Help: "Signals emitted by the simulation core, by signal and source",
	}, []string{LabelSignal, LabelSource})
	c.energy = prometheus.NewCounter(prometheus.CounterOpts{
		Name: EnergyJoules,
		Help: "Energy drawn by all hosts since the record start",
	})
	c.power = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: PowerWatts,
		Help: "Total power draw after the last step",
	})
	c.active = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: ActiveHosts,
		Help: "Number of powered-on hosts after the last step",
	})
	c.utilization = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: CPUUtilization,
		Help: "Mean CPU utilization of powered-on hosts after the last step",
	})
	c.simulated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: SimulatedSeconds,
		Help: "Virtual time recorded",
	})

	var reg prometheus.Registerer = c.registry
	if runID != "" {
		reg = prometheus.WrapRegistererWith(prometheus.Labels{LabelRunID: runID}, reg)
	}
	for _, m := range []prometheus.Collector{c.signals, c.energy, c.power, c.active, c.utilization, c.simulated} {
		if err := reg.Register(m); err != nil {
			return nil, fmt.Errorf("registering metric: %w", err)
		}
	}
	return c, nil
}

// Registry returns the registry holding the collector's metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe implements sim.Observer.
func (c *Collector) Observe(signal sim.Signal, source string) {
	if c.sim.Clock() < c.recordStart {
		return
	}
	c.counts[signal]++
	if c.bySource[source] == nil {
		c.bySource[source] = make(map[sim.Signal]int)
	}
	c.bySource[source][signal]++
	c.signals.WithLabelValues(string(signal), source).Inc()
}

// ObserveStep implements host.StepObserver. The state sampled at the
// previous step is charged for the elapsed interval, clipped to the record
// start; then the current state is sampled.
func (c *Collector) ObserveStep(now, elapsed int64, hosts []*host.Host) {
	from := max(now-elapsed, c.recordStart)
	if c.last != nil && now > from {
		c.charge(*c.last, now-from)
	}

	cur := sample{}
	var util float64
	for _, h := range hosts {
		cur.power += h.Power()
		if h.State() == host.On {
			cur.active++
			util += h.CPUUtilization()
		}
	}
	if cur.active > 0 {
		cur.utilization = util / float64(cur.active)
	}
	c.last = &cur

	c.power.Set(cur.power)
	c.active.Set(float64(cur.active))
	c.utilization.Set(cur.utilization)
	if now >= c.recordStart {
		c.peakPower = max(c.peakPower, cur.power)
		c.maxActive = max(c.maxActive, cur.active)
	}
}

func (c *Collector) charge(s sample, ticks int64) {
	seconds := float64(ticks) / float64(sim.Second)
	c.recorded += ticks
	c.joules += s.power * seconds
	c.energy.Add(s.power * seconds)
	c.simulated.Add(seconds)
	c.actValues = append(c.actValues, float64(s.active))
	c.actWeight = append(c.actWeight, float64(ticks))
	if s.active > 0 {
		c.utilValues = append(c.utilValues, s.utilization)
		c.utilWeight = append(c.utilWeight, float64(ticks))
	}
}

// Count returns how many times signal was observed since the record start.
func (c *Collector) Count(signal sim.Signal) int {
	return c.counts[signal]
}

// Report summarizes the run so far.
func (c *Collector) Report() *Report {
	r := &Report{
		RecordStart:    c.recordStart,
		RecordedTicks:  c.recorded,
		Signals:        make(map[string]int, len(c.counts)),
		BySource:       make(map[string]map[string]int, len(c.bySource)),
		EnergyKWh:      c.joules / 3.6e6,
		PeakPower:      c.peakPower,
		MaxActiveHosts: c.maxActive,
	}
	for s, n := range c.counts {
		r.Signals[string(s)] = n
	}
	for src, counts := range c.bySource {
		m := make(map[string]int, len(counts))
		for s, n := range counts {
			m[string(s)] = n
		}
		r.BySource[src] = m
	}
	if c.recorded > 0 {
		r.AvgPower = c.joules / (float64(c.recorded) / float64(sim.Second))
		r.AvgActiveHosts = stat.Mean(c.actValues, c.actWeight)
	}
	if len(c.utilValues) > 0 {
		r.AvgUtilization = stat.Mean(c.utilValues, c.utilWeight)
		r.P95Utilization = weightedQuantile(0.95, c.utilValues, c.utilWeight)
	}
	if len(c.utilValues) > 1 {
		r.UtilizationStdDev = stat.StdDev(c.utilValues, c.utilWeight)
	}
	if n := r.Signals[string(sim.SignalMessageSent)]; n > 0 && c.recorded > 0 {
		r.MessagesPerHour = float64(n) / (float64(c.recorded) / float64(sim.Hour))
	}
	logrus.Debugf("metrics report over %d ticks: %d signal kinds", c.recorded, len(r.Signals))
	return r
}

// weightedQuantile sorts a copy of values with their weights and returns the
// empirical p-quantile.
func weightedQuantile(p float64, values, weights []float64) float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	x := make([]float64, len(values))
	w := make([]float64, len(values))
	for i, j := range idx {
		x[i] = values[j]
		w[i] = weights[j]
	}
	return stat.Quantile(p, stat.Empirical, x, w)
}

// WriteToTextfile writes the registry in the Prometheus text format to path.
func (c *Collector) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
