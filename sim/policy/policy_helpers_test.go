package policy

import (
	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
	"github.com/dcsim/dcsim/sim/internal/testutil"
	"github.com/dcsim/dcsim/sim/management"
)

var testThresholds = Thresholds{Lower: 0.3, Upper: 0.85, Target: 0.85}

var testVmDesc = &host.VmDescription{Name: "vm", Cores: 1, CoreCapacity: 1250, Memory: 1024, Bandwidth: 100, Storage: 1024}

// fixture is a small data centre with a pool manager whose HostData holds a
// status of every host taken at tick 0.
type fixture struct {
	sim     *sim.Simulation
	manager *management.AutonomicManager
	pool    *management.HostPoolManager
	hosts   []*host.Host
	data    []*management.HostData
	signals map[sim.Signal]int
	nextVM  int
}

func newFixture() *fixture {
	s := sim.NewSimulation(1)
	pool := management.NewHostPoolManager()
	f := &fixture{
		sim:     s,
		pool:    pool,
		manager: management.NewAutonomicManager(s, "dc", management.Capabilities{HostPool: pool}),
		signals: make(map[sim.Signal]int),
	}
	s.AddObserver(f)
	return f
}

func (f *fixture) Observe(sig sim.Signal, _ string) {
	f.signals[sig]++
}

// addHost adds a host in the given state running VMs with the given CPU demands.
func (f *fixture) addHost(state host.PowerState, cpu ...int64) *management.HostData {
	h := host.NewHost(len(f.hosts), testutil.HostDesc(), state, nil)
	for _, c := range cpu {
		vm := host.NewVM(f.nextVM, testVmDesc, host.StaticDemand{CPU: c, Memory: 1024, Bandwidth: 100, Storage: 1024}, 0)
		f.nextVM++
		if err := h.Place(vm, 0); err != nil {
			panic(err)
		}
	}
	if err := h.Schedule(); err != nil {
		panic(err)
	}
	d := management.NewHostData(h, nil, 5)
	d.AddHostStatus(management.NewHostStatus(h, 0))
	f.hosts = append(f.hosts, h)
	f.data = append(f.data, d)
	f.pool.AddHost(d)
	return d
}

// statusWithUtilization builds an ON status with one VM and the given
// utilization of the reference test host's 2500 CPU units.
func statusWithUtilization(id int, at int64, u float64) *management.HostStatus {
	return &management.HostStatus{
		ID:    id,
		Time:  at,
		State: host.On,
		InUse: host.Resources{CPU: int64(u * 2500)},
		VMs:   []management.VmStatus{{ID: 99, Desc: testVmDesc}},
	}
}
