package management

import (
	"reflect"

	"github.com/dcsim/dcsim/sim"
	"github.com/dcsim/dcsim/sim/host"
)

func testHostDesc() *host.HostDescription {
	return &host.HostDescription{
		Name:         "test",
		Cores:        2,
		CoreCapacity: 1250,
		Memory:       8192,
		Bandwidth:    1000,
		Storage:      10000,
		PrivDomain:   host.Resources{CPU: 500, Memory: 512},
		Power:        host.LinearPowerModel{Idle: 100, Max: 200},
		PowerOnTime:  1000,
		PowerOffTime: 500,
	}
}

var testVmDesc = &host.VmDescription{Name: "small", Cores: 1, CoreCapacity: 1000, Memory: 1024, Bandwidth: 100, Storage: 1024}

func newTestVM(id int, cpu int64) *host.VM {
	return host.NewVM(id, testVmDesc, host.StaticDemand{CPU: cpu, Memory: 1024, Bandwidth: 100, Storage: 1024}, 0)
}

func newTestHost(id int, state host.PowerState, vms ...*host.VM) *host.Host {
	h := host.NewHost(id, testHostDesc(), state, nil)
	for _, vm := range vms {
		if err := h.Place(vm, 0); err != nil {
			panic(err)
		}
	}
	if err := h.Schedule(); err != nil {
		panic(err)
	}
	return h
}

// signalLog records every signal emitted.
type signalLog struct {
	signals []sim.Signal
}

func (l *signalLog) Observe(sig sim.Signal, _ string) {
	l.signals = append(l.signals, sig)
}

func (l *signalLog) count(sig sim.Signal) int {
	n := 0
	for _, s := range l.signals {
		if s == sig {
			n++
		}
	}
	return n
}

// timedAction records when it completed.
func timedAction(name string, d int64, log *[]string, at *[]int64, s *sim.Simulation) *FuncAction {
	return &FuncAction{Name: name, Duration: d, Fn: func() error {
		*log = append(*log, name)
		*at = append(*at, s.Clock())
		return nil
	}}
}

func typeOfStatusEvent() reflect.Type {
	return reflect.TypeFor[*HostStatusEvent]()
}
