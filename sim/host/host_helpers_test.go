package host

// testHostDesc returns a 2-core host of 1250 units per core with a 500 unit
// privileged domain.
func testHostDesc() *HostDescription {
	return &HostDescription{
		Name:         "test",
		Cores:        2,
		CoreCapacity: 1250,
		Memory:       8192,
		Bandwidth:    1000,
		Storage:      10000,
		PrivDomain:   Resources{CPU: 500, Memory: 512},
		Power:        LinearPowerModel{Idle: 100, Max: 200},
		PowerOnTime:  1000,
		PowerOffTime: 500,
	}
}

var testVmDesc = &VmDescription{Name: "small", Cores: 1, CoreCapacity: 2000, Memory: 1024, Bandwidth: 100, Storage: 1024}

func newTestVM(id int, cpu int64) *VM {
	return NewVM(id, testVmDesc, StaticDemand(Resources{CPU: cpu, Memory: 1024, Bandwidth: 100, Storage: 1024}), 0)
}

func newOnHost(vms ...*VM) *Host {
	h := NewHost(0, testHostDesc(), On, nil)
	for _, vm := range vms {
		if err := h.Place(vm, 0); err != nil {
			panic(err)
		}
	}
	return h
}
