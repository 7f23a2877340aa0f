package host

// HostDescription is the static hardware profile shared by hosts of one type.
type HostDescription struct {
	Name         string
	Cores        int
	CoreCapacity int64
	Memory       int64
	Bandwidth    int64
	Storage      int64
	// PrivDomain is the fixed demand of the privileged domain (the VMM).
	PrivDomain   Resources
	Power        PowerModel
	PowerOnTime  int64
	PowerOffTime int64
}

// Capacity returns the total resources of the host.
func (d *HostDescription) Capacity() Resources {
	return Resources{
		CPU:       int64(d.Cores) * d.CoreCapacity,
		Memory:    d.Memory,
		Bandwidth: d.Bandwidth,
		Storage:   d.Storage,
	}
}

// Efficiency is CPU capacity per watt at full load. Hosts without a power
// model have efficiency 0.
func (d *HostDescription) Efficiency() float64 {
	if d.Power == nil || d.Power.MaxPower() <= 0 {
		return 0
	}
	return float64(d.Capacity().CPU) / d.Power.MaxPower()
}

// VmDescription is the static size of a VM.
type VmDescription struct {
	Name         string
	Cores        int
	CoreCapacity int64
	Memory       int64
	Bandwidth    int64
	Storage      int64
}

// MaxResources is the largest demand a VM of this description can express.
func (d *VmDescription) MaxResources() Resources {
	return Resources{
		CPU:       int64(d.Cores) * d.CoreCapacity,
		Memory:    d.Memory,
		Bandwidth: d.Bandwidth,
		Storage:   d.Storage,
	}
}
