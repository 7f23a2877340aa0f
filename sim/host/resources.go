package host

import "fmt"

// Dimension names one axis of a Resources vector.
type Dimension string

const (
	CPU       Dimension = "cpu"
	Memory    Dimension = "memory"
	Bandwidth Dimension = "bandwidth"
	Storage   Dimension = "storage"
)

// Dimensions lists every resource dimension in a fixed order.
var Dimensions = []Dimension{CPU, Memory, Bandwidth, Storage}

// Resources is a non-negative amount of each resource dimension.
// CPU is in capacity units (cores × core capacity), memory in MB,
// bandwidth in KB/s and storage in MB.
type Resources struct {
	CPU       int64 `yaml:"cpu"`
	Memory    int64 `yaml:"memory"`
	Bandwidth int64 `yaml:"bandwidth"`
	Storage   int64 `yaml:"storage"`
}

// Get returns the amount along dimension d.
func (r Resources) Get(d Dimension) int64 {
	switch d {
	case CPU:
		return r.CPU
	case Memory:
		return r.Memory
	case Bandwidth:
		return r.Bandwidth
	case Storage:
		return r.Storage
	}
	panic(fmt.Sprintf("unknown resource dimension %q", d))
}

// Add returns r + o.
func (r Resources) Add(o Resources) Resources {
	return Resources{
		CPU:       r.CPU + o.CPU,
		Memory:    r.Memory + o.Memory,
		Bandwidth: r.Bandwidth + o.Bandwidth,
		Storage:   r.Storage + o.Storage,
	}
}

// Subtract returns r - o with every dimension clamped at zero.
func (r Resources) Subtract(o Resources) Resources {
	return Resources{
		CPU:       max(r.CPU-o.CPU, 0),
		Memory:    max(r.Memory-o.Memory, 0),
		Bandwidth: max(r.Bandwidth-o.Bandwidth, 0),
		Storage:   max(r.Storage-o.Storage, 0),
	}
}

// Fits reports whether r is no larger than capacity along every dimension.
func (r Resources) Fits(capacity Resources) bool {
	return r.CPU <= capacity.CPU &&
		r.Memory <= capacity.Memory &&
		r.Bandwidth <= capacity.Bandwidth &&
		r.Storage <= capacity.Storage
}

// Min returns the element-wise minimum of r and o.
func (r Resources) Min(o Resources) Resources {
	return Resources{
		CPU:       min(r.CPU, o.CPU),
		Memory:    min(r.Memory, o.Memory),
		Bandwidth: min(r.Bandwidth, o.Bandwidth),
		Storage:   min(r.Storage, o.Storage),
	}
}

// IsZero reports whether every dimension is zero.
func (r Resources) IsZero() bool {
	return r == Resources{}
}

func (r Resources) String() string {
	return fmt.Sprintf("cpu=%d mem=%d bw=%d sto=%d", r.CPU, r.Memory, r.Bandwidth, r.Storage)
}
