package sim

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SimulationKey is the master seed of a run. Two runs with the same key and
// scenario make identical decisions and reports.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// SubsystemVM names the demand stream of the VM with the given ID.
func SubsystemVM(id int) string {
	return fmt.Sprintf("vm_%d", id)
}

// PartitionedRNG hands out one independent stream per named subsystem, so
// adding a VM or drawing more from one VM's stream never shifts another's.
// Each stream is seeded with key XOR fnv1a64(name).
//
// Not safe for concurrent use.
type PartitionedRNG struct {
	key     SimulationKey
	streams map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{key: key, streams: make(map[string]*rand.Rand)}
}

// ForSubsystem returns the stream for name, creating it on first use.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if r, ok := p.streams[name]; ok {
		return r
	}
	r := rand.New(rand.NewSource(int64(p.key) ^ fnv1a64(name)))
	p.streams[name] = r
	return r
}

// Key returns the master seed.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
