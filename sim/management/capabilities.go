package management

import (
	"errors"
	"fmt"

	"github.com/dcsim/dcsim/sim/host"
)

// ErrMissingCapability is returned when a policy is installed on a manager
// that lacks a capability the policy needs.
var ErrMissingCapability = errors.New("missing capability")

// HostPoolManager is the capability of managing a pool of hosts.
type HostPoolManager struct {
	hosts []*HostData
	byID  map[int]*HostData
}

// NewHostPoolManager creates an empty pool.
func NewHostPoolManager() *HostPoolManager {
	return &HostPoolManager{byID: make(map[int]*HostData)}
}

// AddHost adds d to the pool.
func (p *HostPoolManager) AddHost(d *HostData) {
	if _, dup := p.byID[d.ID()]; dup {
		panic(fmt.Sprintf("HostPoolManager.AddHost: duplicate host id %d", d.ID()))
	}
	p.hosts = append(p.hosts, d)
	p.byID[d.ID()] = d
}

// Hosts returns the pool in insertion order.
func (p *HostPoolManager) Hosts() []*HostData {
	return p.hosts
}

// Host returns the data for host id, or nil.
func (p *HostPoolManager) Host(id int) *HostData {
	return p.byID[id]
}

// ResetSandboxes discards every host's working copy.
func (p *HostPoolManager) ResetSandboxes() {
	for _, d := range p.hosts {
		d.ResetSandbox()
	}
}

// HostManager is the capability of managing a single host.
type HostManager struct {
	Host *host.Host
}

// Capabilities is the fixed set of capabilities a manager is built with.
type Capabilities struct {
	HostPool *HostPoolManager
	Host     *HostManager
}

// RequireHostPool returns m's pool capability or ErrMissingCapability.
func RequireHostPool(m *AutonomicManager) (*HostPoolManager, error) {
	if m.caps.HostPool == nil {
		return nil, fmt.Errorf("%w: manager %q has no host pool", ErrMissingCapability, m.name)
	}
	return m.caps.HostPool, nil
}

// RequireHost returns m's host capability or ErrMissingCapability.
func RequireHost(m *AutonomicManager) (*HostManager, error) {
	if m.caps.Host == nil {
		return nil, fmt.Errorf("%w: manager %q has no host", ErrMissingCapability, m.name)
	}
	return m.caps.Host, nil
}
