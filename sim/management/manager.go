package management

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/dcsim/dcsim/sim"
)

type installedPolicy struct {
	policy   Policy
	state    PolicyState
	offset   int64
	interval int64
	pending  *executePolicyEvent
}

func (p *installedPolicy) periodic() bool {
	return p.interval > 0
}

type executePolicyEvent struct {
	sim.BaseEvent
	policy *installedPolicy
}

type subscription struct {
	owner   *installedPolicy
	handler func(sim.Event)
}

// AutonomicManager hosts policies over a fixed set of capabilities. It is a
// sim.Listener: events sent to it are dispatched to the policies subscribed
// to their concrete type, in installation order.
//
// Thread-safety: NOT thread-safe.
type AutonomicManager struct {
	sim  *sim.Simulation
	name string
	caps Capabilities

	policies      []*installedPolicy
	byName        map[string]*installedPolicy
	subscriptions map[reflect.Type][]subscription
	installing    *installedPolicy
	executing     bool
	started       bool
	shutdown      bool
}

// NewAutonomicManager creates a manager with the given capabilities.
func NewAutonomicManager(s *sim.Simulation, name string, caps Capabilities) *AutonomicManager {
	return &AutonomicManager{
		sim:           s,
		name:          name,
		caps:          caps,
		byName:        make(map[string]*installedPolicy),
		subscriptions: make(map[reflect.Type][]subscription),
	}
}

// Name returns the manager's name.
func (m *AutonomicManager) Name() string {
	return m.name
}

// Simulation returns the simulation the manager runs in.
func (m *AutonomicManager) Simulation() *sim.Simulation {
	return m.sim
}

// Capabilities returns the manager's capabilities.
func (m *AutonomicManager) Capabilities() Capabilities {
	return m.caps
}

// InstallPolicy installs an event-driven policy. Policy names are unique per
// manager.
func (m *AutonomicManager) InstallPolicy(p Policy) error {
	return m.install(p, 0, 0)
}

// InstallPeriodicPolicy installs p to run offset ticks after the manager
// starts (or after installation, on a started manager) and then every
// interval ticks.
func (m *AutonomicManager) InstallPeriodicPolicy(p PeriodicPolicy, offset, interval int64) error {
	if interval <= 0 {
		panic(fmt.Sprintf("InstallPeriodicPolicy(%s): interval must be positive, got %d", p.Name(), interval))
	}
	if offset < 0 {
		panic(fmt.Sprintf("InstallPeriodicPolicy(%s): negative offset %d", p.Name(), offset))
	}
	return m.install(p, offset, interval)
}

func (m *AutonomicManager) install(p Policy, offset, interval int64) error {
	if m.shutdown {
		return fmt.Errorf("manager %q is shut down", m.name)
	}
	if _, dup := m.byName[p.Name()]; dup {
		return fmt.Errorf("manager %q already has a policy named %q", m.name, p.Name())
	}
	ip := &installedPolicy{policy: p, state: PolicyInstalled, offset: offset, interval: interval}
	m.installing = ip
	err := p.Install(m)
	m.installing = nil
	if err != nil {
		m.dropSubscriptions(ip)
		return fmt.Errorf("installing policy %q on %q: %w", p.Name(), m.name, err)
	}
	m.policies = append(m.policies, ip)
	m.byName[p.Name()] = ip
	if m.started {
		m.run(ip)
	}
	return nil
}

// Subscribe routes events of type E delivered to m to fn. It may only be
// called from a policy's Install.
func Subscribe[E sim.Event](m *AutonomicManager, fn func(E)) {
	if m.installing == nil {
		panic("management.Subscribe called outside Policy.Install")
	}
	t := reflect.TypeFor[E]()
	m.subscriptions[t] = append(m.subscriptions[t], subscription{
		owner:   m.installing,
		handler: func(e sim.Event) { fn(e.(E)) },
	})
}

// Start moves every installed policy to running, schedules periodic
// executions and calls OnManagerStart hooks.
func (m *AutonomicManager) Start() {
	if m.started || m.shutdown {
		return
	}
	m.started = true
	for _, ip := range m.policies {
		m.run(ip)
	}
}

func (m *AutonomicManager) run(ip *installedPolicy) {
	ip.state = PolicyRunning
	if h, ok := ip.policy.(ManagerStartHook); ok {
		h.OnManagerStart()
	}
	if ip.periodic() {
		m.scheduleExecution(ip, ip.offset)
	}
}

func (m *AutonomicManager) scheduleExecution(ip *installedPolicy, delay int64) {
	ip.pending = &executePolicyEvent{BaseEvent: sim.NewBaseEvent(m), policy: ip}
	m.sim.SendAfter(ip.pending, delay)
}

// PolicyState returns the lifecycle state of the named policy.
func (m *AutonomicManager) PolicyState(name string) (PolicyState, bool) {
	ip, ok := m.byName[name]
	if !ok {
		return 0, false
	}
	return ip.state, true
}

// StopPolicy stops the named policy and cancels its pending execution.
func (m *AutonomicManager) StopPolicy(name string) error {
	ip, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("manager %q has no policy named %q", m.name, name)
	}
	m.stop(ip)
	return nil
}

func (m *AutonomicManager) stop(ip *installedPolicy) {
	if ip.state == PolicyStopped {
		return
	}
	ip.state = PolicyStopped
	if ip.pending != nil {
		ip.pending.Cancel()
		ip.pending = nil
	}
}

// Shutdown stops every policy, calls OnManagerStop hooks and makes the
// manager drop all further events.
func (m *AutonomicManager) Shutdown() {
	if m.shutdown {
		return
	}
	for _, ip := range m.policies {
		m.stop(ip)
		if h, ok := ip.policy.(ManagerStopHook); ok {
			h.OnManagerStop()
		}
	}
	m.shutdown = true
	logrus.Debugf("[tick %07d] manager %s shut down", m.sim.Clock(), m.name)
}

// IsShutdown reports whether Shutdown was called.
func (m *AutonomicManager) IsShutdown() bool {
	return m.shutdown
}

// HandleEvent implements sim.Listener.
func (m *AutonomicManager) HandleEvent(e sim.Event) {
	if m.shutdown {
		logrus.Debugf("[tick %07d] manager %s is shut down, dropping %T", m.sim.Clock(), m.name, e)
		return
	}
	if m.executing {
		m.sim.Fatalf(sim.FatalOrdering, "manager %q re-entered while executing a policy", m.name)
	}
	m.executing = true
	defer func() { m.executing = false }()

	if pe, ok := e.(*executePolicyEvent); ok {
		ip := pe.policy
		if ip.state != PolicyRunning {
			return
		}
		ip.policy.(PeriodicPolicy).Execute()
		if ip.state == PolicyRunning {
			m.scheduleExecution(ip, ip.interval)
		}
		return
	}

	subs := m.subscriptions[reflect.TypeOf(e)]
	delivered := false
	for _, sub := range subs {
		if sub.owner.state != PolicyRunning {
			continue
		}
		sub.handler(e)
		delivered = true
	}
	if !delivered {
		logrus.Debugf("[tick %07d] manager %s has no running policy for %T", m.sim.Clock(), m.name, e)
	}
}

func (m *AutonomicManager) dropSubscriptions(ip *installedPolicy) {
	for t, subs := range m.subscriptions {
		kept := subs[:0]
		for _, s := range subs {
			if s.owner != ip {
				kept = append(kept, s)
			}
		}
		m.subscriptions[t] = kept
	}
}
