package management

import "github.com/dcsim/dcsim/sim/host"

// DefaultHistoryLength bounds HostData history when none is configured.
const DefaultHistoryLength = 5

// HostData is what a pool manager knows about one host.
type HostData struct {
	Host    *host.Host
	Manager *AutonomicManager

	current          *HostStatus
	sandbox          *HostStatus
	history          []*HostStatus
	historyLength    int
	valid            bool
	invalidationTime int64
}

// NewHostData tracks h, managed by m, keeping up to historyLength statuses.
func NewHostData(h *host.Host, m *AutonomicManager, historyLength int) *HostData {
	if historyLength <= 0 {
		historyLength = DefaultHistoryLength
	}
	return &HostData{Host: h, Manager: m, historyLength: historyLength, invalidationTime: -1}
}

// ID returns the host's ID.
func (d *HostData) ID() int {
	return d.Host.ID
}

// Desc returns the host's description.
func (d *HostData) Desc() *host.HostDescription {
	return d.Host.Desc
}

// AddHostStatus records st as the current status. Statuses older than the
// current one are ignored. A status stamped after the last invalidation makes
// the data valid again, and any sandbox is discarded.
func (d *HostData) AddHostStatus(st *HostStatus) {
	if d.current != nil && st.Time < d.current.Time {
		return
	}
	d.current = st
	d.sandbox = nil
	d.history = append([]*HostStatus{st}, d.history...)
	if len(d.history) > d.historyLength {
		d.history = d.history[:d.historyLength]
	}
	if st.Time > d.invalidationTime {
		d.valid = true
	}
}

// CurrentStatus returns the last reported status, or nil before the first.
func (d *HostData) CurrentStatus() *HostStatus {
	return d.current
}

// History returns up to historyLength statuses, newest first.
func (d *HostData) History() []*HostStatus {
	return d.history
}

// Sandbox returns the working copy of the current status, creating it on
// first use. It returns nil before the first status.
func (d *HostData) Sandbox() *HostStatus {
	if d.sandbox == nil && d.current != nil {
		d.sandbox = d.current.Copy()
	}
	return d.sandbox
}

// ResetSandbox discards the working copy.
func (d *HostData) ResetSandbox() {
	d.sandbox = nil
}

// IsStatusValid reports whether the current status can be trusted.
func (d *HostData) IsStatusValid() bool {
	return d.valid && d.current != nil
}

// InvalidationTime is when the data was last invalidated, or -1.
func (d *HostData) InvalidationTime() int64 {
	return d.invalidationTime
}

// Invalidate marks the current status stale as of now.
func (d *HostData) Invalidate(now int64) {
	d.valid = false
	d.invalidationTime = now
}
