package management

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcsim/dcsim/sim/host"
)

func TestNewHostStatus_SnapshotsHost(t *testing.T) {
	h := newTestHost(3, host.On, newTestVM(1, 700), newTestVM(2, 300))
	h.BeginMigrationOut()

	st := NewHostStatus(h, 42)

	assert.Equal(t, 3, st.ID)
	assert.Equal(t, int64(42), st.Time)
	assert.Equal(t, host.On, st.State)
	assert.Equal(t, int64(1500), st.InUse.CPU, "privileged domain included")
	assert.Equal(t, 1, st.Outgoing)
	require.Len(t, st.VMs, 2)
	assert.Equal(t, int64(700), st.VMs[0].InUse.CPU)
}

func TestHostStatus_MigrateMovesLoadAndWakesTarget(t *testing.T) {
	src := NewHostStatus(newTestHost(0, host.On, newTestVM(1, 700)), 0)
	dst := NewHostStatus(newTestHost(1, host.Off), 0)
	vm := src.VMs[0]

	src.Migrate(vm, dst)

	assert.Empty(t, src.VMs)
	assert.Equal(t, int64(500), src.InUse.CPU)
	assert.Equal(t, 1, src.Outgoing)
	assert.Equal(t, int64(700), dst.InUse.CPU)
	assert.Equal(t, 1, dst.Incoming)
	assert.Equal(t, host.PoweringOn, dst.State)
}

func TestHostStatus_CopyIsDeep(t *testing.T) {
	st := NewHostStatus(newTestHost(0, host.On, newTestVM(1, 100)), 0)
	c := st.Copy()
	c.VMs[0].InUse.CPU = 9999
	assert.Equal(t, int64(100), st.VMs[0].InUse.CPU)
}

func TestCanHost(t *testing.T) {
	desc := testHostDesc()
	st := NewHostStatus(newTestHost(0, host.On, newTestVM(1, 1000)), 0)

	fits := VmStatus{ID: 2, Desc: testVmDesc, InUse: host.Resources{CPU: 1000, Memory: 1024}}
	assert.True(t, CanHost(fits, st, desc))

	tooMuchCPU := VmStatus{ID: 3, Desc: testVmDesc, InUse: host.Resources{CPU: 1001}}
	assert.False(t, CanHost(tooMuchCPU, st, desc))

	wideVM := VmStatus{ID: 4, Desc: &host.VmDescription{Cores: 4, CoreCapacity: 100}}
	assert.False(t, CanHost(wideVM, st, desc), "more cores than the host")

	fastCore := VmStatus{ID: 5, Desc: &host.VmDescription{Cores: 1, CoreCapacity: 2000}}
	assert.False(t, CanHost(fastCore, st, desc), "core faster than the host's")
}

func TestCanHost_CountsPrivilegedDomainOfHostNotYetOn(t *testing.T) {
	// GIVEN an OFF host with 8192 memory and a 512 privileged domain
	desc := testHostDesc()
	st := NewHostStatus(newTestHost(0, host.Off), 0)
	require.Zero(t, st.InUse.Memory)

	// WHEN a VM fits only if the privileged domain is ignored
	big := VmStatus{ID: 1, Desc: testVmDesc, InUse: host.Resources{CPU: 100, Memory: 8000}}
	small := VmStatus{ID: 2, Desc: testVmDesc, InUse: host.Resources{CPU: 100, Memory: 7680}}

	// THEN it is refused, while one that fits beside the domain is accepted
	assert.False(t, CanHost(big, st, desc))
	assert.True(t, CanHost(small, st, desc))

	// AND a sandbox already woken by an earlier move keeps counting the domain
	st.State = host.PoweringOn
	assert.False(t, CanHost(big, st, desc))
}
