package scenario

import "github.com/dcsim/dcsim/sim/policy"

const testYAML = `
seed: 7
duration: 3600000
step: 60000
thresholds: {lower: 0.3, upper: 0.85, target: 0.85}
trace: decisions
host_types:
  - name: small
    cores: 2
    core_capacity: 1250
    memory: 8192
    bandwidth: 10000
    storage: 100000
    priv_domain: {cpu: 500, memory: 512}
    power: {model: linear, idle: 100, max: 200}
    power_on_time: 1000
    power_off_time: 500
hosts:
  - {type: small, count: 2}
  - {type: small, count: 1, state: off}
vm_types:
  - {name: vm, cores: 1, core_capacity: 1250, memory: 1024, bandwidth: 100, storage: 1024}
vms:
  - {type: vm, count: 1, host: 0, demand: {cpu: 200}}
  - {type: vm, count: 2, arrival: 120000, demand: {kind: gaussian, cpu: 600, stddev: 50}}
policies:
  relocation: {strategy: balanced, offset: 600000, interval: 600000}
  consolidation: {offset: 900000, interval: 900000}
  monitoring_interval: 300000
`

// validSpec returns a minimal valid spec for mutation in table tests.
func validSpec() *Spec {
	one := 0
	s := &Spec{
		Duration:   3600000,
		Thresholds: policy.Thresholds{Lower: 0.3, Upper: 0.85, Target: 0.85},
		HostTypes: []HostTypeSpec{{
			Name: "small", Cores: 2, CoreCapacity: 1250, Memory: 8192, Bandwidth: 10000, Storage: 100000,
			Power: PowerSpec{Model: "linear", Idle: 100, Max: 200},
		}},
		Hosts:   []HostGroupSpec{{Type: "small", Count: 2}},
		VMTypes: []VMTypeSpec{{Name: "vm", Cores: 1, CoreCapacity: 1250, Memory: 1024}},
		VMs:     []VMGroupSpec{{Type: "vm", Count: 1, Host: &one}},
	}
	s.applyDefaults()
	return s
}
