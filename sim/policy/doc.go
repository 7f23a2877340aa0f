// Package policy implements the data-centre management policies: host
// classification by CPU utilization, comparator chains and strategies that
// order sources, targets and candidate VMs, a first-fit matcher, and the
// relocation, consolidation, placement and host status policies built on
// them.
//
// Every decision works on HostData sandboxes. A policy resets all sandboxes,
// classifies the valid hosts, and for each match mutates the sandboxes of
// both hosts and invalidates them, so later matches in the same pass see the
// projected state and later passes skip hosts whose status is stale.
package policy
