// Package management implements autonomic management: status snapshots and
// the HostData that tracks them, capability-based AutonomicManagers hosting
// policies, and the action framework through which policies change the data
// centre.
//
// # Status lifecycle
//
// A HostData holds the authoritative status of one host as last reported by
// a status event, a bounded newest-first history, and a sandbox: a working
// copy that a policy mutates while deciding. Once a policy commits to an
// action touching a host it invalidates that host's data; the data becomes
// valid again when a status stamped after the invalidation arrives.
//
// # Actions
//
// Primitive actions (migration, shutdown, power-on, instantiation) complete
// through simulation events and apply their effects only on completion.
// SequentialExecutor and ConcurrentExecutor compose actions and nest freely.
package management
