// Package host models the physical side of the data centre: resource
// vectors, host and VM descriptions, power states and power models, the
// fair-share resource scheduler, and the DataCentre step driver that refreshes
// VM demand and reschedules every powered-on host at a fixed interval.
//
// Hosts change power state and VM ownership only through the Begin*/Complete*
// methods called by management actions; nothing here decides when to do so.
package host
