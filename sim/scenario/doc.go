// Package scenario loads YAML scenario files and builds runnable experiments.
//
// A scenario names host and VM types, instantiates groups of them, and
// configures the management policies of the data centre. Build wires the
// result into a simulation: one data-centre manager holding the host pool and
// the placement, relocation and consolidation policies, plus one manager per
// host that reports its status periodically.
//
//	spec, err := scenario.Load("scenario.yaml")
//	exp, err := scenario.Build(spec)
//	err = exp.Run()
//	exp.Report().Print(os.Stdout)
package scenario
