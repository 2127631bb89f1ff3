// Package simulator provides the concurrent trial engine for battle-AI
// move sampling.
//
// A [Simulator] owns a loaded ROM/save-state pair and repeatedly runs
// independent trials against it, each trial producing one [Outcome]. Counts
// accumulate in an [OutcomeTable] of 256 lock-free counters, one per
// possible outcome byte:
//
//	sim, _ := simulator.New(rom, save, gen, simulator.Options{Trials: 1e6})
//	sim.Start(0) // 0 = all CPUs
//	...
//	sim.Stop()
//	for _, oc := range sim.Results() {
//	    fmt.Println(oc.Outcome, oc.Count)
//	}
//
// # Thread Safety
//
// All Simulator methods are safe for concurrent use. Results may be polled
// while trials are running; each counter is read atomically, but counters
// within one snapshot may reflect slightly different instants.
package simulator
