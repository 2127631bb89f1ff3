package simulator

import "sync/atomic"

// NumOutcomes is the size of the outcome space: one slot per byte value.
const NumOutcomes = 256

// Outcome identifies one possible trial result (a move ID).
type Outcome uint8

// OutcomeCount pairs an outcome with its accumulated trial count.
type OutcomeCount struct {
	Outcome Outcome
	Count   uint64
}

// OutcomeTable aggregates trial outcomes into 256 monotonically increasing
// counters. Increment and Snapshot may be called from any number of
// goroutines at once; there is no table-wide lock, only per-slot atomics.
type OutcomeTable struct {
	slots [NumOutcomes]atomic.Uint64
}

// Increment adds one completed trial with the given outcome.
func (t *OutcomeTable) Increment(id Outcome) {
	t.slots[id].Add(1)
}

// Load returns the current count for a single outcome.
func (t *OutcomeTable) Load(id Outcome) uint64 {
	return t.slots[id].Load()
}

// Total returns the sum of all counters, i.e. the number of completed
// trials at some instant during the call.
func (t *OutcomeTable) Total() uint64 {
	var sum uint64
	for i := range t.slots {
		sum += t.slots[i].Load()
	}
	return sum
}

// Snapshot returns all outcomes with a nonzero count, ordered by outcome ID.
// Each count is read atomically; different slots may reflect slightly
// different instants while workers are still running.
func (t *OutcomeTable) Snapshot() []OutcomeCount {
	out := make([]OutcomeCount, 0, 8)
	for i := range t.slots {
		if n := t.slots[i].Load(); n > 0 {
			out = append(out, OutcomeCount{Outcome: Outcome(i), Count: n})
		}
	}
	return out
}

// ReadInto writes nonzero (outcome, count) pairs into the caller's buffers,
// ordered by outcome ID, stopping at the shorter buffer's capacity. It
// returns the number of entries written and never writes past either slice.
func (t *OutcomeTable) ReadInto(ids []Outcome, counts []uint64) int {
	limit := len(ids)
	if len(counts) < limit {
		limit = len(counts)
	}
	written := 0
	for i := range t.slots {
		if written == limit {
			break
		}
		if n := t.slots[i].Load(); n > 0 {
			ids[written] = Outcome(i)
			counts[written] = n
			written++
		}
	}
	return written
}
