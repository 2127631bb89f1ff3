package simulator

import (
	"sync"
	"testing"
)

func TestOutcomeTableIncrement(t *testing.T) {
	var tab OutcomeTable
	tab.Increment(7)
	tab.Increment(7)
	tab.Increment(200)

	if got := tab.Load(7); got != 2 {
		t.Errorf("slot 7 = %d, want 2", got)
	}
	if got := tab.Load(200); got != 1 {
		t.Errorf("slot 200 = %d, want 1", got)
	}
	if got := tab.Total(); got != 3 {
		t.Errorf("total = %d, want 3", got)
	}
}

func TestOutcomeTableConcurrentIncrements(t *testing.T) {
	const (
		workers   = 16
		perWorker = 10000
	)
	var tab OutcomeTable

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id Outcome) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				tab.Increment(id % 4) // contention on a few slots
			}
		}(Outcome(w))
	}
	wg.Wait()

	if got := tab.Total(); got != workers*perWorker {
		t.Errorf("total = %d, want %d (lost increments)", got, workers*perWorker)
	}
}

func TestSnapshotSortedNonzero(t *testing.T) {
	var tab OutcomeTable
	for _, id := range []Outcome{250, 3, 90, 3} {
		tab.Increment(id)
	}

	snap := tab.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot has %d entries, want 3", len(snap))
	}
	for i, oc := range snap {
		if oc.Count == 0 {
			t.Errorf("entry %d has zero count", i)
		}
		if i > 0 && snap[i-1].Outcome >= oc.Outcome {
			t.Errorf("snapshot not ordered: %d before %d", snap[i-1].Outcome, oc.Outcome)
		}
	}
	if snap[0].Outcome != 3 || snap[0].Count != 2 {
		t.Errorf("first entry = %+v, want outcome 3 count 2", snap[0])
	}
}

func TestReadIntoTruncates(t *testing.T) {
	var tab OutcomeTable
	for id := Outcome(0); id < 10; id++ {
		tab.Increment(id)
	}

	tests := []struct {
		name    string
		ids     int
		counts  int
		written int
	}{
		{"exact", 10, 10, 10},
		{"larger", 64, 64, 10},
		{"short ids", 4, 10, 4},
		{"short counts", 10, 4, 4},
		{"empty", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]Outcome, tt.ids)
			counts := make([]uint64, tt.counts)
			if got := tab.ReadInto(ids, counts); got != tt.written {
				t.Errorf("wrote %d entries, want %d", got, tt.written)
			}
		})
	}
}
