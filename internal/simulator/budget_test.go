package simulator

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestBoundedBudgetExactClaims(t *testing.T) {
	const (
		ceiling = 100000
		workers = 32
	)
	b := BoundedBudget(ceiling)

	var claimed atomic.Uint64
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b.Claim() {
				claimed.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := claimed.Load(); got != ceiling {
		t.Errorf("claimed %d trials, want exactly %d", got, ceiling)
	}
	if r, bounded := b.Remaining(); !bounded || r != 0 {
		t.Errorf("remaining = %d bounded=%v, want 0 true", r, bounded)
	}
	if b.Claim() {
		t.Error("claim succeeded on an exhausted budget")
	}
}

func TestUnboundedBudget(t *testing.T) {
	b := UnboundedBudget()
	for i := 0; i < 1000; i++ {
		if !b.Claim() {
			t.Fatal("unbounded claim failed")
		}
	}
	if _, bounded := b.Remaining(); bounded {
		t.Error("unbounded budget reports bounded")
	}
}

func TestZeroBudget(t *testing.T) {
	b := BoundedBudget(0)
	if b.Claim() {
		t.Error("claim succeeded on a zero budget")
	}
}
