package simulator

import "sync/atomic"

// TrialBudget governs how many trials remain to be claimed. A budget is
// either unbounded (claims always succeed) or bounded by a fixed ceiling
// supplied at creation. Claims are atomic: no trial is ever claimed twice
// and a bounded budget is never observed negative.
type TrialBudget struct {
	bounded   bool
	remaining atomic.Int64
}

// UnboundedBudget returns a budget whose claims always succeed.
func UnboundedBudget() *TrialBudget {
	return &TrialBudget{}
}

// BoundedBudget returns a budget allowing exactly n claims.
func BoundedBudget(n uint64) *TrialBudget {
	b := &TrialBudget{bounded: true}
	b.remaining.Store(int64(n))
	return b
}

// Claim attempts to reserve one trial. It reports false once a bounded
// budget is exhausted; the claiming worker should then exit its loop.
func (b *TrialBudget) Claim() bool {
	if !b.bounded {
		return true
	}
	for {
		r := b.remaining.Load()
		if r <= 0 {
			return false
		}
		if b.remaining.CompareAndSwap(r, r-1) {
			return true
		}
	}
}

// Remaining reports how many claims are left and whether the budget is
// bounded at all.
func (b *TrialBudget) Remaining() (uint64, bool) {
	if !b.bounded {
		return 0, false
	}
	r := b.remaining.Load()
	if r < 0 {
		r = 0
	}
	return uint64(r), true
}
