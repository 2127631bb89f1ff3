package simulator

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// Construction errors.
var (
	ErrEmptyROM       = errors.New("simulator: empty rom image")
	ErrEmptySaveState = errors.New("simulator: empty save state")
	ErrNoGenerator    = errors.New("simulator: no outcome generator")
)

// LoadedState is the immutable ROM + save-state pair trials run against.
// The buffers are copied at construction and shared read-only by all
// workers afterwards; callers must not modify the returned slices.
type LoadedState struct {
	rom  []byte
	save []byte
}

// ROM returns the ROM image bytes.
func (s LoadedState) ROM() []byte { return s.rom }

// SaveState returns the save-state bytes.
func (s LoadedState) SaveState() []byte { return s.save }

// Generator produces the outcome of a single trial. Implementations must be
// safe for concurrent use by many workers and should honor ctx cancellation
// promptly so that Stop is not delayed by a long trial. The engine assumes a
// generator is total for valid state: a non-nil error terminates the
// calling worker without counting the trial.
type Generator interface {
	Trial(ctx context.Context, state LoadedState, seed uint64) (Outcome, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, state LoadedState, seed uint64) (Outcome, error)

func (f GeneratorFunc) Trial(ctx context.Context, state LoadedState, seed uint64) (Outcome, error) {
	return f(ctx, state, seed)
}

// Options configures a Simulator at construction.
type Options struct {
	// Trials caps the total number of trials across all runs of this
	// Simulator. Zero means unbounded: trials continue until Stop.
	Trials uint64

	// Seed is the base of per-trial seed derivation. Zero draws a random
	// run seed.
	Seed uint64
}

// Lifecycle states.
const (
	stateIdle int32 = iota
	stateRunning
	stateStopped
)

// Simulator runs stochastic trials against a loaded game state on a pool of
// workers and accumulates per-outcome counts. The zero value is not usable;
// construct with New.
//
// Lifecycle: idle → Start → running → Stop (or budget exhaustion) → stopped.
// A stopped Simulator may be started again and continues accumulating into
// the same table. Starting an already-running Simulator is a caller bug and
// panics.
type Simulator struct {
	loaded LoadedState
	gen    Generator

	table     OutcomeTable
	budget    *TrialBudget
	completed atomic.Uint64
	seq       atomic.Uint64
	seed      uint64

	mu      sync.Mutex // guards lifecycle transitions
	state   atomic.Int32
	stop    atomic.Bool
	live    atomic.Int32
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	threads int
	closed  bool
}

// New constructs an idle Simulator over the given ROM and save-state bytes.
// The buffers are copied; validation beyond non-emptiness is the outcome
// generator's concern and surfaces through its constructor.
func New(rom, save []byte, gen Generator, opts Options) (*Simulator, error) {
	if len(rom) == 0 {
		return nil, ErrEmptyROM
	}
	if len(save) == 0 {
		return nil, ErrEmptySaveState
	}
	if gen == nil {
		return nil, ErrNoGenerator
	}

	budget := UnboundedBudget()
	if opts.Trials > 0 {
		budget = BoundedBudget(opts.Trials)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = randomSeed()
	}

	s := &Simulator{
		loaded: LoadedState{
			rom:  append([]byte(nil), rom...),
			save: append([]byte(nil), save...),
		},
		gen:    gen,
		budget: budget,
		seed:   seed,
	}
	return s, nil
}

// Start spawns threads workers and transitions to running. A thread count
// of zero resolves to the number of available CPUs. Start panics if the
// Simulator is already running or has been closed; that is a caller bug,
// not a recoverable condition.
func (s *Simulator) Start(threads int) {
	if threads < 0 {
		panic("simulator: negative thread count")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		panic("simulator: already closed")
	}
	if s.state.Load() == stateRunning {
		panic("simulator: already running")
	}
	// A naturally terminated run may still have workers between the state
	// flip and their final WaitGroup release; let them drain first.
	s.wg.Wait()

	if threads == 0 {
		threads = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.threads = threads
	s.stop.Store(false)
	s.live.Store(int32(threads))
	s.state.Store(stateRunning)

	for i := 0; i < threads; i++ {
		s.wg.Add(1)
		go s.work(ctx, cancel)
	}
}

// Stop raises the cooperative cancellation flag and blocks until every
// worker has exited. It is idempotent and a no-op on an idle or already
// stopped Simulator; results are unchanged in that case.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Simulator) stopLocked() {
	if s.state.Load() != stateRunning {
		s.wg.Wait() // drain stragglers from natural termination
		return
	}
	s.stop.Store(true)
	s.cancel()
	s.wg.Wait()
	s.state.Store(stateStopped)
}

// Close stops the Simulator if running and invalidates it. Further Start
// calls panic; results remain readable.
func (s *Simulator) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.closed = true
}

// IsRunning reports whether workers are currently active. Non-blocking.
func (s *Simulator) IsRunning() bool {
	return s.state.Load() == stateRunning
}

// Threads returns the worker count of the most recent run.
func (s *Simulator) Threads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threads
}

// TrialCount returns the number of trials completed so far.
func (s *Simulator) TrialCount() uint64 {
	return s.completed.Load()
}

// Remaining reports the unclaimed trial budget and whether a ceiling was
// set at all.
func (s *Simulator) Remaining() (uint64, bool) {
	return s.budget.Remaining()
}

// State returns the loaded ROM/save-state pair.
func (s *Simulator) State() LoadedState {
	return s.loaded
}

// Results returns the current nonzero outcome counts ordered by outcome ID.
// Safe to call at any time, including while trials are running; it never
// blocks worker progress. After Stop the returned snapshot is final and
// identical across calls.
func (s *Simulator) Results() []OutcomeCount {
	return s.table.Snapshot()
}

// ResultsInto writes the current nonzero outcome counts into the caller's
// buffers, truncating at the shorter buffer's length, and returns the
// number of entries written. It never writes past either slice.
func (s *Simulator) ResultsInto(ids []Outcome, counts []uint64) int {
	return s.table.ReadInto(ids, counts)
}

// work is one worker's trial loop: claim a trial, run the generator,
// record the outcome. The claim happens before the generator runs, so a
// bounded budget yields exactly that many generator invocations; the
// increment happens before the trial counts as complete, so the table sum
// never exceeds completed trials.
func (s *Simulator) work(ctx context.Context, cancel context.CancelFunc) {
	defer s.wg.Done()
	for {
		if s.stop.Load() {
			break
		}
		if !s.budget.Claim() {
			break
		}
		seed := splitmix64(s.seed + s.seq.Add(1))
		id, err := s.gen.Trial(ctx, s.loaded, seed)
		if err != nil {
			// Cancelled mid-trial, or the generator broke its contract.
			// Either way nothing was counted for this claim.
			break
		}
		s.table.Increment(id)
		s.completed.Add(1)
	}
	if s.live.Add(-1) == 0 {
		// Last worker out flips the state so natural exhaustion is
		// observable without an explicit Stop, and releases the run's
		// context.
		s.state.CompareAndSwap(stateRunning, stateStopped)
		cancel()
	}
}
