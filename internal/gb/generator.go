package gb

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/san-kum/loreleisim/internal/simulator"
)

// Generator drives emulator cores to produce one AI move decision per
// trial. It implements simulator.Generator and is safe for concurrent use:
// each in-flight trial holds its own Core, recycled through an idle pool.
//
// The first trials advance the save state frame by frame until the game
// reads its RNG registers for the first time; that position is cached so
// later trials skip straight to the decision point.
type Generator struct {
	game    Game
	model   Model
	probe   Probe
	factory CoreFactory

	mu        sync.Mutex
	baseState []byte
	trained   bool
	idle      []Core
}

// NewGenerator validates the ROM and save state and binds a registered
// emulator core factory. An empty coreName selects the sole registered
// core; with none registered the error is ErrNoCore.
func NewGenerator(rom, save []byte, coreName string) (*Generator, error) {
	game, err := DetectGame(rom)
	if err != nil {
		return nil, err
	}
	model, err := DetectModel(save)
	if err != nil {
		return nil, err
	}
	factory, err := lookupCore(coreName)
	if err != nil {
		return nil, err
	}
	return &Generator{
		game:    game,
		model:   model,
		probe:   ProbeFor(game),
		factory: factory,
	}, nil
}

// Game returns the detected game.
func (g *Generator) Game() Game { return g.game }

// Model returns the detected hardware model.
func (g *Generator) Model() Model { return g.model }

// Trial runs the emulator from the cached decision point until the enemy
// AI commits a move, returning its ID. RNG register reads are answered
// with randomness derived from seed, so concurrent trials never collide.
func (g *Generator) Trial(ctx context.Context, state simulator.LoadedState, seed uint64) (simulator.Outcome, error) {
	core, err := g.getCore(state.ROM())
	if err != nil {
		return 0, err
	}
	defer g.putCore(core)

	start := g.startState(state.SaveState())
	if err := core.LoadState(start); err != nil {
		return 0, err
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))

	var (
		rngHit   bool
		decision byte
	)
	core.SetHooks(Hooks{
		Read: func(addr uint16, data byte) (byte, bool) {
			if addr == g.probe.RNGLow || addr == g.probe.RNGHigh {
				rngHit = true
				return byte(rng.Uint32()), true
			}
			return data, false
		},
		Write: func(addr uint16, data byte) bool {
			if addr == g.probe.DecisionAddr && data != 0 {
				if !g.probe.CheckSignature {
					decision = data
				} else if pc := core.PC(); pc > 0x4000 {
					if g.probe.MatchSignature(core.CodeAt(pc, signatureLen)) {
						decision = data
					}
				}
			}
			return true
		},
	})
	defer core.SetHooks(Hooks{})

	var (
		rapidFire byte
		oddFrame  bool
		candidate = start
		trained   = g.isTrained()
	)
	for decision == 0 {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}

		if !trained {
			if rngHit {
				// First RNG register read: the snapshot taken just
				// before it is the best starting point for every
				// subsequent trial.
				g.train(candidate)
				trained = true
			} else {
				candidate = core.SaveState()
			}
		}

		// Mash A half the frames to advance through any remaining
		// dialogue until the AI acts.
		if oddFrame != core.OddFrame() {
			rapidFire = (rapidFire + 1) % 6
			core.SetButtonA(rapidFire < 3)
			oddFrame = !oddFrame
		}

		core.Step()
	}
	return simulator.Outcome(decision), nil
}

func (g *Generator) getCore(rom []byte) (Core, error) {
	g.mu.Lock()
	if n := len(g.idle); n > 0 {
		c := g.idle[n-1]
		g.idle = g.idle[:n-1]
		g.mu.Unlock()
		return c, nil
	}
	g.mu.Unlock()
	return g.factory.NewCore(g.model, rom)
}

func (g *Generator) putCore(c Core) {
	g.mu.Lock()
	g.idle = append(g.idle, c)
	g.mu.Unlock()
}

func (g *Generator) isTrained() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.trained
}

func (g *Generator) train(state []byte) {
	g.mu.Lock()
	if !g.trained && len(state) > 0 {
		g.baseState = state
		g.trained = true
	}
	g.mu.Unlock()
}

func (g *Generator) startState(fallback []byte) []byte {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.trained {
		return g.baseState
	}
	return fallback
}
