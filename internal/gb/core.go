package gb

import (
	"fmt"
	"sort"
	"sync"
)

// Hooks intercept memory traffic while a core runs. Read may substitute the
// value a read returns; Write observes stores and may veto them.
type Hooks struct {
	// Read is called for every memory read. Returning replaced=true
	// substitutes value for the original data.
	Read func(addr uint16, data byte) (value byte, replaced bool)

	// Write is called for every memory write; returning false suppresses
	// the write.
	Write func(addr uint16, data byte) bool
}

// Core is the minimal emulator surface a probe-driven generator needs.
// One Core serves one worker at a time; implementations need not be safe
// for concurrent use.
type Core interface {
	// LoadState restores a previously captured save state.
	LoadState(save []byte) error

	// SaveState captures the current machine state.
	SaveState() []byte

	// SetHooks installs the memory hooks for subsequent Step calls.
	SetHooks(h Hooks)

	// SetButtonA presses or releases the A button.
	SetButtonA(pressed bool)

	// OddFrame reports the current frame parity, used to pace input.
	OddFrame() bool

	// Step advances emulation by one chunk, invoking hooks along the way.
	Step()

	// PC returns the current program counter.
	PC() uint16

	// CodeAt returns n bytes of the currently banked ROM at the given
	// program counter, or nil if out of range.
	CodeAt(pc uint16, n int) []byte
}

// CoreFactory creates emulator cores for a given model with a ROM loaded.
type CoreFactory interface {
	NewCore(model Model, rom []byte) (Core, error)
}

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]CoreFactory)
)

// RegisterCore makes a core factory available under the given name. It is
// intended to be called from a binding package's init function and panics
// on duplicate or nil registration, mirroring database/sql driver
// registration.
func RegisterCore(name string, f CoreFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if f == nil {
		panic("gb: RegisterCore with nil factory")
	}
	if _, dup := factories[name]; dup {
		panic("gb: RegisterCore called twice for core " + name)
	}
	factories[name] = f
}

// Cores returns the names of all registered core factories, sorted.
func Cores() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// lookupCore resolves a factory by name. An empty name picks the sole
// registered factory; with none registered the result is ErrNoCore.
func lookupCore(name string) (CoreFactory, error) {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	if name == "" {
		switch len(factories) {
		case 0:
			return nil, ErrNoCore
		case 1:
			for _, f := range factories {
				return f, nil
			}
		}
		return nil, fmt.Errorf("gb: %d cores registered, name required (have %v)", len(factories), Cores())
	}
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("gb: unknown core %q (registered: %v)", name, Cores())
	}
	return f, nil
}
