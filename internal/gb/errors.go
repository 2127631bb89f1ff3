package gb

import (
	"errors"
	"fmt"
)

// Domain errors for ROM and save-state loading.
var (
	// ErrShortROM indicates a ROM image too small to hold a cartridge header.
	ErrShortROM = errors.New("gb: rom image too small for a cartridge header")

	// ErrBadSaveState indicates a save state without a readable BESS footer.
	ErrBadSaveState = errors.New("gb: save state has no valid BESS footer")

	// ErrNoCore indicates no emulator core factory has been registered.
	ErrNoCore = errors.New("gb: no emulator core registered")
)

// UnknownGameError reports a ROM whose title is not one of the supported
// games.
type UnknownGameError struct {
	Title string
}

func (e *UnknownGameError) Error() string {
	return fmt.Sprintf("gb: unknown game %q from rom", e.Title)
}
