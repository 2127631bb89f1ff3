// Package gb identifies the loaded game, parses save-state headers, and
// adapts an emulator core into the simulator's outcome generator.
//
// The emulator core itself is an external collaborator: bindings register a
// [CoreFactory] (usually from an init function, the same way database/sql
// drivers register themselves) and the rest of the package drives whichever
// core is available through per-game memory probes.
package gb

import (
	"bytes"
	"strings"
)

// Game is one of the supported Game Boy titles.
type Game int

const (
	GameUnknown Game = iota
	GameRed
	GameBlue
	GameYellow
	GameGold
	GameSilver
	GameCrystal
)

// Cartridge header layout.
const (
	titleOffset = 0x134
	titleLength = 16
	cgbFlag     = 0x143
	headerEnd   = 0x150
)

// romTitles maps the cartridge header title to a game.
var romTitles = map[string]Game{
	"POKEMON RED":     GameRed,
	"POKEMON BLUE":    GameBlue,
	"POKEMON YELLOW":  GameYellow,
	"POKEMON_GLDAAUE": GameGold,
	"POKEMON_SLVAAXE": GameSilver,
	"PM_CRYSTAL":      GameCrystal,
}

func (g Game) String() string {
	switch g {
	case GameRed:
		return "Pokémon: Red Version"
	case GameBlue:
		return "Pokémon: Blue Version"
	case GameYellow:
		return "Pokémon Yellow Version: Special Pikachu Edition"
	case GameGold:
		return "Pokémon: Gold Version"
	case GameSilver:
		return "Pokémon: Silver Version"
	case GameCrystal:
		return "Pokémon: Crystal Version"
	default:
		return "unknown game"
	}
}

// Gen2 reports whether the game is a second-generation title, which changes
// how the AI's move decision is detected.
func (g Game) Gen2() bool {
	return g == GameGold || g == GameSilver || g == GameCrystal
}

// ROMTitle extracts the cartridge title from the ROM header, trimming
// padding. It returns ErrShortROM for images smaller than the header.
func ROMTitle(rom []byte) (string, error) {
	if len(rom) < headerEnd {
		return "", ErrShortROM
	}
	title := rom[titleOffset : titleOffset+titleLength]
	if rom[cgbFlag]&0x80 != 0 {
		// On CGB-aware cartridges the last title byte is the CGB flag,
		// not title text. Gold and Silver fill all 15 remaining bytes.
		title = title[:titleLength-1]
	}
	if i := bytes.IndexByte(title, 0); i >= 0 {
		title = title[:i]
	}
	return strings.TrimRight(string(title), "\x00 "), nil
}

// DetectGame identifies the game from the ROM header title. Unsupported
// titles yield an *UnknownGameError.
func DetectGame(rom []byte) (Game, error) {
	title, err := ROMTitle(rom)
	if err != nil {
		return GameUnknown, err
	}
	if g, ok := romTitles[title]; ok {
		return g, nil
	}
	return GameUnknown, &UnknownGameError{Title: title}
}
