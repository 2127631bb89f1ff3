package gb

// Probe holds the per-game memory addresses the generator watches while a
// trial runs: reads of the hardware RNG registers are intercepted to inject
// fresh randomness, and a write to the decision address is the AI choosing
// its move.
type Probe struct {
	// RNGLow and RNGHigh are the HRAM addresses of the in-game random
	// number registers.
	RNGLow, RNGHigh uint16

	// DecisionAddr is the WRAM address whose nonzero write carries the
	// chosen move ID.
	DecisionAddr uint16

	// MoveNumAddr is only set for second-generation games; it appears in
	// the code signature that distinguishes the real decision store from
	// unrelated writes to the same address.
	MoveNumAddr uint16

	// CheckSignature requires the writing code to match the known
	// decision-store instruction sequence before the write is trusted.
	CheckSignature bool
}

// ProbeFor returns the probe parameters for a supported game. The zero
// Probe is returned for GameUnknown.
func ProbeFor(g Game) Probe {
	switch g {
	case GameRed, GameBlue, GameYellow:
		return Probe{
			RNGLow:       0xFFD3,
			RNGHigh:      0xFFD4,
			DecisionAddr: 0xCCDD,
		}
	case GameGold, GameSilver:
		return Probe{
			RNGLow:         0xFFE3,
			RNGHigh:        0xFFE4,
			DecisionAddr:   0xCBC2,
			MoveNumAddr:    0xCBC7,
			CheckSignature: true,
		}
	case GameCrystal:
		return Probe{
			RNGLow:         0xFFE1,
			RNGHigh:        0xFFE2,
			DecisionAddr:   0xC6E4,
			MoveNumAddr:    0xC6E9,
			CheckSignature: true,
		}
	default:
		return Probe{}
	}
}

// signatureLen is the length of the decision-store instruction sequence.
const signatureLen = 6

// MatchSignature reports whether code is the decision-store sequence
// (ld a,c / ld [MoveNumAddr],a / ret / sub c). Matching on code rather than
// a fixed routine address keeps ROM hacks working as long as RAM is not
// rearranged.
func (p Probe) MatchSignature(code []byte) bool {
	if len(code) < signatureLen {
		return false
	}
	lo := byte(p.MoveNumAddr)
	hi := byte(p.MoveNumAddr >> 8)
	return code[0] == 0x79 &&
		code[1] == 0xEA &&
		code[2] == lo &&
		code[3] == hi &&
		code[4] == 0xC9 &&
		code[5] == 0x91
}
