package gb

import "encoding/binary"

// Model is the Game Boy hardware family a save state was taken on.
type Model int

const (
	ModelUnknown Model = iota
	ModelDMG           // original Game Boy
	ModelSGB           // Super Game Boy
	ModelCGB           // Game Boy Color
	ModelAGB           // Game Boy Advance in GBC mode
)

func (m Model) String() string {
	switch m {
	case ModelDMG:
		return "Game Boy"
	case ModelSGB:
		return "Super Game Boy"
	case ModelCGB:
		return "Game Boy Color"
	case ModelAGB:
		return "Game Boy Advance"
	default:
		return "unknown model"
	}
}

const (
	bessMagic      = "BESS"
	bessFooterSize = 8
	coreBlockName  = "CORE"
)

// DetectModel determines the hardware model from a save state's BESS
// footer and CORE block. Save states without a valid footer or CORE block
// yield ErrBadSaveState.
func DetectModel(save []byte) (Model, error) {
	if len(save) < bessFooterSize {
		return ModelUnknown, ErrBadSaveState
	}
	footer := save[len(save)-bessFooterSize:]
	if string(footer[4:]) != bessMagic {
		return ModelUnknown, ErrBadSaveState
	}
	off := binary.LittleEndian.Uint32(footer[:4])
	if int64(off) >= int64(len(save)-bessFooterSize) {
		return ModelUnknown, ErrBadSaveState
	}

	// Walk the block chain; the CORE block carries the model identifier.
	pos := int(off)
	for pos+8 <= len(save)-bessFooterSize {
		name := string(save[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(save[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(save) {
			return ModelUnknown, ErrBadSaveState
		}
		if name == coreBlockName {
			if size < 8 {
				return ModelUnknown, ErrBadSaveState
			}
			return modelFromIdent(save[body+4]), nil
		}
		if name == "END " {
			break
		}
		pos = body + size
	}
	return ModelUnknown, ErrBadSaveState
}

// modelFromIdent maps the first character of the CORE block's four-character
// model identifier to a hardware family.
func modelFromIdent(c byte) Model {
	switch c {
	case 'G':
		return ModelDMG
	case 'S':
		return ModelSGB
	case 'C':
		return ModelCGB
	case 'A':
		return ModelAGB
	default:
		return ModelUnknown
	}
}
