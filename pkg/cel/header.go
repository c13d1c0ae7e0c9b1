package cel

// Header is the fixed 16-byte CEL1 file header.
//
// WCells, HCells and Block are fixed for the whole file: every entry in the
// file refers to the same grid geometry. Flags is reserved and currently
// always zero.
type Header struct {
	Magic  uint32
	Count  uint32
	WCells uint16
	HCells uint16
	Block  uint16
	Flags  uint16
}

func (h *Header) Valid() bool {
	if h.Magic != MagicCEL1 {
		return false
	}
	if h.Block == 0 {
		return false
	}
	// Every entry maps to exactly one grid position.
	if uint32(h.WCells)*uint32(h.HCells) < h.Count {
		return false
	}
	return true
}

// FileSize returns the exact on-disk size implied by the header.
func (h *Header) FileSize() int64 {
	return HeaderSize + EntrySize*int64(h.Count)
}
