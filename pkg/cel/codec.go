package cel

import (
	"encoding/binary"
	"math"
)

// The header and entry layouts are encoded field by field with explicit
// little-endian byte order. Never replace this with a language-native
// struct dump: the byte layout is the versioning contract.

func encodeHeader(dst []byte, h Header) bool {
	if len(dst) < HeaderSize {
		return false
	}
	binary.LittleEndian.PutUint32(dst[0:4], h.Magic)
	binary.LittleEndian.PutUint32(dst[4:8], h.Count)
	binary.LittleEndian.PutUint16(dst[8:10], h.WCells)
	binary.LittleEndian.PutUint16(dst[10:12], h.HCells)
	binary.LittleEndian.PutUint16(dst[12:14], h.Block)
	binary.LittleEndian.PutUint16(dst[14:16], h.Flags)
	return true
}

func decodeHeader(src []byte) (Header, bool) {
	if len(src) < HeaderSize {
		return Header{}, false
	}
	return Header{
		Magic:  binary.LittleEndian.Uint32(src[0:4]),
		Count:  binary.LittleEndian.Uint32(src[4:8]),
		WCells: binary.LittleEndian.Uint16(src[8:10]),
		HCells: binary.LittleEndian.Uint16(src[10:12]),
		Block:  binary.LittleEndian.Uint16(src[12:14]),
		Flags:  binary.LittleEndian.Uint16(src[14:16]),
	}, true
}

func encodeEntry(dst []byte, e Entry) bool {
	if len(dst) < EntrySize {
		return false
	}
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(e.U))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(e.V))
	dst[8] = e.R
	dst[9] = e.G
	dst[10] = e.B
	dst[11] = e.A
	// Reserved tail of the 16-byte stride.
	dst[12], dst[13], dst[14], dst[15] = 0, 0, 0, 0
	return true
}

func decodeEntry(src []byte) (Entry, bool) {
	if len(src) < EntrySize {
		return Entry{}, false
	}
	return Entry{
		U: math.Float32frombits(binary.LittleEndian.Uint32(src[0:4])),
		V: math.Float32frombits(binary.LittleEndian.Uint32(src[4:8])),
		R: src[8],
		G: src[9],
		B: src[10],
		A: src[11],
	}, true
}
