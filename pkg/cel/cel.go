// Package cel implements the CEL1 sparse cell file format.
//
// A CEL1 file is a fixed-layout, little-endian description of the visible
// grid cells of a raster image: one 16-byte header followed by count
// 16-byte entries. It describes data only and never implies renderer
// behaviour.
package cel

// CEL1 global constants must never change.
const (
	// MagicCEL1 is the file magic for all CEL1 files.
	// On disk it is the little-endian encoding of the ASCII value "CEL1".
	MagicCEL1 uint32 = 0x43454C31

	// HeaderSize is the fixed byte size of the file header.
	HeaderSize = 16

	// EntrySize is the fixed byte stride of one cell entry. The packed
	// fields occupy 12 bytes; the remaining 4 are reserved and zero so
	// entries keep a 16-byte stride for direct GPU upload.
	EntrySize = 16
)
