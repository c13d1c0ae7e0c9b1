package cel

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Encode serialises a complete CEL1 file into memory.
//
// Entries must already be in row-major scan order; Encode preserves their
// order byte for byte. The returned buffer is header plus entries with no
// padding between them and no trailing data, so callers can persist it in
// a single operation.
func Encode(wCells, hCells, block int, entries []Entry) ([]byte, error) {
	if block < 1 || block > math.MaxUint16 {
		return nil, fmt.Errorf("%w: block %d", ErrInvalidGrid, block)
	}
	if wCells < 0 || wCells > math.MaxUint16 || hCells < 0 || hCells > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %dx%d cells", ErrInvalidGrid, wCells, hCells)
	}
	if len(entries) > wCells*hCells {
		return nil, fmt.Errorf("%w: %d entries for %dx%d cells", ErrInvalidGrid, len(entries), wCells, hCells)
	}

	header := Header{
		Magic:  MagicCEL1,
		Count:  uint32(len(entries)),
		WCells: uint16(wCells),
		HCells: uint16(hCells),
		Block:  uint16(block),
	}

	buf := make([]byte, HeaderSize+EntrySize*len(entries))
	if !encodeHeader(buf[:HeaderSize], header) {
		return nil, fmt.Errorf("encode CEL1 header: short buffer")
	}
	off := HeaderSize
	for i := range entries {
		if !encodeEntry(buf[off:off+EntrySize], entries[i]) {
			return nil, fmt.Errorf("encode CEL1 entry %d: short buffer", i)
		}
		off += EntrySize
	}
	return buf, nil
}

// WriteFile persists an encoded CEL1 buffer atomically.
//
// The buffer is written to a temp file in the destination directory and
// renamed into place, so a failed write never leaves a file behind that
// passes a magic or size check. Missing parent directories are created.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cel-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	cleanup := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := writeFull(tmp, data); err != nil {
		return cleanup(fmt.Errorf("write %s: %w", path, err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync %s: %w", path, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}

func writeFull(f *os.File, p []byte) error {
	for len(p) > 0 {
		n, err := f.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
