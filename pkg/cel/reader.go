package cel

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

type File struct {
	Data    []byte
	Header  *Header
	mmapped bool
}

// Open maps a CEL1 file read-only and validates its structure.
// If mmap is unavailable, it falls back to ReadAt-based loading.
// The returned file must be closed to release any mapping.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	size64 := stat.Size()
	if size64 < 0 {
		return nil, ErrCorruptFile
	}
	if size64 > int64(int(^uint(0)>>1)) {
		// cannot index this file safely as []byte on this architecture.
		return nil, ErrCorruptFile
	}
	size := int(size64)
	if size < HeaderSize {
		return nil, ErrCorruptFile
	}

	// Prefer mmap where available for zero-copy entry slices.
	data, err := unix.Mmap(
		int(f.Fd()),
		0,
		size,
		unix.PROT_READ,
		unix.MAP_SHARED,
	)
	if err == nil {
		cf, parseErr := parseFileData(data, true)
		if parseErr != nil {
			_ = unix.Munmap(data)
			return nil, parseErr
		}
		return cf, nil
	}

	// Fallback path that does not require mmap support.
	data, err = readAllAt(f, size)
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// OpenReaderAt loads and validates a CEL1 file from a random-access reader
// without mmap.
func OpenReaderAt(r io.ReaderAt, size int64) (*File, error) {
	if size < 0 || size > int64(int(^uint(0)>>1)) {
		return nil, ErrCorruptFile
	}
	data, err := readAllAt(r, int(size))
	if err != nil {
		return nil, err
	}
	return parseFileData(data, false)
}

// Parse validates an in-memory CEL1 buffer. The returned File borrows data.
func Parse(data []byte) (*File, error) {
	return parseFileData(data, false)
}

func readAllAt(r io.ReaderAt, size int) ([]byte, error) {
	if size < 0 {
		return nil, ErrCorruptFile
	}
	if size == 0 {
		return []byte{}, nil
	}
	out := make([]byte, size)
	var off int64
	for off < int64(size) {
		n, err := r.ReadAt(out[off:], off)
		off += int64(n)
		if err == nil {
			continue
		}
		if err == io.EOF && off == int64(size) {
			break
		}
		return nil, err
	}
	return out, nil
}

func parseFileData(data []byte, mmapped bool) (*File, error) {
	if len(data) < HeaderSize {
		return nil, ErrCorruptFile
	}
	hdr, ok := decodeHeader(data[:HeaderSize])
	if !ok {
		return nil, ErrCorruptFile
	}
	if hdr.Magic != MagicCEL1 {
		return nil, ErrInvalidMagic
	}
	if !hdr.Valid() {
		return nil, fmt.Errorf("%w: invalid header", ErrCorruptFile)
	}
	if hdr.FileSize() != int64(len(data)) {
		return nil, fmt.Errorf("%w: size %d, header implies %d", ErrCorruptFile, len(data), hdr.FileSize())
	}
	return &File{
		Data:    data,
		Header:  &hdr,
		mmapped: mmapped,
	}, nil
}

// Close releases file resources and any mmap backing.
func (f *File) Close() error {
	if f == nil {
		return nil
	}
	if f.Data != nil {
		var err error
		if f.mmapped {
			err = unix.Munmap(f.Data)
		}
		f.Data = nil
		f.Header = nil
		f.mmapped = false
		return err
	}
	f.Header = nil
	f.mmapped = false
	return nil
}

// Count returns the number of entries recorded in the header.
func (f *File) Count() int {
	if f == nil || f.Header == nil {
		return 0
	}
	return int(f.Header.Count)
}

// Entry decodes the i-th entry. Entries are stored in row-major scan order.
func (f *File) Entry(i int) (Entry, error) {
	if f == nil || f.Data == nil {
		return Entry{}, ErrCorruptFile
	}
	if i < 0 || i >= f.Count() {
		return Entry{}, fmt.Errorf("%w: entry %d out of range", ErrCorruptFile, i)
	}
	off := HeaderSize + i*EntrySize
	e, ok := decodeEntry(f.Data[off : off+EntrySize])
	if !ok {
		return Entry{}, ErrCorruptFile
	}
	return e, nil
}

// Entries decodes all entries in file order.
func (f *File) Entries() ([]Entry, error) {
	n := f.Count()
	out := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		e, err := f.Entry(i)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
