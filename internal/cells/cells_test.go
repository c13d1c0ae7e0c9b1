package cells

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/tobyverran/cellbin/pkg/cel"
)

var defaultOpts = Options{Black: 10, Alpha: 8}

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// scrambleImage fills an image with deterministic pseudo-random opaque
// bright pixels so every cell survives the default thresholds.
func scrambleImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	seed := uint32(2463534242)
	next := func() uint8 {
		seed ^= seed << 13
		seed ^= seed >> 17
		seed ^= seed << 5
		return uint8(128 + seed%128)
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: next(), G: next(), B: next(), A: 255})
		}
	}
	return img
}

func TestWhite2x2Block1(t *testing.T) {
	t.Parallel()

	img := solidImage(2, 2, color.RGBA{255, 255, 255, 255})
	data, vis, g, err := EncodeImage(img, 1, defaultOpts, 1)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if g.WCells != 2 || g.HCells != 2 {
		t.Fatalf("grid: got %dx%d want 2x2", g.WCells, g.HCells)
	}
	if len(vis) != 4 {
		t.Fatalf("visible: got %d want 4", len(vis))
	}
	if len(data) != cel.HeaderSize+4*cel.EntrySize {
		t.Fatalf("size: got %d want %d", len(data), cel.HeaderSize+4*cel.EntrySize)
	}

	f, err := cel.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Header.Count != 4 || f.Header.WCells != 2 || f.Header.HCells != 2 || f.Header.Block != 1 {
		t.Fatalf("header mismatch: %+v", f.Header)
	}

	// Row-major order with cell centers at 0.25 and 0.75.
	want := []cel.Entry{
		{U: 0.25, V: 0.25, R: 255, G: 255, B: 255, A: 255},
		{U: 0.75, V: 0.25, R: 255, G: 255, B: 255, A: 255},
		{U: 0.25, V: 0.75, R: 255, G: 255, B: 255, A: 255},
		{U: 0.75, V: 0.75, R: 255, G: 255, B: 255, A: 255},
	}
	got, err := f.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestTransparent4x4IsHeaderOnly(t *testing.T) {
	t.Parallel()

	img := solidImage(4, 4, color.RGBA{0, 0, 0, 0})
	data, vis, _, err := EncodeImage(img, 1, defaultOpts, 1)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(vis) != 0 {
		t.Fatalf("visible: got %d want 0", len(vis))
	}
	if len(data) != cel.HeaderSize {
		t.Fatalf("size: got %d want %d", len(data), cel.HeaderSize)
	}
	f, err := cel.Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if f.Header.Count != 0 {
		t.Fatalf("count: got %d want 0", f.Header.Count)
	}
}

func TestMixedAlphaBlockAverage(t *testing.T) {
	t.Parallel()

	// One 2x2 block of white pixels with alpha 255,0,255,0: the average
	// alpha floors to 127, which survives the default threshold of 8.
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	alphas := []uint8{255, 0, 255, 0}
	for i, a := range alphas {
		img.SetRGBA(i%2, i/2, color.RGBA{255, 255, 255, a})
	}

	g, err := NewGrid(2, 2, 2)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	avgs := Reduce(img, g, 1)
	if len(avgs) != 1 {
		t.Fatalf("averages: got %d want 1", len(avgs))
	}
	if avgs[0].A != 127 {
		t.Fatalf("alpha average: got %d want 127", avgs[0].A)
	}

	vis, err := Filter(avgs, g, defaultOpts)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(vis) != 1 {
		t.Fatalf("visible: got %d want 1", len(vis))
	}
	if vis[0].Color.A != 127 {
		t.Fatalf("stored alpha must stay the computed average: got %d", vis[0].Color.A)
	}
}

func TestBlock1IsPerPixelIdentity(t *testing.T) {
	t.Parallel()

	img := scrambleImage(3, 2)
	g, err := NewGrid(3, 2, 1)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	avgs := Reduce(img, g, 1)
	for jy := 0; jy < 2; jy++ {
		for ix := 0; ix < 3; ix++ {
			px := img.RGBAAt(ix, jy)
			got := avgs[jy*g.WCells+ix]
			want := Average{R: px.R, G: px.G, B: px.B, A: px.A}
			if got != want {
				t.Fatalf("cell (%d,%d): got %+v want %+v", ix, jy, got, want)
			}
		}
	}
}

func TestAlphaThresholdBoundary(t *testing.T) {
	t.Parallel()

	// Two cells: alpha exactly at the threshold is kept, one below drops.
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{255, 255, 255, 100})
	img.SetRGBA(1, 0, color.RGBA{255, 255, 255, 99})

	g, err := NewGrid(2, 1, 1)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	vis, err := Filter(Reduce(img, g, 1), g, Options{Black: 0, Alpha: 100})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(vis) != 1 {
		t.Fatalf("visible: got %d want 1", len(vis))
	}
	if vis[0].IX != 0 {
		t.Fatalf("wrong cell survived: %+v", vis[0])
	}
}

func TestLumaThresholdBoundary(t *testing.T) {
	t.Parallel()

	// Pure green 200 has luma 0.7152*200 = 143.04.
	img := solidImage(1, 1, color.RGBA{0, 200, 0, 255})
	g, err := NewGrid(1, 1, 1)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	avgs := Reduce(img, g, 1)

	kept, err := Filter(avgs, g, Options{Black: 143, Alpha: 0})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("luma above threshold must be kept, got %d", len(kept))
	}

	dropped, err := Filter(avgs, g, Options{Black: 144, Alpha: 0})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(dropped) != 0 {
		t.Fatalf("luma below threshold must be dropped, got %d", len(dropped))
	}
}

func TestLumaExactlyAtThresholdIsKept(t *testing.T) {
	t.Parallel()

	// Luma 0 at threshold 0: strict less-than keeps the cell.
	img := solidImage(1, 1, color.RGBA{0, 0, 0, 255})
	g, err := NewGrid(1, 1, 1)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	vis, err := Filter(Reduce(img, g, 1), g, Options{Black: 0, Alpha: 0})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(vis) != 1 {
		t.Fatalf("cell exactly at threshold must be kept, got %d", len(vis))
	}
}

func TestRemainderPixelsNeverInfluenceOutput(t *testing.T) {
	t.Parallel()

	// 5x3 at block 2 crops to 4x2: column 4 and row 2 are outside every
	// cell no matter what they contain.
	base := solidImage(5, 3, color.RGBA{100, 100, 100, 255})
	poisoned := solidImage(5, 3, color.RGBA{100, 100, 100, 255})
	for x := 0; x < 5; x++ {
		poisoned.SetRGBA(x, 2, color.RGBA{255, 0, 255, 255})
	}
	for y := 0; y < 3; y++ {
		poisoned.SetRGBA(4, y, color.RGBA{0, 255, 255, 255})
	}

	g, err := NewGrid(5, 3, 2)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if g.WCells != 2 || g.HCells != 1 {
		t.Fatalf("grid: got %dx%d want 2x1", g.WCells, g.HCells)
	}

	a := Reduce(base, g, 1)
	b := Reduce(poisoned, g, 1)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cell %d influenced by remainder pixels: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestReduceDeterministicAcrossWorkers(t *testing.T) {
	t.Parallel()

	img := scrambleImage(64, 64)
	g, err := NewGrid(64, 64, 4)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}

	serial := Reduce(img, g, 1)
	for _, workers := range []int{0, 2, 8, 100} {
		parallel := Reduce(img, g, workers)
		for i := range serial {
			if serial[i] != parallel[i] {
				t.Fatalf("workers=%d: cell %d mismatch: %+v vs %+v", workers, i, serial[i], parallel[i])
			}
		}
	}
}

func TestEncodeImageIdempotent(t *testing.T) {
	t.Parallel()

	img := scrambleImage(32, 24)
	first, _, _, err := EncodeImage(img, 3, defaultOpts, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, _, _, err := EncodeImage(img, 3, defaultOpts, 4)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("encoding is not byte-identical across runs")
	}
}

func TestBlockLargerThanImage(t *testing.T) {
	t.Parallel()

	img := solidImage(3, 3, color.RGBA{255, 255, 255, 255})
	data, vis, g, err := EncodeImage(img, 8, defaultOpts, 1)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if g.WCells != 0 || g.HCells != 0 {
		t.Fatalf("grid: got %dx%d want 0x0", g.WCells, g.HCells)
	}
	if len(vis) != 0 || len(data) != cel.HeaderSize {
		t.Fatalf("expected empty header-only output, got %d entries %d bytes", len(vis), len(data))
	}
}

func TestNewGridRejectsBadBlock(t *testing.T) {
	t.Parallel()

	if _, err := NewGrid(10, 10, 0); !errors.Is(err, ErrInvalidBlock) {
		t.Fatalf("block=0: got %v want ErrInvalidBlock", err)
	}
	if _, err := NewGrid(10, 10, -3); !errors.Is(err, ErrInvalidBlock) {
		t.Fatalf("block=-3: got %v want ErrInvalidBlock", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		o    Options
		ok   bool
	}{
		{"defaults", Options{Black: 10, Alpha: 8}, true},
		{"zeroes", Options{}, true},
		{"alpha max", Options{Alpha: 255}, true},
		{"alpha negative", Options{Alpha: -1}, false},
		{"alpha too large", Options{Alpha: 256}, false},
		{"black negative", Options{Black: -1}, false},
	}
	for _, tc := range cases {
		err := tc.o.Validate()
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("%s: got %v want ErrInvalidThreshold", tc.name, err)
		}
	}
}

func TestEntriesNormalizedCenters(t *testing.T) {
	t.Parallel()

	g := Grid{Width: 8, Height: 4, Block: 2, WCells: 4, HCells: 2}
	vis := []Visible{
		{IX: 0, JY: 0, Color: Average{R: 1, A: 255}},
		{IX: 3, JY: 1, Color: Average{R: 2, A: 255}},
	}
	entries := Entries(vis, g)
	if entries[0].U != 0.125 || entries[0].V != 0.25 {
		t.Fatalf("entry 0 uv: got (%v,%v)", entries[0].U, entries[0].V)
	}
	if entries[1].U != 0.875 || entries[1].V != 0.75 {
		t.Fatalf("entry 1 uv: got (%v,%v)", entries[1].U, entries[1].V)
	}
}
