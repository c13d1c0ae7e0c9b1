package cells

import (
	"fmt"
	"image"

	"github.com/tobyverran/cellbin/pkg/cel"
)

// Options carries the visibility thresholds.
type Options struct {
	// Black is the minimum BT.709 luma of the averaged color. Cells with
	// luma strictly below it are dropped; exactly at the threshold is kept.
	Black int
	// Alpha is the minimum averaged alpha (0-255), compared the same way.
	Alpha int
}

func (o Options) Validate() error {
	if o.Alpha < 0 || o.Alpha > 255 {
		return fmt.Errorf("%w: alpha %d", ErrInvalidThreshold, o.Alpha)
	}
	if o.Black < 0 {
		return fmt.Errorf("%w: black %d", ErrInvalidThreshold, o.Black)
	}
	return nil
}

// Luma709 returns the ITU-R BT.709 luma of an averaged cell color.
func Luma709(r, g, b uint8) float64 {
	return 0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)
}

// Visible is a surviving cell. The grid origin is retained so callers can
// map the cell back to its pixel footprint for preview rendering.
type Visible struct {
	IX, JY int
	Color  Average
}

// Filter applies the visibility thresholds to every cell in row-major scan
// order (jy ascending outer, ix ascending inner). The order of the result
// is an observable contract of the encoded file.
func Filter(avgs []Average, g Grid, o Options) ([]Visible, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	out := make([]Visible, 0, len(avgs))
	for jy := 0; jy < g.HCells; jy++ {
		for ix := 0; ix < g.WCells; ix++ {
			c := avgs[jy*g.WCells+ix]
			if int(c.A) < o.Alpha {
				continue
			}
			if Luma709(c.R, c.G, c.B) < float64(o.Black) {
				continue
			}
			out = append(out, Visible{IX: ix, JY: jy, Color: c})
		}
	}
	return out, nil
}

// Entries converts visible cells into CEL1 entries. The cell center is
// normalized in float64 and stored as float32, matching the file format.
func Entries(vis []Visible, g Grid) []cel.Entry {
	out := make([]cel.Entry, len(vis))
	for i, v := range vis {
		u := (float64(v.IX) + 0.5) / float64(g.WCells)
		vv := (float64(v.JY) + 0.5) / float64(g.HCells)
		out[i] = cel.Entry{
			U: float32(u),
			V: float32(vv),
			R: v.Color.R,
			G: v.Color.G,
			B: v.Color.B,
			A: v.Color.A,
		}
	}
	return out
}

// EncodeImage runs the full reduce → filter → serialise pipeline and
// returns the encoded file bytes together with the visible cells and grid
// for preview rendering.
func EncodeImage(img *image.RGBA, block int, o Options, workers int) ([]byte, []Visible, Grid, error) {
	bounds := img.Bounds()
	g, err := NewGrid(bounds.Dx(), bounds.Dy(), block)
	if err != nil {
		return nil, nil, Grid{}, err
	}
	avgs := Reduce(img, g, workers)
	vis, err := Filter(avgs, g, o)
	if err != nil {
		return nil, nil, Grid{}, err
	}
	data, err := cel.Encode(g.WCells, g.HCells, g.Block, Entries(vis, g))
	if err != nil {
		return nil, nil, Grid{}, err
	}
	return data, vis, g, nil
}
