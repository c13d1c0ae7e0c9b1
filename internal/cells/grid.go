// Package cells turns a decoded RGBA buffer into the ordered set of
// visible grid cells that the CEL1 encoder serialises.
package cells

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidBlock     = errors.New("cells: block size must be positive")
	ErrInvalidThreshold = errors.New("cells: threshold out of range")
)

// Grid fixes the cell geometry for one encoding pass.
//
// The source buffer is conceptually cropped to WCells*Block × HCells*Block:
// remainder pixels beyond that rectangle belong to no cell and never
// influence any output.
type Grid struct {
	Width  int // source pixel width
	Height int // source pixel height
	Block  int
	WCells int
	HCells int
}

// NewGrid derives the cell grid for a source buffer. A block size larger
// than the buffer yields an empty grid, which is valid.
func NewGrid(width, height, block int) (Grid, error) {
	if block <= 0 {
		return Grid{}, fmt.Errorf("%w: %d", ErrInvalidBlock, block)
	}
	if width < 0 || height < 0 {
		return Grid{}, fmt.Errorf("cells: negative dimensions %dx%d", width, height)
	}
	return Grid{
		Width:  width,
		Height: height,
		Block:  block,
		WCells: width / block,
		HCells: height / block,
	}, nil
}

// Cells returns the total number of grid positions.
func (g Grid) Cells() int { return g.WCells * g.HCells }

// CroppedWidth returns the covered pixel width, a multiple of Block.
func (g Grid) CroppedWidth() int { return g.WCells * g.Block }

// CroppedHeight returns the covered pixel height, a multiple of Block.
func (g Grid) CroppedHeight() int { return g.HCells * g.Block }
