// Package preview renders visible cells as solid rectangles for human
// inspection. Preview output never affects the encoded file: rectangles
// are drawn fully opaque even though the file keeps the averaged alpha.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"github.com/tobyverran/cellbin/internal/cells"
)

// Render draws one opaque rectangle per visible cell onto a transparent
// canvas matching the cropped input dimensions.
func Render(vis []cells.Visible, g cells.Grid) *image.RGBA {
	return RenderScale(vis, g, g.Block)
}

// RenderScale renders with an arbitrary pixel size per cell. The serve
// viewer uses this to blow up small grids.
func RenderScale(vis []cells.Visible, g cells.Grid, cell int) *image.RGBA {
	if cell < 1 {
		cell = 1
	}
	canvas := image.NewRGBA(image.Rect(0, 0, g.WCells*cell, g.HCells*cell))
	for _, v := range vis {
		r := image.Rect(v.IX*cell, v.JY*cell, (v.IX+1)*cell, (v.JY+1)*cell)
		fill := color.RGBA{R: v.Color.R, G: v.Color.G, B: v.Color.B, A: 255}
		draw.Draw(canvas, r, &image.Uniform{C: fill}, image.Point{}, draw.Src)
	}
	return canvas
}

// WritePNG encodes the canvas as PNG and writes it atomically, creating
// missing parent directories.
func WritePNG(path string, img image.Image) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create preview directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".preview-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpPath := tmp.Name()

	if err := png.Encode(tmp, img); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("encode preview %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close preview %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
