package cells

import (
	"image"
	"runtime"
	"sync"
)

// Average is the per-cell mean color. Each channel is the block sum divided
// by block² with integer floor division; the truncation is part of the
// output contract and must not be replaced with rounding.
type Average struct {
	R, G, B, A uint8
}

// Reduce computes the block average of every grid cell, indexed row-major
// (jy*WCells + ix).
//
// Cells are independent, so the work is spread over workers goroutines
// (workers <= 0 means GOMAXPROCS). Results land in a pre-sized slice keyed
// by cell index, which keeps the output identical for any worker count.
func Reduce(img *image.RGBA, g Grid, workers int) []Average {
	out := make([]Average, g.Cells())
	if len(out) == 0 {
		return out
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > g.HCells {
		workers = g.HCells
	}
	if workers <= 1 {
		for jy := 0; jy < g.HCells; jy++ {
			reduceRow(img, g, jy, out)
		}
		return out
	}

	rows := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for jy := range rows {
				reduceRow(img, g, jy, out)
			}
		}()
	}
	for jy := 0; jy < g.HCells; jy++ {
		rows <- jy
	}
	close(rows)
	wg.Wait()
	return out
}

// reduceRow averages every cell in one grid row. Each worker writes only
// to its own row's slots, so out needs no locking.
func reduceRow(img *image.RGBA, g Grid, jy int, out []Average) {
	bs := g.Block
	n := bs * bs
	minX := img.Rect.Min.X
	minY := img.Rect.Min.Y

	for ix := 0; ix < g.WCells; ix++ {
		var r, gr, b, a int
		for y := jy * bs; y < jy*bs+bs; y++ {
			off := img.PixOffset(minX+ix*bs, minY+y)
			row := img.Pix[off : off+4*bs]
			for x := 0; x < bs; x++ {
				px := row[4*x : 4*x+4]
				r += int(px[0])
				gr += int(px[1])
				b += int(px[2])
				a += int(px[3])
			}
		}
		out[jy*g.WCells+ix] = Average{
			R: uint8(r / n),
			G: uint8(gr / n),
			B: uint8(b / n),
			A: uint8(a / n),
		}
	}
}
