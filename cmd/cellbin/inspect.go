package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/tobyverran/cellbin/pkg/cel"
)

func inspectCmd() *cli.Command {
	var (
		filePath    string
		showEntries bool
		entryLimit  int
		asJSON      bool
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Inspect the contents of a .cel file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to .cel file",
				Destination: &filePath,
				Required:    true,
			},
			&cli.BoolFlag{Name: "entries", Usage: "list entries", Destination: &showEntries},
			&cli.IntFlag{Name: "limit", Usage: "limit entry listing (0 = no limit)", Value: 50, Destination: &entryLimit},
			&cli.BoolFlag{Name: "json", Usage: "emit machine-readable JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_ = ctx

			stat, err := os.Stat(filePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: stat %q: %v", filePath, err), 1)
			}
			if stat.IsDir() {
				return cli.Exit("error: cellbin inspect only supports .cel files", 1)
			}

			f, err := cel.Open(filePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open cel: %v", err), 1)
			}
			defer func() { _ = f.Close() }()

			if asJSON {
				return printJSON(f, entryLimit)
			}

			h := f.Header
			fmt.Printf("CEL Inspect: %s\n", filePath)
			fmt.Printf("File: %s (%d B)\n", filepath.Base(filePath), stat.Size())
			fmt.Printf("CEL1 Header: count=%d grid=%dx%d block=%d flags=%#04x\n",
				h.Count, h.WCells, h.HCells, h.Block, h.Flags)
			fmt.Printf("Coverage: %d of %d cells (%.1f%%)\n",
				h.Count, int(h.WCells)*int(h.HCells), coveragePercent(h))

			if showEntries {
				printEntryListing(f, entryLimit)
			}
			return nil
		},
	}
}

func coveragePercent(h *cel.Header) float64 {
	total := int(h.WCells) * int(h.HCells)
	if total == 0 {
		return 0
	}
	return 100 * float64(h.Count) / float64(total)
}

func printEntryListing(f *cel.File, limit int) {
	title := "Entries"
	line := strings.Repeat("-", len(title)+8)
	fmt.Printf("\n%s\n--- %s ---\n%s\n", line, title, line)

	count := f.Count()
	shown := 0
	wC := int(f.Header.WCells)
	for i := 0; i < count; i++ {
		e, err := f.Entry(i)
		if err != nil {
			fmt.Printf("(entry %d: %v)\n", i, err)
			return
		}
		fmt.Printf("%6d  cell=(%d,%d) uv=(%.4f,%.4f) rgba=(%d,%d,%d,%d)\n",
			i, cellIndexOf(e.U, wC), cellIndexOf(e.V, int(f.Header.HCells)),
			e.U, e.V, e.R, e.G, e.B, e.A)
		shown++
		if limit > 0 && shown >= limit {
			break
		}
	}
	if limit > 0 && shown < count {
		fmt.Printf("... (%d shown of %d)\n", shown, count)
	}
}

// cellIndexOf inverts u = (ix+0.5)/n; the float32 round trip stays within
// the half-cell margin so flooring recovers the index.
func cellIndexOf(u float32, n int) int {
	if n <= 0 {
		return 0
	}
	ix := int(float64(u) * float64(n))
	if ix < 0 {
		return 0
	}
	if ix >= n {
		return n - 1
	}
	return ix
}

type inspectJSON struct {
	Count    uint32         `json:"count"`
	WCells   uint16         `json:"w_cells"`
	HCells   uint16         `json:"h_cells"`
	Block    uint16         `json:"block"`
	Flags    uint16         `json:"flags"`
	FileSize int64          `json:"file_size"`
	Entries  []inspectEntry `json:"entries,omitempty"`
}

type inspectEntry struct {
	IX int     `json:"ix"`
	JY int     `json:"jy"`
	U  float32 `json:"u"`
	V  float32 `json:"v"`
	R  uint8   `json:"r"`
	G  uint8   `json:"g"`
	B  uint8   `json:"b"`
	A  uint8   `json:"a"`
}

func printJSON(f *cel.File, limit int) error {
	h := f.Header
	out := inspectJSON{
		Count:    h.Count,
		WCells:   h.WCells,
		HCells:   h.HCells,
		Block:    h.Block,
		Flags:    h.Flags,
		FileSize: h.FileSize(),
	}

	count := f.Count()
	if limit > 0 && limit < count {
		count = limit
	}
	for i := 0; i < count; i++ {
		e, err := f.Entry(i)
		if err != nil {
			return cli.Exit(fmt.Sprintf("error: decode entry %d: %v", i, err), 1)
		}
		out.Entries = append(out.Entries, inspectEntry{
			IX: cellIndexOf(e.U, int(h.WCells)),
			JY: cellIndexOf(e.V, int(h.HCells)),
			U:  e.U,
			V:  e.V,
			R:  e.R,
			G:  e.G,
			B:  e.B,
			A:  e.A,
		})
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: marshal: %v", err), 1)
	}
	fmt.Println(string(b))
	return nil
}
