package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/tobyverran/cellbin/internal/cells"
	"github.com/tobyverran/cellbin/internal/preview"
	"github.com/tobyverran/cellbin/internal/raster"
	"github.com/tobyverran/cellbin/pkg/cel"
)

func encodeCmd() *cli.Command {
	var (
		inputPath    string
		outputPath   string
		blockSize    int
		black        int
		alpha        int
		previewPath  string
		manifestPath string
		workers      int
	)

	return &cli.Command{
		Name:  "encode",
		Usage: "Encode an image into a CEL1 sparse cell file",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "input image (png, jpeg, gif, webp, bmp, tiff)",
				Destination: &inputPath,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "output .cel path",
				Destination: &outputPath,
				Required:    true,
			},
			&cli.IntFlag{
				Name:        "block",
				Aliases:     []string{"b"},
				Usage:       "grid cell edge length in pixels",
				Value:       1,
				Destination: &blockSize,
			},
			&cli.IntFlag{
				Name:        "black",
				Usage:       "minimum BT.709 luma; darker cells are dropped",
				Value:       10,
				Destination: &black,
			},
			&cli.IntFlag{
				Name:        "alpha",
				Usage:       "minimum averaged alpha (0-255); more transparent cells are dropped",
				Value:       8,
				Destination: &alpha,
			},
			&cli.StringFlag{
				Name:        "preview",
				Usage:       "optional preview PNG path",
				Destination: &previewPath,
			},
			&cli.StringFlag{
				Name:        "manifest",
				Usage:       "optional JSON manifest path",
				Destination: &manifestPath,
			},
			&cli.IntFlag{
				Name:        "workers",
				Usage:       "block-average workers (0 = GOMAXPROCS)",
				Destination: &workers,
			},
		}, logFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_ = ctx
			cfg := LoadConfig()
			applyEncodeConfig(cmd, cfg, &blockSize, &black, &alpha, &workers)
			log := newLog()

			img, format, err := raster.Load(inputPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: decode: %v", err), 1)
			}

			opts := cells.Options{Black: black, Alpha: alpha}
			data, vis, grid, err := cells.EncodeImage(img, blockSize, opts, workers)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: encode: %v", err), 1)
			}

			if err := cel.WriteFile(outputPath, data); err != nil {
				return cli.Exit(fmt.Sprintf("error: write: %v", err), 1)
			}

			digest := sha256.Sum256(data)
			sha := hex.EncodeToString(digest[:])

			log.Info("encoded",
				"input", inputPath,
				"format", format,
				"count", len(vis),
				"grid", fmt.Sprintf("%dx%d", grid.WCells, grid.HCells),
				"block", grid.Block,
				"sha", sha[:16],
			)
			fmt.Printf("%s  count=%d grid=%dx%d block=%d sha=%s\n",
				outputPath, len(vis), grid.WCells, grid.HCells, grid.Block, sha[:16])

			if previewPath != "" {
				canvas := preview.Render(vis, grid)
				if err := preview.WritePNG(previewPath, canvas); err != nil {
					return cli.Exit(fmt.Sprintf("error: write: %v", err), 1)
				}
				log.Info("preview written", "path", previewPath)
				fmt.Printf("preview → %s\n", previewPath)
			}

			if manifestPath != "" {
				m := encodeManifest{
					JobID:     uuid.NewString(),
					Input:     inputPath,
					Output:    outputPath,
					Format:    format,
					WCells:    grid.WCells,
					HCells:    grid.HCells,
					Block:     grid.Block,
					Black:     black,
					Alpha:     alpha,
					Count:     len(vis),
					SHA256:    sha,
					CreatedAt: time.Now().UTC(),
				}
				if err := writeManifest(manifestPath, m); err != nil {
					return cli.Exit(fmt.Sprintf("error: write: %v", err), 1)
				}
				log.Info("manifest written", "path", manifestPath)
			}

			return nil
		},
	}
}

// encodeManifest is an observational sidecar for build pipelines. It never
// affects the .cel bytes.
type encodeManifest struct {
	JobID     string    `json:"job_id"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Format    string    `json:"format"`
	WCells    int       `json:"w_cells"`
	HCells    int       `json:"h_cells"`
	Block     int       `json:"block"`
	Black     int       `json:"black"`
	Alpha     int       `json:"alpha"`
	Count     int       `json:"count"`
	SHA256    string    `json:"sha256"`
	CreatedAt time.Time `json:"created_at"`
}

func writeManifest(path string, m encodeManifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}
