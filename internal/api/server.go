// Package api exposes a read-only HTTP debug surface over a CEL1 file.
// It exists for inspecting encoder output in a browser and is never part
// of the binary contract.
package api

import (
	"bytes"
	"image/png"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/tobyverran/cellbin/internal/cells"
	"github.com/tobyverran/cellbin/internal/preview"
	"github.com/tobyverran/cellbin/pkg/cel"
)

const defaultEntryLimit = 1000

type Server struct {
	path       string
	file       *cel.File
	instanceID string
}

func NewServer(path string, file *cel.File) *Server {
	return &Server{
		path:       path,
		file:       file,
		instanceID: uuid.NewString(),
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.GET("/v1/header", s.handleHeader)
	e.GET("/v1/entries", s.handleEntries)
	e.GET("/v1/preview.png", s.handlePreview)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return writeJSON(c, http.StatusOK, map[string]any{
		"status":   "ok",
		"instance": s.instanceID,
		"file":     s.path,
	})
}

func (s *Server) handleHeader(c *echo.Context) error {
	h := s.file.Header
	return writeJSON(c, http.StatusOK, headerDTO{
		Magic:    "CEL1",
		Count:    h.Count,
		WCells:   h.WCells,
		HCells:   h.HCells,
		Block:    h.Block,
		Flags:    h.Flags,
		FileSize: h.FileSize(),
		Instance: s.instanceID,
	})
}

func (s *Server) handleEntries(c *echo.Context) error {
	limit := queryInt(c, "limit", defaultEntryLimit)
	offset := queryInt(c, "offset", 0)
	if limit < 0 || offset < 0 {
		return writeBadRequest(c, "limit and offset must be non-negative")
	}

	total := s.file.Count()
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	wC := int(s.file.Header.WCells)
	hC := int(s.file.Header.HCells)
	out := make([]entryDTO, 0, end-offset)
	for i := offset; i < end; i++ {
		e, err := s.file.Entry(i)
		if err != nil {
			return writeServerError(c, "decode entry: "+err.Error())
		}
		out = append(out, newEntryDTO(i, e, wC, hC))
	}
	return writeJSON(c, http.StatusOK, entriesDTO{
		Total:   total,
		Offset:  offset,
		Entries: out,
	})
}

func (s *Server) handlePreview(c *echo.Context) error {
	scale := queryInt(c, "scale", int(s.file.Header.Block))
	if scale < 1 || scale > 64 {
		return writeBadRequest(c, "scale must be between 1 and 64")
	}

	vis, g, err := visibleCells(s.file)
	if err != nil {
		return writeServerError(c, "decode entries: "+err.Error())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, preview.RenderScale(vis, g, scale)); err != nil {
		return writeServerError(c, "encode preview: "+err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

// visibleCells reconstructs the visible cell set from the stored entries.
// The grid origin of each entry is recovered from its normalized center.
func visibleCells(f *cel.File) ([]cells.Visible, cells.Grid, error) {
	h := f.Header
	g := cells.Grid{
		Width:  int(h.WCells) * int(h.Block),
		Height: int(h.HCells) * int(h.Block),
		Block:  int(h.Block),
		WCells: int(h.WCells),
		HCells: int(h.HCells),
	}

	entries, err := f.Entries()
	if err != nil {
		return nil, cells.Grid{}, err
	}
	vis := make([]cells.Visible, len(entries))
	for i, e := range entries {
		vis[i] = cells.Visible{
			IX: cellIndex(e.U, g.WCells),
			JY: cellIndex(e.V, g.HCells),
			Color: cells.Average{
				R: e.R,
				G: e.G,
				B: e.B,
				A: e.A,
			},
		}
	}
	return vis, g, nil
}

// cellIndex inverts u = (ix+0.5)/n. The float32 round trip stays well
// within the half-cell margin, so flooring recovers the exact index.
func cellIndex(u float32, n int) int {
	ix := int(float64(u) * float64(n))
	if ix < 0 {
		return 0
	}
	if ix >= n {
		return n - 1
	}
	return ix
}

func queryInt(c *echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
