package api

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/tobyverran/cellbin/pkg/cel"
)

type headerDTO struct {
	Magic    string `json:"magic"`
	Count    uint32 `json:"count"`
	WCells   uint16 `json:"w_cells"`
	HCells   uint16 `json:"h_cells"`
	Block    uint16 `json:"block"`
	Flags    uint16 `json:"flags"`
	FileSize int64  `json:"file_size"`
	Instance string `json:"instance"`
}

type entryDTO struct {
	Index int     `json:"index"`
	IX    int     `json:"ix"`
	JY    int     `json:"jy"`
	U     float32 `json:"u"`
	V     float32 `json:"v"`
	R     uint8   `json:"r"`
	G     uint8   `json:"g"`
	B     uint8   `json:"b"`
	A     uint8   `json:"a"`
}

type entriesDTO struct {
	Total   int        `json:"total"`
	Offset  int        `json:"offset"`
	Entries []entryDTO `json:"entries"`
}

type errorDTO struct {
	Error string `json:"error"`
}

func newEntryDTO(index int, e cel.Entry, wCells, hCells int) entryDTO {
	return entryDTO{
		Index: index,
		IX:    cellIndex(e.U, wCells),
		JY:    cellIndex(e.V, hCells),
		U:     e.U,
		V:     e.V,
		R:     e.R,
		G:     e.G,
		B:     e.B,
		A:     e.A,
	}
}

// writeJSON marshals with goccy/go-json rather than echo's default encoder.
func writeJSON(c *echo.Context, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return c.JSONBlob(http.StatusInternalServerError, []byte(`{"error":"marshal response"}`))
	}
	return c.JSONBlob(status, b)
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeJSON(c, http.StatusBadRequest, errorDTO{Error: msg})
}

func writeServerError(c *echo.Context, msg string) error {
	return writeJSON(c, http.StatusInternalServerError, errorDTO{Error: msg})
}
