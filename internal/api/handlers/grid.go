package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"powersimdata/internal/api/models"
	"powersimdata/internal/grid"
	"powersimdata/internal/model"
)

// GridHandler serves grid fields and transforms.
type GridHandler struct {
	grids   *grid.Cache
	dataDir string
}

func NewGridHandler(grids *grid.Cache, dataDir string) *GridHandler {
	return &GridHandler{grids: grids, dataDir: dataDir}
}

// load builds the TAMU grid of the requested interconnect from the
// configured data directory. Clients cannot pick the source or engine.
func (h *GridHandler) load(c *gin.Context) (*grid.Grid, error) {
	for _, key := range []string{"source", "engine"} {
		if _, ok := c.GetQuery(key); ok {
			return nil, errors.Wrapf(grid.ErrUnknownSource, "query parameter %q is not accepted", key)
		}
	}
	return h.grids.Get(grid.Options{
		Interconnect: grid.ParseInterconnect(c.Param("interconnect")),
		Source:       grid.SourceTAMU,
		DataDir:      h.dataDir,
	})
}

// ListFields handles GET /api/v1/grids/:interconnect
func (h *GridHandler) ListFields(c *gin.Context) {
	g, err := h.load(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	counts := make(map[string]int, len(g.Fields()))
	for _, name := range g.Fields() {
		t, _ := g.Get(name)
		counts[name] = t.Len()
	}
	c.JSON(http.StatusOK, gin.H{
		"interconnect": g.Interconnect,
		"data_loc":     g.DataLoc,
		"fields":       counts,
		"transforms":   grid.TransformNames,
	})
}

// GetField handles GET /api/v1/grids/:interconnect/fields/:field
func (h *GridHandler) GetField(c *gin.Context) {
	g, err := h.load(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	t, err := g.Get(c.Param("field"))
	if err != nil {
		respondErr(c, err)
		return
	}
	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		if err := model.WriteTableCSV(c.Writer, t); err != nil {
			_ = c.Error(err)
		}
		return
	}
	c.JSON(http.StatusOK, tableResponse(t))
}

// GetTransform handles GET /api/v1/grids/:interconnect/transforms/:name
func (h *GridHandler) GetTransform(c *gin.Context) {
	name := c.Param("name")
	known := false
	for _, n := range grid.TransformNames {
		known = known || n == name
	}
	if !known {
		respondErr(c, errors.Wrapf(grid.ErrUnknownField, "%q is not a transform", name))
		return
	}
	g, err := h.load(c)
	if err != nil {
		respondErr(c, err)
		return
	}
	if name == grid.TransformBus2Sub {
		c.JSON(http.StatusOK, tableResponse(g.Bus2Sub()))
		return
	}
	v, err := g.Lookup(name)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "value": v})
}

func tableResponse(t *model.Table) models.TableResponse {
	resp := models.TableResponse{
		Name:    t.Name,
		Index:   t.IndexName,
		Columns: t.Columns(),
		Rows:    make([]map[string]any, t.Len()),
	}
	for row := 0; row < t.Len(); row++ {
		rec := make(map[string]any, len(resp.Columns)+1)
		rec[t.IndexName] = t.ID(row)
		for _, col := range resp.Columns {
			v := t.Value(col, row)
			if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
				v = nil
			}
			rec[col] = v
		}
		resp.Rows[row] = rec
	}
	return resp
}
