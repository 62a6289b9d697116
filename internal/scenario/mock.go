package scenario

import (
	"context"

	"github.com/pkg/errors"

	"powersimdata/internal/data"
	"powersimdata/internal/grid"
	"powersimdata/internal/model"
)

// MockPlant is the subset of plant attributes a Mock grid needs.
type MockPlant struct {
	ID           int64
	BusID        int64
	Type         string
	ZoneName     string
	Interconnect string
	GenFuelCost  float64
	Pmin         float64
	Pmax         float64
}

// NewMockGrid builds a grid holding only plants. Zone ids follow zone2id;
// zones missing from it are numbered in order of appearance.
func NewMockGrid(interconnect []string, plants []MockPlant, zone2id map[string]int64) (*grid.Grid, error) {
	ic, err := grid.NormalizeInterconnect(interconnect)
	if err != nil {
		return nil, err
	}
	zones := make(map[string]int64, len(zone2id))
	next := int64(1)
	for name, id := range zone2id {
		zones[name] = id
		if id >= next {
			next = id + 1
		}
	}
	plant := grid.NewEmpty(grid.FieldPlant)
	for _, p := range plants {
		if err := plant.AppendRow(p.ID); err != nil {
			return nil, err
		}
		row := plant.Len() - 1
		if _, ok := zones[p.ZoneName]; !ok && p.ZoneName != "" {
			zones[p.ZoneName] = next
			next++
		}
		if p.Interconnect == "" {
			p.Interconnect = ic[0]
		}
		for col, v := range map[string]any{
			"bus_id":       p.BusID,
			"type":         p.Type,
			"zone_name":    p.ZoneName,
			"zone_id":      zones[p.ZoneName],
			"interconnect": p.Interconnect,
			"GenFuelCost":  p.GenFuelCost,
			"Pmin":         p.Pmin,
			"Pmax":         p.Pmax,
			"status":       int64(1),
		} {
			if err := plant.Set(col, row, v); err != nil {
				return nil, err
			}
		}
	}
	return grid.FromTables(ic, map[string]*model.Table{grid.FieldPlant: plant}, zones)
}

// Mock is an in-memory Scenario.
type Mock struct {
	Rec      data.ScenarioRecord
	G        *grid.Grid
	Profiles map[string]*model.Profile
	Gen      *model.Profile
}

func (m *Mock) Record() data.ScenarioRecord { return m.Rec }

func (m *Mock) Grid(context.Context) (*grid.Grid, error) {
	if m.G == nil {
		return nil, errors.Wrap(ErrNoData, "grid")
	}
	return m.G, nil
}

func (m *Mock) Profile(_ context.Context, field string) (*model.Profile, error) {
	p, ok := m.Profiles[field]
	if !ok {
		return nil, errors.Wrap(ErrNoData, field)
	}
	return p, nil
}

func (m *Mock) PG(context.Context) (*model.Profile, error) {
	if m.Gen == nil {
		return nil, errors.Wrap(ErrNoData, data.FieldPG)
	}
	return m.Gen, nil
}
