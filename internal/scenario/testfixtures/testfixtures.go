package testfixtures

// This file contains the six-plant, two-zone scenario used by the analysis
// and api tests.
import (
	"time"

	"powersimdata/internal/data"
	"powersimdata/internal/model"
	"powersimdata/internal/scenario"
)

const Periods = 25

var (
	Start = time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	End   = time.Date(2016, 1, 2, 0, 0, 0, 0, time.UTC)

	Plants = []scenario.MockPlant{
		{ID: 101, BusID: 1001, Type: "solar", ZoneName: "zone1", Pmax: 50},
		{ID: 102, BusID: 1002, Type: "wind", ZoneName: "zone2", Pmax: 200},
		{ID: 103, BusID: 1003, Type: "ng", ZoneName: "zone2", GenFuelCost: 3.3, Pmax: 80},
		{ID: 104, BusID: 1004, Type: "coal", ZoneName: "zone1", GenFuelCost: 4.4, Pmax: 100},
		{ID: 105, BusID: 1005, Type: "dfo", ZoneName: "zone1", GenFuelCost: 5.5, Pmax: 120},
		{ID: 106, BusID: 1006, Type: "hydro", ZoneName: "zone1", Pmax: 220},
	}
	Zone2ID = map[string]int64{"zone1": 1, "zone2": 2}
)

// PG has plant i (0-based) generating (i+1)*p in period p.
func PG() *model.Profile {
	ids := make([]int64, len(Plants))
	for i, p := range Plants {
		ids[i] = p.ID
	}
	pg := model.NewProfile(data.FieldPG, model.HourlyIndex(Start, Periods), ids)
	for i, p := range Plants {
		for row := 0; row < Periods; row++ {
			_ = pg.Set(row, p.ID, float64((i+1)*row))
		}
	}
	return pg
}

// Demand is the zone sum of PG.
func Demand(pg *model.Profile) *model.Profile {
	d := model.NewProfile(data.FieldDemand, pg.Times(), []int64{1, 2})
	for row := 0; row < pg.Len(); row++ {
		var z1, z2 float64
		for _, p := range Plants {
			if p.ZoneName == "zone1" {
				z1 += pg.At(row, p.ID)
			} else {
				z2 += pg.At(row, p.ID)
			}
		}
		_ = d.Set(row, 1, z1)
		_ = d.Set(row, 2, z2)
	}
	return d
}

// Mock returns the scenario. Solar, wind and hydro profiles are the plant
// generation scaled by 2, 4 and 1.5.
func Mock() (*scenario.Mock, error) {
	g, err := scenario.NewMockGrid([]string{"Western"}, Plants, Zone2ID)
	if err != nil {
		return nil, err
	}
	pg := PG()
	return &scenario.Mock{
		Rec: data.ScenarioRecord{ID: "1", Plan: "test", Name: "mock", Interconnect: "Western", State: "analyze"},
		G:   g,
		Profiles: map[string]*model.Profile{
			data.FieldDemand: Demand(pg),
			data.FieldSolar:  pg.Select([]int64{101}, time.Time{}, time.Time{}).Scale(2),
			data.FieldWind:   pg.Select([]int64{102}, time.Time{}, time.Time{}).Scale(4),
			data.FieldHydro:  pg.Select([]int64{106}, time.Time{}, time.Time{}).Scale(1.5),
		},
		Gen: pg,
	}, nil
}
