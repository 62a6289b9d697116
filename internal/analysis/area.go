package analysis

import (
	"sort"

	"github.com/pkg/errors"

	"powersimdata/internal/grid"
	"powersimdata/internal/model"
)

// AreaAll selects every load zone of the grid.
const AreaAll = "all"

var ErrInvalidArea = errors.New("invalid area")

// loadZones maps an area to the set of load zone names it covers: "all",
// an interconnect name, or a single load zone.
func loadZones(g *grid.Grid, area string) (map[string]struct{}, error) {
	zones := make(map[string]struct{})
	plant, err := g.Get(grid.FieldPlant)
	if err != nil {
		return nil, err
	}
	bus, err := g.Get(grid.FieldBus)
	if err != nil {
		return nil, err
	}

	switch {
	case area == AreaAll:
		for name := range g.Zone2ID() {
			zones[name] = struct{}{}
		}
		for row := 0; row < plant.Len(); row++ {
			if z := plant.String("zone_name", row); z != "" {
				zones[z] = struct{}{}
			}
		}
	case isZone(g, plant, area):
		zones[area] = struct{}{}
	default:
		ic, ok := interconnectNamed(area)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidArea, "%q", area)
		}
		id2zone := g.ID2Zone()
		for row := 0; row < bus.Len(); row++ {
			if bus.String("interconnect", row) == ic {
				if z, ok := id2zone[bus.Int("zone_id", row)]; ok {
					zones[z] = struct{}{}
				}
			}
		}
		for row := 0; row < plant.Len(); row++ {
			if plant.String("interconnect", row) == ic && plant.String("zone_name", row) != "" {
				zones[plant.String("zone_name", row)] = struct{}{}
			}
		}
	}
	return zones, nil
}

func isZone(g *grid.Grid, plant *model.Table, area string) bool {
	if _, ok := g.Zone2ID()[area]; ok {
		return true
	}
	for _, z := range plant.Strings("zone_name") {
		if z == area {
			return true
		}
	}
	return false
}

func interconnectNamed(area string) (string, bool) {
	for _, ic := range grid.Interconnects {
		if ic == area {
			return ic, true
		}
	}
	return "", false
}

func sortedZones(zones map[string]struct{}) []string {
	out := make([]string, 0, len(zones))
	for z := range zones {
		out = append(out, z)
	}
	sort.Strings(out)
	return out
}
