package grid

import (
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"powersimdata/internal/model"
)

const zoneIndex = "zone_id"

// tamuFiles maps each field to its CSV; optional files may be absent.
var tamuFiles = []struct {
	field    string
	file     string
	optional bool
}{
	{FieldBus, "bus.csv", false},
	{FieldPlant, "plant.csv", false},
	{FieldGenCost, "gencost.csv", true},
	{FieldBranch, "branch.csv", false},
	{FieldDCLine, "dcline.csv", true},
	{FieldSub, "sub.csv", false},
	{FieldBus2Sub, "bus2sub.csv", false},
	{FieldStorage, "storage.csv", true},
}

func readCSVTable(path, name, index string, specs []model.ColumnSpec) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return model.ReadTableCSV(f, name, index, specs)
}

// readTAMU loads the TAMU synthetic network restricted to interconnect.
func readTAMU(dir string, interconnect []string) (*network, error) {
	ic, err := NormalizeInterconnect(interconnect)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return nil, errors.New("usa_tamu source needs a data directory")
	}
	keep := make(map[string]struct{}, len(ic))
	for _, name := range ic {
		keep[name] = struct{}{}
	}

	tables := make(map[string]*model.Table, len(tamuFiles))
	var result *multierror.Error
	for _, tf := range tamuFiles {
		t, err := readCSVTable(filepath.Join(dir, tf.file), tf.field, Indices[tf.field], Columns(tf.field))
		if err != nil {
			if tf.optional && errors.Is(err, os.ErrNotExist) {
				continue
			}
			result = multierror.Append(result, errors.Wrapf(err, "failed to load %s", tf.file))
			continue
		}
		tables[tf.field] = t
	}
	zone, err := readCSVTable(filepath.Join(dir, "zone.csv"), "zone", zoneIndex, ZoneColumns)
	if err != nil {
		result = multierror.Append(result, errors.Wrap(err, "failed to load zone.csv"))
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	selected := func(t *model.Table, col string) func(int) bool {
		return func(row int) bool {
			_, ok := keep[t.String(col, row)]
			return ok
		}
	}
	for _, name := range []string{FieldBus, FieldPlant, FieldBranch, FieldSub, FieldBus2Sub} {
		t := tables[name]
		tables[name] = t.Filter(selected(t, "interconnect"))
	}
	if dc := tables[FieldDCLine]; dc != nil {
		from, to := selected(dc, "from_interconnect"), selected(dc, "to_interconnect")
		tables[FieldDCLine] = dc.Filter(func(row int) bool { return from(row) && to(row) })
	}
	if gc := tables[FieldGenCost]; gc != nil {
		plant := tables[FieldPlant]
		tables[FieldGenCost] = gc.Filter(func(row int) bool {
			_, ok := plant.Row(gc.ID(row))
			return ok
		})
	}
	zone = zone.Filter(selected(zone, "interconnect"))

	zone2id := make(map[string]int64, zone.Len())
	for row := 0; row < zone.Len(); row++ {
		zone2id[zone.String("zone_name", row)] = zone.ID(row)
	}

	net := &network{
		dataLoc:      dir,
		interconnect: ic,
		tables:       tables,
		zone2id:      zone2id,
	}
	if err := addInformation(net); err != nil {
		return nil, err
	}
	return net, nil
}

// addInformation fills zone names and coordinates on buses, plants and
// branches from the bus, sub and bus2sub tables. Values already present are
// kept.
func addInformation(n *network) error {
	bus := n.tables[FieldBus]
	sub := n.tables[FieldSub]
	bus2sub := n.tables[FieldBus2Sub]
	if bus == nil {
		return nil
	}
	id2zone := make(map[int64]string, len(n.zone2id))
	for name, id := range n.zone2id {
		id2zone[id] = name
	}

	latlon := func(busID int64) (float64, float64, bool) {
		if sub == nil || bus2sub == nil {
			return 0, 0, false
		}
		r, ok := bus2sub.Row(busID)
		if !ok {
			return 0, 0, false
		}
		s, ok := sub.Row(bus2sub.Int("sub_id", r))
		if !ok {
			return 0, 0, false
		}
		return sub.Float("lat", s), sub.Float("lon", s), true
	}
	busZone := func(busID int64) (int64, bool) {
		r, ok := bus.Row(busID)
		if !ok {
			return 0, false
		}
		return bus.Int("zone_id", r), true
	}
	busInterconnect := func(busID int64) string {
		if r, ok := bus.Row(busID); ok {
			return bus.String("interconnect", r)
		}
		return ""
	}
	for row := 0; row < bus.Len(); row++ {
		if bus.Float("lat", row) != 0 || bus.Float("lon", row) != 0 {
			continue
		}
		if lat, lon, ok := latlon(bus.ID(row)); ok {
			if err := bus.Set("lat", row, lat); err != nil {
				return err
			}
			if err := bus.Set("lon", row, lon); err != nil {
				return err
			}
		}
	}

	if plant := n.tables[FieldPlant]; plant != nil {
		for row := 0; row < plant.Len(); row++ {
			busID := plant.Int("bus_id", row)
			zoneID := plant.Int("zone_id", row)
			if zoneID == 0 {
				zoneID, _ = busZone(busID)
				if err := plant.Set("zone_id", row, zoneID); err != nil {
					return err
				}
			}
			if plant.String("zone_name", row) == "" {
				if err := plant.Set("zone_name", row, id2zone[zoneID]); err != nil {
					return err
				}
			}
			if plant.String("interconnect", row) == "" {
				if err := plant.Set("interconnect", row, busInterconnect(busID)); err != nil {
					return err
				}
			}
			if plant.Float("lat", row) == 0 && plant.Float("lon", row) == 0 {
				if lat, lon, ok := latlon(busID); ok {
					if err := plant.Set("lat", row, lat); err != nil {
						return err
					}
					if err := plant.Set("lon", row, lon); err != nil {
						return err
					}
				}
			}
		}
	}

	if branch := n.tables[FieldBranch]; branch != nil {
		for row := 0; row < branch.Len(); row++ {
			from, to := branch.Int("from_bus_id", row), branch.Int("to_bus_id", row)
			fz, _ := busZone(from)
			tz, _ := busZone(to)
			values := map[string]any{
				"from_zone_id":   fz,
				"to_zone_id":     tz,
				"from_zone_name": id2zone[fz],
				"to_zone_name":   id2zone[tz],
			}
			if lat, lon, ok := latlon(from); ok {
				values["from_lat"], values["from_lon"] = lat, lon
			}
			if lat, lon, ok := latlon(to); ok {
				values["to_lat"], values["to_lon"] = lat, lon
			}
			if branch.String("interconnect", row) == "" {
				values["interconnect"] = busInterconnect(from)
			}
			for col, v := range values {
				if err := branch.Set(col, row, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
