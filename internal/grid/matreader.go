package grid

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"powersimdata/internal/matfile"
	"powersimdata/internal/model"
)

// MATPOWER column orders, mapped onto the grid schema.
var (
	matBusColumns = []string{
		"type", "Pd", "Qd", "Gs", "Bs", "zone_id", "Vm", "Va", "baseKV",
		"loss_zone", "Vmax", "Vmin", "lam_P", "lam_Q", "mu_Vmax", "mu_Vmin",
	}
	matGenColumns = []string{
		"bus_id", "Pg", "Qg", "Qmax", "Qmin", "Vg", "mBase", "status", "Pmax",
		"Pmin", "Pc1", "Pc2", "Qc1min", "Qc1max", "Qc2min", "Qc2max",
		"ramp_agc", "ramp_10", "ramp_30", "ramp_q", "apf", "mu_Pmax",
		"mu_Pmin", "mu_Qmax", "mu_Qmin",
	}
	matBranchColumns = []string{
		"from_bus_id", "to_bus_id", "r", "x", "b", "rateA", "rateB", "rateC",
		"ratio", "angle", "status", "angmin", "angmax", "Pf", "Qf", "Pt", "Qt",
		"mu_Sf", "mu_St", "mu_angmin", "mu_angmax",
	}
	matDCLineColumns = []string{
		"from_bus_id", "to_bus_id", "status", "Pf", "Pt", "Qf", "Qt", "Vf",
		"Vt", "Pmin", "Pmax", "QminF", "QmaxF", "QminT", "QmaxT", "loss0",
		"loss1", "muPmin", "muPmax", "muQminF", "muQmaxF", "muQminT", "muQmaxT",
	}
)

// readREISE decodes a REISE case file. The struct "mpc" carries the
// MATPOWER matrices; "mpc_storage" optionally carries storage.StorageData.
// Substations and zones come from the TAMU tables in dataDir when present.
func readREISE(path, dataDir string, interconnect []string) (*network, error) {
	ic, err := NormalizeInterconnect(interconnect)
	if err != nil {
		return nil, err
	}
	vars, err := matfile.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mpc, ok := vars["mpc"]
	if !ok || mpc.Class != matfile.ClassStruct {
		return nil, errors.Errorf("%s: no mpc struct", path)
	}
	field := func(name string) *matfile.Var {
		v, _ := mpc.Field(name)
		return v
	}
	ids := func(name string) []int64 {
		v := field(name)
		if v == nil {
			return nil
		}
		out := make([]int64, 0, v.Len())
		for _, x := range v.Vector() {
			out = append(out, int64(x))
		}
		return out
	}

	tables := make(map[string]*model.Table)
	for _, name := range []string{"bus", "gen", "branch", "gencost"} {
		if field(name) == nil {
			return nil, errors.Errorf("%s: mpc.%s is missing", path, name)
		}
	}

	bus, err := fromMatrix(FieldBus, field("bus"), matBusColumns, nil, true)
	if err != nil {
		return nil, err
	}
	tables[FieldBus] = bus

	plant, err := fromMatrix(FieldPlant, field("gen"), matGenColumns, ids("genid"), false)
	if err != nil {
		return nil, err
	}
	if fuel := field("genfuel"); fuel != nil {
		types, err := fuel.Strings()
		if err != nil {
			return nil, errors.Wrap(err, "mpc.genfuel")
		}
		for row := 0; row < plant.Len() && row < len(types); row++ {
			if err := plant.Set("type", row, types[row]); err != nil {
				return nil, err
			}
		}
	}
	tables[FieldPlant] = plant

	gencost, err := genCostFromMatrix(field("gencost"), plant.IDs())
	if err != nil {
		return nil, err
	}
	tables[FieldGenCost] = gencost

	branch, err := fromMatrix(FieldBranch, field("branch"), matBranchColumns, ids("branchid"), false)
	if err != nil {
		return nil, err
	}
	tables[FieldBranch] = branch

	if dc := field("dcline"); dc != nil {
		dcline, err := fromMatrix(FieldDCLine, dc, matDCLineColumns, ids("dclineid"), false)
		if err != nil {
			return nil, err
		}
		tables[FieldDCLine] = dcline
	}

	if ms, ok := vars["mpc_storage"]; ok {
		if st, ok := ms.Field("storage"); ok {
			if data, ok := st.Field("StorageData"); ok {
				names := make([]string, len(StorageColumns))
				for i, c := range StorageColumns {
					names[i] = c.Name
				}
				storage, err := fromMatrix(FieldStorage, data, names, nil, false)
				if err != nil {
					return nil, err
				}
				tables[FieldStorage] = storage
			}
		}
	}

	zone2id, err := attachTAMUTables(tables, dataDir)
	if err != nil {
		return nil, err
	}
	setInterconnect(tables, ic)

	net := &network{
		dataLoc:      path,
		interconnect: ic,
		tables:       tables,
		zone2id:      zone2id,
	}
	if err := addInformation(net); err != nil {
		return nil, err
	}
	return net, nil
}

// fromMatrix turns a MATPOWER matrix into a table. With idFromFirst the
// first matrix column is the index; otherwise ids (or 1..n) are used.
func fromMatrix(field string, m *matfile.Var, cols []string, ids []int64, idFromFirst bool) (*model.Table, error) {
	if m.Class == matfile.ClassStruct || m.Class == matfile.ClassCell || m.Class == matfile.ClassChar {
		return nil, errors.Errorf("%s: expected a numeric matrix", m.Name)
	}
	if len(m.Real) != m.Len() {
		return nil, errors.Errorf("%s: %v matrix holds %d values", m.Name, m.Dims, len(m.Real))
	}
	t := NewEmpty(field)
	rows := m.Rows()
	if m.Len() == 0 {
		rows = 0
	}
	if ids != nil && len(ids) != rows {
		return nil, errors.Errorf("%s: %d ids for %d rows", field, len(ids), rows)
	}
	for r := 0; r < rows; r++ {
		row := m.Row(r)
		var id int64
		switch {
		case idFromFirst:
			id = int64(row[0])
			row = row[1:]
		case ids != nil:
			id = ids[r]
		default:
			id = int64(r + 1)
		}
		if err := t.AppendRow(id); err != nil {
			return nil, err
		}
		for j, name := range cols {
			if j >= len(row) {
				break
			}
			if err := t.Set(name, r, row[j]); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// genCostFromMatrix reads polynomial costs: type, startup, shutdown, n,
// then n coefficients from the highest order down. Only the quadratic,
// linear and constant terms are kept.
func genCostFromMatrix(m *matfile.Var, plantIDs []int64) (*model.Table, error) {
	t := NewEmpty(FieldGenCost)
	if m.Len() == 0 {
		return t, nil
	}
	if m.Rows() != len(plantIDs) {
		return nil, errors.Errorf("gencost: %d rows for %d generators", m.Rows(), len(plantIDs))
	}
	for r := 0; r < m.Rows(); r++ {
		row := m.Row(r)
		if len(row) < 4 {
			return nil, errors.Errorf("gencost row %d is too short", r+1)
		}
		n := int(row[3])
		coef := row[4:]
		if n > len(coef) {
			n = len(coef)
		}
		coef = coef[:n]
		var c [3]float64 // c2, c1, c0
		for k := 0; k < 3 && k < len(coef); k++ {
			c[2-k] = coef[len(coef)-1-k]
		}
		if err := t.AppendRow(plantIDs[r], row[0], row[1], row[2], row[3], c[0], c[1], c[2]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// attachTAMUTables adds sub and bus2sub and returns zone2id. Without
// TAMU tables, zones are named after their ids.
func attachTAMUTables(tables map[string]*model.Table, dataDir string) (map[string]int64, error) {
	zone2id := make(map[string]int64)
	optional := func(file, field string, specs []model.ColumnSpec, index string) (*model.Table, error) {
		if dataDir == "" {
			return nil, nil
		}
		t, err := readCSVTable(filepath.Join(dataDir, file), field, index, specs)
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return t, errors.Wrapf(err, "failed to load %s", file)
	}

	sub, err := optional("sub.csv", FieldSub, SubColumns, Indices[FieldSub])
	if err != nil {
		return nil, err
	}
	bus2sub, err := optional("bus2sub.csv", FieldBus2Sub, Bus2SubColumns, Indices[FieldBus2Sub])
	if err != nil {
		return nil, err
	}
	zone, err := optional("zone.csv", "zone", ZoneColumns, zoneIndex)
	if err != nil {
		return nil, err
	}

	bus := tables[FieldBus]
	if bus2sub != nil {
		bus2sub = bus2sub.Filter(func(row int) bool {
			_, ok := bus.Row(bus2sub.ID(row))
			return ok
		})
		tables[FieldBus2Sub] = bus2sub
	}
	if sub != nil {
		used := make(map[int64]struct{})
		if bus2sub != nil {
			for row := 0; row < bus2sub.Len(); row++ {
				used[bus2sub.Int("sub_id", row)] = struct{}{}
			}
		}
		tables[FieldSub] = sub.Filter(func(row int) bool {
			_, ok := used[sub.ID(row)]
			return ok
		})
	}
	if zone != nil {
		for row := 0; row < zone.Len(); row++ {
			zone2id[zone.String("zone_name", row)] = zone.ID(row)
		}
		return zone2id, nil
	}
	for row := 0; row < bus.Len(); row++ {
		id := bus.Int("zone_id", row)
		zone2id["zone_"+strconv.FormatInt(id, 10)] = id
	}
	return zone2id, nil
}

// setInterconnect labels buses (and through them every other table) from
// bus2sub when known, else with the selection name.
func setInterconnect(tables map[string]*model.Table, ic []string) {
	fallback := InterconnectName(ic)
	if len(ic) == 1 {
		fallback = ic[0]
	}
	bus := tables[FieldBus]
	bus2sub := tables[FieldBus2Sub]
	for row := 0; row < bus.Len(); row++ {
		name := fallback
		if bus2sub != nil {
			if r, ok := bus2sub.Row(bus.ID(row)); ok && bus2sub.String("interconnect", r) != "" {
				name = bus2sub.String("interconnect", r)
			}
		}
		_ = bus.Set("interconnect", row, name)
	}
	if dc := tables[FieldDCLine]; dc != nil {
		for row := 0; row < dc.Len(); row++ {
			for _, end := range []string{"from", "to"} {
				name := fallback
				if r, ok := bus.Row(dc.Int(end+"_bus_id", row)); ok {
					name = bus.String("interconnect", r)
				}
				_ = dc.Set(end+"_interconnect", row, name)
			}
		}
	}
	plant := tables[FieldPlant]
	gencost := tables[FieldGenCost]
	for row := 0; row < plant.Len(); row++ {
		if r, ok := bus.Row(plant.Int("bus_id", row)); ok {
			name := bus.String("interconnect", r)
			_ = plant.Set("interconnect", row, name)
			if g, ok := gencost.Row(plant.ID(row)); ok {
				_ = gencost.Set("interconnect", g, name)
			}
		}
	}
}
