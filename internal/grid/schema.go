package grid

import "powersimdata/internal/model"

// Field names.
const (
	FieldBus     = "bus"
	FieldBranch  = "branch"
	FieldDCLine  = "dcline"
	FieldGenCost = "gencost"
	FieldPlant   = "plant"
	FieldSub     = "sub"
	FieldStorage = "storage"
	FieldBus2Sub = "bus2sub"
)

// FieldNames lists the fields every Grid carries, in load order.
var FieldNames = []string{FieldBus, FieldBranch, FieldDCLine, FieldGenCost, FieldPlant, FieldSub, FieldStorage}

// Indices is the index column name of each table.
var Indices = map[string]string{
	FieldSub:     "sub_id",
	FieldBus2Sub: "bus_id",
	FieldBranch:  "branch_id",
	FieldBus:     "bus_id",
	FieldDCLine:  "dcline_id",
	FieldPlant:   "plant_id",
	FieldGenCost: "plant_id",
	FieldStorage: "storage_id",
}

type col = model.ColumnSpec

const (
	kInt   = model.KindInt
	kFloat = model.KindFloat
	kStr   = model.KindString
)

// AC lines
var BranchColumns = []col{
	{Name: "from_bus_id", Kind: kInt},
	{Name: "to_bus_id", Kind: kInt},
	{Name: "r", Kind: kFloat},
	{Name: "x", Kind: kFloat},
	{Name: "b", Kind: kFloat},
	{Name: "rateA", Kind: kFloat},
	{Name: "rateB", Kind: kFloat},
	{Name: "rateC", Kind: kFloat},
	{Name: "ratio", Kind: kFloat},
	{Name: "angle", Kind: kFloat},
	{Name: "status", Kind: kInt},
	{Name: "angmin", Kind: kFloat},
	{Name: "angmax", Kind: kFloat},
	{Name: "Pf", Kind: kFloat},
	{Name: "Qf", Kind: kFloat},
	{Name: "Pt", Kind: kFloat},
	{Name: "Qt", Kind: kFloat},
	{Name: "mu_Sf", Kind: kFloat},
	{Name: "mu_St", Kind: kFloat},
	{Name: "mu_angmin", Kind: kFloat},
	{Name: "mu_angmax", Kind: kFloat},
	{Name: "branch_device_type", Kind: kStr},
	{Name: "interconnect", Kind: kStr},
	{Name: "from_zone_id", Kind: kInt},
	{Name: "to_zone_id", Kind: kInt},
	{Name: "from_zone_name", Kind: kStr},
	{Name: "to_zone_name", Kind: kStr},
	{Name: "from_lat", Kind: kFloat},
	{Name: "from_lon", Kind: kFloat},
	{Name: "to_lat", Kind: kFloat},
	{Name: "to_lon", Kind: kFloat},
}

var BusColumns = []col{
	{Name: "type", Kind: kInt},
	{Name: "Pd", Kind: kFloat},
	{Name: "Qd", Kind: kFloat},
	{Name: "Gs", Kind: kFloat},
	{Name: "Bs", Kind: kFloat},
	{Name: "zone_id", Kind: kInt},
	{Name: "Vm", Kind: kFloat},
	{Name: "Va", Kind: kFloat},
	{Name: "baseKV", Kind: kFloat},
	{Name: "loss_zone", Kind: kInt},
	{Name: "Vmax", Kind: kFloat},
	{Name: "Vmin", Kind: kFloat},
	{Name: "lam_P", Kind: kFloat},
	{Name: "lam_Q", Kind: kFloat},
	{Name: "mu_Vmax", Kind: kFloat},
	{Name: "mu_Vmin", Kind: kFloat},
	{Name: "interconnect", Kind: kStr},
	{Name: "eia_id", Kind: kFloat},
	{Name: "lat", Kind: kFloat},
	{Name: "lon", Kind: kFloat},
}

var Bus2SubColumns = []col{
	{Name: "sub_id", Kind: kInt},
	{Name: "interconnect", Kind: kStr},
}

var DCLineColumns = []col{
	{Name: "from_bus_id", Kind: kInt},
	{Name: "to_bus_id", Kind: kInt},
	{Name: "status", Kind: kInt},
	{Name: "Pf", Kind: kFloat},
	{Name: "Pt", Kind: kFloat},
	{Name: "Qf", Kind: kFloat},
	{Name: "Qt", Kind: kFloat},
	{Name: "Vf", Kind: kFloat},
	{Name: "Vt", Kind: kFloat},
	{Name: "Pmin", Kind: kFloat},
	{Name: "Pmax", Kind: kFloat},
	{Name: "QminF", Kind: kFloat},
	{Name: "QmaxF", Kind: kFloat},
	{Name: "QminT", Kind: kFloat},
	{Name: "QmaxT", Kind: kFloat},
	{Name: "loss0", Kind: kFloat},
	{Name: "loss1", Kind: kFloat},
	{Name: "muPmin", Kind: kFloat},
	{Name: "muPmax", Kind: kFloat},
	{Name: "muQminF", Kind: kFloat},
	{Name: "muQmaxF", Kind: kFloat},
	{Name: "muQminT", Kind: kFloat},
	{Name: "muQmaxT", Kind: kFloat},
	{Name: "from_interconnect", Kind: kStr},
	{Name: "to_interconnect", Kind: kStr},
}

// Generation cost
var GenCostColumns = []col{
	{Name: "type", Kind: kInt},
	{Name: "startup", Kind: kFloat},
	{Name: "shutdown", Kind: kFloat},
	{Name: "n", Kind: kInt},
	{Name: "c2", Kind: kFloat},
	{Name: "c1", Kind: kFloat},
	{Name: "c0", Kind: kFloat},
	{Name: "interconnect", Kind: kStr},
}

// Generator
var PlantColumns = []col{
	{Name: "bus_id", Kind: kInt},
	{Name: "Pg", Kind: kFloat},
	{Name: "Qg", Kind: kFloat},
	{Name: "Qmax", Kind: kFloat},
	{Name: "Qmin", Kind: kFloat},
	{Name: "Vg", Kind: kFloat},
	{Name: "mBase", Kind: kFloat},
	{Name: "status", Kind: kInt},
	{Name: "Pmax", Kind: kFloat},
	{Name: "Pmin", Kind: kFloat},
	{Name: "Pc1", Kind: kFloat},
	{Name: "Pc2", Kind: kFloat},
	{Name: "Qc1min", Kind: kFloat},
	{Name: "Qc1max", Kind: kFloat},
	{Name: "Qc2min", Kind: kFloat},
	{Name: "Qc2max", Kind: kFloat},
	{Name: "ramp_agc", Kind: kFloat},
	{Name: "ramp_10", Kind: kFloat},
	{Name: "ramp_30", Kind: kFloat},
	{Name: "ramp_q", Kind: kFloat},
	{Name: "apf", Kind: kFloat},
	{Name: "mu_Pmax", Kind: kFloat},
	{Name: "mu_Pmin", Kind: kFloat},
	{Name: "mu_Qmax", Kind: kFloat},
	{Name: "mu_Qmin", Kind: kFloat},
	{Name: "type", Kind: kStr},
	{Name: "interconnect", Kind: kStr},
	{Name: "GenFuelCost", Kind: kFloat},
	{Name: "GenIOB", Kind: kFloat},
	{Name: "GenIOC", Kind: kFloat},
	{Name: "GenIOD", Kind: kInt},
	{Name: "zone_id", Kind: kInt},
	{Name: "zone_name", Kind: kStr},
	{Name: "lat", Kind: kFloat},
	{Name: "lon", Kind: kFloat},
}

// Substations
var SubColumns = []col{
	{Name: "name", Kind: kStr},
	{Name: "interconnect_sub_id", Kind: kInt},
	{Name: "lat", Kind: kFloat},
	{Name: "lon", Kind: kFloat},
	{Name: "interconnect", Kind: kStr},
}

// Storage units (StorageData block of a case file)
var StorageColumns = []col{
	{Name: "UnitIdx", Kind: kInt},
	{Name: "InitialStorage", Kind: kFloat},
	{Name: "InitialStorageLowerBound", Kind: kFloat},
	{Name: "InitialStorageUpperBound", Kind: kFloat},
	{Name: "InitialStorageCost", Kind: kFloat},
	{Name: "TerminalStoragePrice", Kind: kFloat},
	{Name: "MinStorageLevel", Kind: kFloat},
	{Name: "MaxStorageLevel", Kind: kFloat},
	{Name: "OutEff", Kind: kFloat},
	{Name: "InEff", Kind: kFloat},
	{Name: "LossFactor", Kind: kFloat},
	{Name: "rho", Kind: kFloat},
	{Name: "ExpectedTerminalStorageMax", Kind: kFloat},
	{Name: "ExpectedTerminalStorageMin", Kind: kFloat},
	{Name: "duration", Kind: kFloat},
}

// Zone table of the TAMU data set.
var ZoneColumns = []col{
	{Name: "zone_name", Kind: kStr},
	{Name: "state", Kind: kStr},
	{Name: "interconnect", Kind: kStr},
	{Name: "time_zone", Kind: kStr},
}

// Columns returns the schema of a field, or nil.
func Columns(field string) []model.ColumnSpec {
	switch field {
	case FieldBus:
		return BusColumns
	case FieldBranch:
		return BranchColumns
	case FieldDCLine:
		return DCLineColumns
	case FieldGenCost:
		return GenCostColumns
	case FieldPlant:
		return PlantColumns
	case FieldSub:
		return SubColumns
	case FieldStorage:
		return StorageColumns
	case FieldBus2Sub:
		return Bus2SubColumns
	}
	return nil
}

// NewEmpty returns an empty table with the schema of field.
func NewEmpty(field string) *model.Table {
	return model.NewTable(field, Indices[field], Columns(field))
}
