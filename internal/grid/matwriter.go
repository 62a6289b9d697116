package grid

import (
	"github.com/pkg/errors"

	"powersimdata/internal/matfile"
	"powersimdata/internal/model"
)

// WriteREISE writes g as a REISE case file readable by New with the .mat
// path as source. Costs are written as quadratic polynomials.
func WriteREISE(g *Grid, path string) error {
	vars, err := reiseCase(g)
	if err != nil {
		return err
	}
	return errors.Wrapf(matfile.WriteFile(path, vars...), "failed to write %s", path)
}

func reiseCase(g *Grid) ([]*matfile.Var, error) {
	bus := g.fields[FieldBus].Data
	plant := g.fields[FieldPlant].Data
	branch := g.fields[FieldBranch].Data
	dcline := g.fields[FieldDCLine].Data
	gencost := g.fields[FieldGenCost].Data
	storage := g.fields[FieldStorage].Data

	busRows := make([][]float64, bus.Len())
	for row := range busRows {
		busRows[row] = append([]float64{float64(bus.ID(row))}, numbers(bus, matBusColumns, row)...)
	}

	genRows := make([][]float64, plant.Len())
	costRows := make([][]float64, plant.Len())
	for row := range genRows {
		genRows[row] = numbers(plant, matGenColumns, row)
		costRows[row] = []float64{2, 0, 0, 3, 0, 0, 0}
		if r, ok := gencost.Row(plant.ID(row)); ok {
			costRows[row] = []float64{
				gencost.Float("type", r), gencost.Float("startup", r), gencost.Float("shutdown", r),
				3, gencost.Float("c2", r), gencost.Float("c1", r), gencost.Float("c0", r),
			}
		}
	}

	branchRows := make([][]float64, branch.Len())
	for row := range branchRows {
		branchRows[row] = numbers(branch, matBranchColumns, row)
	}

	fields := []*matfile.Var{
		matfile.NewMatrix("bus", busRows),
		matfile.NewMatrix("gen", genRows),
		matfile.NewMatrix("branch", branchRows),
		matfile.NewMatrix("gencost", costRows),
		matfile.NewCellColumn("genfuel", plant.Strings("type")),
		matfile.NewMatrix("genid", idColumn(plant)),
		matfile.NewMatrix("branchid", idColumn(branch)),
	}
	if dcline.Len() > 0 {
		dcRows := make([][]float64, dcline.Len())
		for row := range dcRows {
			dcRows[row] = numbers(dcline, matDCLineColumns, row)
		}
		fields = append(fields,
			matfile.NewMatrix("dcline", dcRows),
			matfile.NewMatrix("dclineid", idColumn(dcline)),
		)
	}
	vars := []*matfile.Var{matfile.NewStruct("mpc", fields...)}

	if storage.Len() > 0 {
		names := make([]string, len(StorageColumns))
		for i, c := range StorageColumns {
			names[i] = c.Name
		}
		rows := make([][]float64, storage.Len())
		for row := range rows {
			rows[row] = numbers(storage, names, row)
		}
		vars = append(vars, matfile.NewStruct("mpc_storage",
			matfile.NewStruct("storage", matfile.NewMatrix("StorageData", rows)),
		))
	}
	return vars, nil
}

func numbers(t *model.Table, cols []string, row int) []float64 {
	out := make([]float64, len(cols))
	for i, c := range cols {
		out[i] = t.Float(c, row)
	}
	return out
}

func idColumn(t *model.Table) [][]float64 {
	out := make([][]float64, t.Len())
	for row := range out {
		out[row] = []float64{float64(t.ID(row))}
	}
	return out
}
