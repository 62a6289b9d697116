package data

import (
	"context"
	"io"

	"powersimdata/internal/model"
)

// Output field names.
const (
	FieldPG           = "PG"
	FieldPF           = "PF"
	FieldLMP          = "LMP"
	FieldCongU        = "CONGU"
	FieldCongL        = "CONGL"
	FieldAveragedCong = "AVERAGED_CONG"
	FieldStoragePG    = "STORAGE_PG"
	FieldStorageE     = "STORAGE_E"
)

// OutputFields are the simulation results OutputData serves.
var OutputFields = []string{
	FieldPG, FieldPF, FieldLMP, FieldCongU, FieldCongL,
	FieldAveragedCong, FieldStoragePG, FieldStorageE,
}

// OutputData serves simulation results with the same lookup order as
// InputData.
type OutputData struct {
	f *fetcher
}

func NewOutputData(remote DataAccess, localDir string, opts ...Option) *OutputData {
	return &OutputData{f: newFetcher("output", OutputSubdir, remote, localDir, opts)}
}

// GetProfile returns a time series result, indexed by plant, branch, bus
// or storage id depending on the field.
func (d *OutputData) GetProfile(ctx context.Context, scenarioID, field string) (*model.Profile, error) {
	if field == FieldAveragedCong {
		return nil, &InvalidFieldError{Field: field, Allowed: without(OutputFields, FieldAveragedCong)}
	}
	if err := checkField(field, OutputFields); err != nil {
		return nil, err
	}
	v, err := d.f.get(ctx, scenarioID+"_"+field+".csv", field, func(r io.Reader) (any, error) {
		return model.ReadProfileCSV(r, field)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Profile).Clone(), nil
}

// GetAveragedCongestion returns the branch table of mean congestion
// shadow prices (columns CONGU and CONGL).
func (d *OutputData) GetAveragedCongestion(ctx context.Context, scenarioID string) (*model.Table, error) {
	v, err := d.f.get(ctx, scenarioID+"_"+FieldAveragedCong+".csv", FieldAveragedCong, func(r io.Reader) (any, error) {
		return model.ReadTableCSV(r, FieldAveragedCong, "branch_id", nil)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Table).Clone(), nil
}

func without(in []string, drop string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s != drop {
			out = append(out, s)
		}
	}
	return out
}
