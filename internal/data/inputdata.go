package data

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"powersimdata/internal/model"
)

// Input field names.
const (
	FieldDemand      = "demand"
	FieldHydro       = "hydro"
	FieldSolar       = "solar"
	FieldWind        = "wind"
	FieldChangeTable = "ct"
)

// InputFields are the fields InputData serves.
var InputFields = []string{FieldDemand, FieldHydro, FieldSolar, FieldWind, FieldChangeTable}

// ProfileFields are the time series among InputFields.
var ProfileFields = []string{FieldDemand, FieldHydro, FieldSolar, FieldWind}

// Remote locations relative to the data root.
const (
	InputSubdir  = "data/input"
	OutputSubdir = "data/output"
)

// InvalidFieldError is returned for a field name a data source does not serve.
type InvalidFieldError struct {
	Field   string
	Allowed []string
}

func (e *InvalidFieldError) Error() string {
	n := len(e.Allowed)
	switch n {
	case 0:
		return fmt.Sprintf("unknown field %q", e.Field)
	case 1:
		return fmt.Sprintf("can only get %s data", e.Allowed[0])
	}
	return fmt.Sprintf("can only get %s and %s data", strings.Join(e.Allowed[:n-1], ", "), e.Allowed[n-1])
}

func checkField(field string, allowed []string) error {
	for _, f := range allowed {
		if f == field {
			return nil
		}
	}
	return &InvalidFieldError{Field: field, Allowed: allowed}
}

// DefaultLocalDir is ~/scenario_data/.
func DefaultLocalDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, "scenario_data") + string(filepath.Separator)
}

// Option configures InputData and OutputData.
type Option func(*fetcher)

// WithMemoryCache keeps decoded files in memory for ttl.
func WithMemoryCache(ttl time.Duration) Option {
	return func(f *fetcher) { f.memory = NewMemoryCache(ttl) }
}

// WithRemoteDir overrides where files are looked up on the server.
func WithRemoteDir(dir string) Option {
	return func(f *fetcher) { f.remoteDir = dir }
}

func newFetcher(kind, remoteDir string, remote DataAccess, localDir string, opts []Option) *fetcher {
	if localDir == "" {
		localDir = DefaultLocalDir()
		log.Infof("Use %s to save/load scenario data.", localDir)
	}
	f := &fetcher{
		kind:      kind,
		remoteDir: remoteDir,
		remote:    remote,
		store:     &LocalStore{Dir: localDir},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// InputData serves the input profiles and change table of scenarios,
// reading the local directory first and downloading what is missing.
type InputData struct {
	f *fetcher
}

// NewInputData reads from remote under InputSubdir and keeps files in
// localDir; an empty localDir means DefaultLocalDir.
func NewInputData(remote DataAccess, localDir string, opts ...Option) *InputData {
	return &InputData{f: newFetcher("input", InputSubdir, remote, localDir, opts)}
}

// LocalDir is where files are saved.
func (d *InputData) LocalDir() string { return d.f.store.Dir }

// FileName is the name of a scenario input file, e.g. "87_solar.csv".
func FileName(scenario, field string) string {
	ext := ".csv"
	if field == FieldChangeTable {
		ext = ".json"
	}
	return scenario + "_" + field + ext
}

// GetData returns a *model.Profile for profile fields and a ChangeTable
// for "ct".
func (d *InputData) GetData(ctx context.Context, scenario, field string) (any, error) {
	if err := checkField(field, InputFields); err != nil {
		return nil, err
	}
	if field == FieldChangeTable {
		return d.GetChangeTable(ctx, scenario)
	}
	return d.GetProfile(ctx, scenario, field)
}

// GetProfile returns the demand, hydro, solar or wind profile of a scenario.
func (d *InputData) GetProfile(ctx context.Context, scenario, field string) (*model.Profile, error) {
	if err := checkField(field, ProfileFields); err != nil {
		return nil, err
	}
	v, err := d.f.get(ctx, FileName(scenario, field), field, func(r io.Reader) (any, error) {
		return model.ReadProfileCSV(r, field)
	})
	if err != nil {
		return nil, err
	}
	return v.(*model.Profile).Clone(), nil
}

// GetChangeTable returns the change table of a scenario.
func (d *InputData) GetChangeTable(ctx context.Context, scenario string) (ChangeTable, error) {
	v, err := d.f.get(ctx, FileName(scenario, FieldChangeTable), FieldChangeTable, func(r io.Reader) (any, error) {
		ct := ChangeTable{}
		if err := decodeJSON(r, &ct); err != nil {
			return nil, err
		}
		return ct, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(ChangeTable).clone(), nil
}

// SaveChangeTable writes a change table into the local directory.
func (d *InputData) SaveChangeTable(scenario string, ct ChangeTable) error {
	return d.f.store.SaveJSON(FileName(scenario, FieldChangeTable), ct)
}

// Prefetch makes sure every input file of a scenario is available locally.
// Missing files are reported but do not stop the others.
func (d *InputData) Prefetch(ctx context.Context, scenario string, fields ...string) map[string]error {
	if len(fields) == 0 {
		fields = InputFields
	}
	out := make(map[string]error, len(fields))
	for _, field := range fields {
		_, err := d.GetData(ctx, scenario, field)
		out[field] = err
	}
	return out
}
