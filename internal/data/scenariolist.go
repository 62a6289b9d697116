package data

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Server files listing scenarios and their execution state.
const (
	ScenarioListFile = "ScenarioList.csv"
	ExecuteListFile  = "ExecuteList.csv"
)

// ScenarioRecord is one row of the scenario list.
type ScenarioRecord struct {
	ID              string `json:"id"`
	Plan            string `json:"plan"`
	Name            string `json:"name"`
	State           string `json:"state"`
	Interconnect    string `json:"interconnect"`
	BaseDemand      string `json:"base_demand"`
	BaseHydro       string `json:"base_hydro"`
	BaseSolar       string `json:"base_solar"`
	BaseWind        string `json:"base_wind"`
	ChangeTable     string `json:"change_table"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Interval        string `json:"interval"`
	Engine          string `json:"engine"`
	Runtime         string `json:"runtime"`
	Infeasibilities string `json:"infeasibilities"`
}

// FullName is "<plan>_<name>", the prefix of the scenario input files.
func (r ScenarioRecord) FullName() string {
	return r.Plan + "_" + r.Name
}

// HasChangeTable reports whether the scenario was built with a change table.
func (r ScenarioRecord) HasChangeTable() bool {
	return strings.EqualFold(r.ChangeTable, "yes") || strings.EqualFold(r.ChangeTable, "true")
}

var scenarioColumns = map[string]func(*ScenarioRecord) *string{
	"id":              func(r *ScenarioRecord) *string { return &r.ID },
	"plan":            func(r *ScenarioRecord) *string { return &r.Plan },
	"name":            func(r *ScenarioRecord) *string { return &r.Name },
	"state":           func(r *ScenarioRecord) *string { return &r.State },
	"interconnect":    func(r *ScenarioRecord) *string { return &r.Interconnect },
	"base_demand":     func(r *ScenarioRecord) *string { return &r.BaseDemand },
	"base_hydro":      func(r *ScenarioRecord) *string { return &r.BaseHydro },
	"base_solar":      func(r *ScenarioRecord) *string { return &r.BaseSolar },
	"base_wind":       func(r *ScenarioRecord) *string { return &r.BaseWind },
	"change_table":    func(r *ScenarioRecord) *string { return &r.ChangeTable },
	"start_date":      func(r *ScenarioRecord) *string { return &r.StartDate },
	"end_date":        func(r *ScenarioRecord) *string { return &r.EndDate },
	"interval":        func(r *ScenarioRecord) *string { return &r.Interval },
	"engine":          func(r *ScenarioRecord) *string { return &r.Engine },
	"runtime":         func(r *ScenarioRecord) *string { return &r.Runtime },
	"infeasibilities": func(r *ScenarioRecord) *string { return &r.Infeasibilities },
}

// ScenarioList is the parsed scenario list.
type ScenarioList struct {
	Records []ScenarioRecord
}

// ParseScenarioList reads ScenarioList.csv. Unknown columns are ignored,
// "id" is required.
func ParseScenarioList(r io.Reader) (*ScenarioList, error) {
	rows, err := readCSV(r, "scenario list")
	if err != nil {
		return nil, err
	}
	header := rows[0]
	if !contains(header, "id") {
		return nil, errors.New("scenario list has no id column")
	}
	list := &ScenarioList{}
	for _, rec := range rows[1:] {
		var s ScenarioRecord
		for i, col := range header {
			if field, ok := scenarioColumns[col]; ok && i < len(rec) {
				*field(&s) = strings.TrimSpace(rec[i])
			}
		}
		list.Records = append(list.Records, s)
	}
	return list, nil
}

// LoadScenarioList reads the scenario list through access.
func LoadScenarioList(ctx context.Context, access DataAccess) (*ScenarioList, error) {
	rc, err := access.Open(ctx, ScenarioListFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario list")
	}
	defer rc.Close()
	return ParseScenarioList(rc)
}

// ByID finds a scenario by id.
func (l *ScenarioList) ByID(id string) (ScenarioRecord, bool) {
	for _, r := range l.Records {
		if r.ID == id {
			return r, true
		}
	}
	return ScenarioRecord{}, false
}

// ByName finds a scenario by name or full "<plan>_<name>" name.
func (l *ScenarioList) ByName(name string) (ScenarioRecord, bool) {
	for _, r := range l.Records {
		if r.Name == name || r.FullName() == name {
			return r, true
		}
	}
	return ScenarioRecord{}, false
}

// Find looks a scenario up by id first, then by name.
func (l *ScenarioList) Find(key string) (ScenarioRecord, error) {
	if r, ok := l.ByID(key); ok {
		return r, nil
	}
	if r, ok := l.ByName(key); ok {
		return r, nil
	}
	return ScenarioRecord{}, errors.Errorf("scenario %q not in scenario list", key)
}

// ExecuteList maps scenario id to execution status.
type ExecuteList map[string]string

// ParseExecuteList reads ExecuteList.csv (columns id, status).
func ParseExecuteList(r io.Reader) (ExecuteList, error) {
	rows, err := readCSV(r, "execute list")
	if err != nil {
		return nil, err
	}
	header := rows[0]
	id, status := index(header, "id"), index(header, "status")
	if id < 0 || status < 0 {
		return nil, errors.New("execute list needs id and status columns")
	}
	out := make(ExecuteList, len(rows)-1)
	for _, rec := range rows[1:] {
		if id < len(rec) && status < len(rec) {
			out[strings.TrimSpace(rec[id])] = strings.TrimSpace(rec[status])
		}
	}
	return out, nil
}

// LoadExecuteList reads the execute list through access.
func LoadExecuteList(ctx context.Context, access DataAccess) (ExecuteList, error) {
	rc, err := access.Open(ctx, ExecuteListFile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read execute list")
	}
	defer rc.Close()
	return ParseExecuteList(rc)
}

func readCSV(r io.Reader, what string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", what)
	}
	if len(rows) == 0 {
		return nil, errors.Errorf("%s is empty", what)
	}
	for i := range rows[0] {
		rows[0][i] = strings.TrimSpace(rows[0][i])
	}
	return rows, nil
}

func index(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}

func contains(header []string, name string) bool { return index(header, name) >= 0 }
