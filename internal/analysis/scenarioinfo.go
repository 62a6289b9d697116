package analysis

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"powersimdata/internal/data"
	"powersimdata/internal/grid"
	"powersimdata/internal/model"
	"powersimdata/internal/scenario"
)

var (
	// ErrNotProfileResource is returned for curtailment and related
	// statistics of a generator type without an input profile.
	ErrNotProfileResource = errors.New("only solar, wind and hydro are backed by a profile")
	// ErrNoCapacity is returned when a ratio over capacity has no capacity.
	ErrNoCapacity = errors.New("no such type of generator in the area specified")
)

// ScenarioInfo computes statistics over one scenario. Time windows are
// inclusive on both ends; a zero bound is open.
type ScenarioInfo struct {
	Record data.ScenarioRecord

	grid     *grid.Grid
	plant    *model.Table
	pg       *model.Profile
	demand   *model.Profile
	profiles map[string]*model.Profile
}

// NewScenarioInfo loads the grid, generation, demand and resource profiles
// of s.
func NewScenarioInfo(ctx context.Context, s scenario.Scenario) (*ScenarioInfo, error) {
	g, err := s.Grid(ctx)
	if err != nil {
		return nil, err
	}
	plant, err := g.Get(grid.FieldPlant)
	if err != nil {
		return nil, err
	}
	pg, err := s.PG(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load generation")
	}
	demand, err := s.Profile(ctx, data.FieldDemand)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load demand")
	}
	info := &ScenarioInfo{
		Record:   s.Record(),
		grid:     g,
		plant:    plant,
		pg:       pg,
		demand:   demand,
		profiles: make(map[string]*model.Profile, len(model.ProfileResources)),
	}
	for _, r := range model.ProfileResources {
		p, err := s.Profile(ctx, r)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load %s profile", r)
		}
		info.profiles[r] = p
	}
	return info, nil
}

// Grid returns the scenario grid.
func (si *ScenarioInfo) Grid() *grid.Grid { return si.grid }

// Window is the time span covered by the generation profile.
func (si *ScenarioInfo) Window() (time.Time, time.Time) {
	times := si.pg.Times()
	if len(times) == 0 {
		return time.Time{}, time.Time{}
	}
	return times[0], times[len(times)-1]
}

// plantsIn returns rows of plants in area, optionally of one type.
func (si *ScenarioInfo) plantsIn(area, gentype string) ([]int, error) {
	zones, err := loadZones(si.grid, area)
	if err != nil {
		return nil, err
	}
	var rows []int
	for row := 0; row < si.plant.Len(); row++ {
		if gentype != "" && si.plant.String("type", row) != gentype {
			continue
		}
		if _, ok := zones[si.plant.String("zone_name", row)]; ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (si *ScenarioInfo) plantIDs(rows []int) []int64 {
	ids := make([]int64, len(rows))
	for i, r := range rows {
		ids[i] = si.plant.ID(r)
	}
	return ids
}

// AvailableResources lists the generator types present in area, in the
// order they first appear in the plant table.
func (si *ScenarioInfo) AvailableResources(area string) ([]string, error) {
	rows, err := si.plantsIn(area, "")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range rows {
		t := si.plant.String("type", r)
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out, nil
}

// Demand is the total demand of the area's load zones over the window.
func (si *ScenarioInfo) Demand(area string, start, end time.Time) (float64, error) {
	zones, err := loadZones(si.grid, area)
	if err != nil {
		return 0, err
	}
	zone2id := si.grid.Zone2ID()
	ids := make([]int64, 0, len(zones))
	for _, z := range sortedZones(zones) {
		if id, ok := zone2id[z]; ok {
			ids = append(ids, id)
		}
	}
	return si.demand.Sum(ids, start, end), nil
}

// Capacity is the total Pmax of gentype plants in area. A zero capacity
// is logged as a warning.
func (si *ScenarioInfo) Capacity(gentype, area string) (float64, error) {
	rows, err := si.plantsIn(area, gentype)
	if err != nil {
		return 0, err
	}
	total := si.plant.Sum("Pmax", rows)
	if total == 0 {
		log.WithFields(log.Fields{"type": gentype, "area": area}).Warn("No such type of generator in the area specified")
	}
	return total, nil
}

// Generation is the total output of gentype plants in area over the window.
func (si *ScenarioInfo) Generation(gentype, area string, start, end time.Time) (float64, error) {
	rows, err := si.plantsIn(area, gentype)
	if err != nil {
		return 0, err
	}
	return si.pg.Sum(si.plantIDs(rows), start, end), nil
}

// ProfileResource is the energy available to gentype plants in area over
// the window according to the input profile.
func (si *ScenarioInfo) ProfileResource(gentype, area string, start, end time.Time) (float64, error) {
	p, ok := si.profiles[gentype]
	if !ok {
		return 0, errors.Wrapf(ErrNotProfileResource, "%q", gentype)
	}
	rows, err := si.plantsIn(area, gentype)
	if err != nil {
		return 0, err
	}
	return p.Sum(si.plantIDs(rows), start, end), nil
}

// Curtailment is 1 - generation/profile resource, rounded to four decimals.
func (si *ScenarioInfo) Curtailment(gentype, area string, start, end time.Time) (float64, error) {
	if !model.IsProfileResource(gentype) {
		return 0, errors.Wrapf(ErrNotProfileResource, "%q", gentype)
	}
	gen, err := si.Generation(gentype, area, start, end)
	if err != nil {
		return 0, err
	}
	res, err := si.ProfileResource(gentype, area, start, end)
	if err != nil {
		return 0, err
	}
	if res == 0 {
		return 0, errors.Errorf("no %s resource in %s", gentype, area)
	}
	return round4(1 - gen/res), nil
}

// hours counts the hours of an inclusive window. Open bounds fall back on
// the generation profile's own span.
func (si *ScenarioInfo) hours(start, end time.Time) float64 {
	first, last := si.Window()
	if start.IsZero() {
		start = first
	}
	if end.IsZero() {
		end = last
	}
	return end.Sub(start).Hours() + 1
}

// CapacityFactor is generation/(capacity*hours), rounded to four decimals.
func (si *ScenarioInfo) CapacityFactor(gentype, area string, start, end time.Time) (float64, error) {
	capacity, err := si.Capacity(gentype, area)
	if err != nil {
		return 0, err
	}
	if capacity == 0 {
		return 0, errors.Wrapf(ErrNoCapacity, "%s in %s", gentype, area)
	}
	gen, err := si.Generation(gentype, area, start, end)
	if err != nil {
		return 0, err
	}
	return round4(gen / (capacity * si.hours(start, end))), nil
}

// NoCongestCapacityFactor is the capacity factor the plants would reach
// without curtailment: profile resource/(capacity*hours).
func (si *ScenarioInfo) NoCongestCapacityFactor(gentype, area string, start, end time.Time) (float64, error) {
	if !model.IsProfileResource(gentype) {
		return 0, errors.Wrapf(ErrNotProfileResource, "%q", gentype)
	}
	capacity, err := si.Capacity(gentype, area)
	if err != nil {
		return 0, err
	}
	if capacity == 0 {
		return 0, errors.Wrapf(ErrNoCapacity, "%s in %s", gentype, area)
	}
	res, err := si.ProfileResource(gentype, area, start, end)
	if err != nil {
		return 0, err
	}
	return round4(res / (capacity * si.hours(start, end))), nil
}

func round4(x float64) float64 {
	return math.Round(x*1e4) / 1e4
}
