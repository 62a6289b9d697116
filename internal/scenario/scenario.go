package scenario

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"powersimdata/internal/data"
	"powersimdata/internal/grid"
	"powersimdata/internal/model"
)

var (
	// ErrNoData is returned when a scenario has no data for a field.
	ErrNoData = errors.New("scenario has no such data")
	// ErrNotFound is returned for a scenario missing from the scenario list.
	ErrNotFound = errors.New("scenario not found")
)

// Scenario gives access to everything needed to analyse one scenario.
type Scenario interface {
	Record() data.ScenarioRecord
	Grid(ctx context.Context) (*grid.Grid, error)
	// Profile returns an input profile: demand, hydro, solar or wind.
	Profile(ctx context.Context, field string) (*model.Profile, error)
	// PG returns the simulated generation, one column per plant.
	PG(ctx context.Context) (*model.Profile, error)
}

// Deps are the shared services a Loaded scenario reads through.
type Deps struct {
	Grids       *grid.Cache
	GridDataDir string
	Input       *data.InputData
	Output      *data.OutputData
}

// Loaded is a scenario of the scenario list. Data is fetched on first use
// and kept for the life of the value.
type Loaded struct {
	record data.ScenarioRecord
	deps   Deps

	mu       sync.Mutex
	grid     *grid.Grid
	profiles map[string]*model.Profile
	pg       *model.Profile
}

func NewLoaded(record data.ScenarioRecord, deps Deps) *Loaded {
	return &Loaded{record: record, deps: deps, profiles: make(map[string]*model.Profile)}
}

func (s *Loaded) Record() data.ScenarioRecord { return s.record }

func (s *Loaded) Grid(ctx context.Context) (*grid.Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.grid != nil {
		return s.grid, nil
	}
	if s.deps.Grids == nil {
		return nil, errors.Wrap(ErrNoData, "no grid cache configured")
	}
	g, err := s.deps.Grids.Get(grid.Options{
		Interconnect: grid.ParseInterconnect(s.record.Interconnect),
		DataDir:      s.deps.GridDataDir,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", s.record.ID)
	}
	s.grid = g
	return g, nil
}

func (s *Loaded) Profile(ctx context.Context, field string) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.profiles[field]; ok {
		return p, nil
	}
	if s.deps.Input == nil {
		return nil, errors.Wrap(ErrNoData, "no input data configured")
	}
	p, err := s.deps.Input.GetProfile(ctx, s.record.ID, field)
	if err != nil {
		return nil, err
	}
	s.profiles[field] = p
	return p, nil
}

func (s *Loaded) PG(ctx context.Context) (*model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pg != nil {
		return s.pg, nil
	}
	if s.deps.Output == nil {
		return nil, errors.Wrap(ErrNoData, "no output data configured")
	}
	pg, err := s.deps.Output.GetProfile(ctx, s.record.ID, data.FieldPG)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"scenario": s.record.ID, "plants": len(pg.Columns())}).Debug("Loaded PG")
	s.pg = pg
	return pg, nil
}
