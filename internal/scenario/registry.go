package scenario

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"powersimdata/internal/data"
)

const scenarioListKey = "scenario_list"

// Registry resolves scenario-list entries into Loaded scenarios. Opened
// scenarios live in the memory cache and are dropped with its TTL.
type Registry struct {
	access data.DataAccess
	deps   Deps
	memory *data.MemoryCache

	mu sync.Mutex
}

// NewRegistry reads the scenario list through access. memory may be nil,
// in which case the list is read and scenarios are built on every call.
func NewRegistry(access data.DataAccess, deps Deps, memory *data.MemoryCache) *Registry {
	return &Registry{access: access, deps: deps, memory: memory}
}

// List returns the scenario list.
func (r *Registry) List(ctx context.Context) (*data.ScenarioList, error) {
	if v, ok := r.memory.Get(scenarioListKey); ok {
		return v.(*data.ScenarioList), nil
	}
	list, err := data.LoadScenarioList(ctx, r.access)
	if err != nil {
		return nil, err
	}
	r.memory.Set(scenarioListKey, list)
	log.WithFields(log.Fields{"scenarios": len(list.Records), "source": r.access.Describe()}).Debug("Scenario list loaded")
	return list, nil
}

// Open returns the scenario with the given id or name.
func (r *Registry) Open(ctx context.Context, key string) (Scenario, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := list.Find(key)
	if err != nil {
		return nil, errors.Wrap(ErrNotFound, err.Error())
	}
	cacheKey := data.GenerateCacheKey("scenario", rec.ID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.memory.Get(cacheKey); ok {
		return v.(*Loaded), nil
	}
	s := NewLoaded(rec, r.deps)
	r.memory.Set(cacheKey, s)
	return s, nil
}
