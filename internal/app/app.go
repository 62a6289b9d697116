// Package app wires configuration into the data, grid and scenario
// services shared by the binaries.
package app

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"powersimdata/internal/config"
	"powersimdata/internal/data"
	"powersimdata/internal/grid"
	"powersimdata/internal/scenario"
)

type App struct {
	Config    *config.Config
	Access    data.DataAccess
	Input     *data.InputData
	Output    *data.OutputData
	Grids     *grid.Cache
	Scenarios *scenario.Registry
	// Memory caches values computed from scenario data, such as the
	// scenario list and statistics. Nil when the memory cache is off.
	Memory *data.MemoryCache
}

func New(cfg *config.Config) (*App, error) {
	access, err := data.NewDataAccess(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to set up data access")
	}
	ttl, err := cfg.CacheTTL()
	if err != nil {
		return nil, err
	}
	var opts []data.Option
	var memory *data.MemoryCache
	if cfg.Cache.Memory {
		opts = append(opts, data.WithMemoryCache(ttl))
		memory = data.NewMemoryCache(ttl)
	}
	grids, err := grid.NewCache(cfg.Cache.GridSize)
	if err != nil {
		_ = access.Close()
		return nil, err
	}
	a := &App{
		Config: cfg,
		Access: access,
		Input:  data.NewInputData(access, cfg.LocalDir, opts...),
		Output: data.NewOutputData(access, cfg.LocalDir, opts...),
		Grids:  grids,
		Memory: memory,
	}
	a.Scenarios = scenario.NewRegistry(access, scenario.Deps{
		Grids:       grids,
		GridDataDir: cfg.GridDataDir,
		Input:       a.Input,
		Output:      a.Output,
	}, memory)
	log.WithFields(log.Fields{
		"mode":      cfg.DeploymentMode,
		"data":      access.Describe(),
		"local_dir": a.Input.LocalDir(),
	}).Info("Data access ready")
	return a, nil
}

func (a *App) Close() error {
	return a.Access.Close()
}
