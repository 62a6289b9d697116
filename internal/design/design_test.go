package design

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powersimdata/internal/analysis"
	"powersimdata/internal/scenario/testfixtures"
)

const planning = `strategy,region_name,ce_category,ce_target_fraction,total_demand,external_ce_addl_historical_amount,solar_percentage,allowed_resources
Independent,Pacific,Renewables,0.25,200000,0,0.3,solar
Independent,Atlantic,Clean,0.4,300000,0,0.6,wind
`

func TestNewTargetManager(t *testing.T) {
	tm, err := NewTargetManager("Pacific", 0.25, CategoryRenewables, 200000, 10000, 0.3)
	require.NoError(t, err)
	assert.Equal(t, "Renewables", tm.CECategory)
	assert.InDelta(t, 50000.0, tm.Target(), 1e-9)
	assert.InDelta(t, 40000.0, tm.Shortfall(), 1e-9)
	assert.InDelta(t, 12000.0, tm.SolarShortfall(), 1e-9)
	assert.InDelta(t, 28000.0, tm.WindShortfall(), 1e-9)

	tm.CEGeneration = 60000
	assert.Zero(t, tm.Shortfall())
}

func TestNewTargetManager_Invalid(t *testing.T) {
	_, err := NewTargetManager("", 1.5, "Green", -1, 0, 2)
	require.Error(t, err)
	for _, want := range []string{"region_name", "ce_target_fraction", "total_demand", "solar_percentage", "Green"} {
		assert.Contains(t, err.Error(), want)
	}
	_, err = NewTargetManager("Pacific", math.NaN(), CategoryClean, 100, 0, 0.5)
	assert.ErrorContains(t, err, "ce_target_fraction must be a finite number")
	_, err = NewTargetManager("Pacific", 0.5, CategoryClean, 100, math.NaN(), math.NaN())
	assert.ErrorContains(t, err, "external_ce_addl_historical_amount")
	assert.ErrorContains(t, err, "solar_percentage")

	_, err = CategoryResources("Green")
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestTargetsFromTable(t *testing.T) {
	s := NewStrategyManager()
	require.NoError(t, s.TargetsFromTable(strings.NewReader(planning)))

	assert.Equal(t, []string{"Atlantic", "Pacific"}, s.Regions())
	assert.Equal(t, "Renewables", s.Targets["Pacific"].CECategory)
	assert.Equal(t, "Clean", s.Targets["Atlantic"].CECategory)
	assert.Equal(t, []string{"wind"}, s.Targets["Atlantic"].AllowedResources)
	assert.Equal(t, StrategyIndependent, s.Strategy)
	assert.InDelta(t, 50000.0+120000.0, s.TotalShortfall(), 1e-9)
}

func TestTargetsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.csv")
	require.NoError(t, os.WriteFile(path, []byte(planning), 0o644))
	s := NewStrategyManager()
	require.NoError(t, s.TargetsFromFile(path))
	assert.Len(t, s.Targets, 2)
}

func TestTargetsFromTable_Errors(t *testing.T) {
	tests := map[string]string{
		"missing column": "region_name,ce_category\nPacific,Clean\n",
		"bad number":     "region_name,ce_category,ce_target_fraction,total_demand,external_ce_addl_historical_amount,solar_percentage\nPacific,Clean,x,1,0,0.5\n",
		"bad strategy":   "strategy,region_name,ce_category,ce_target_fraction,total_demand,external_ce_addl_historical_amount,solar_percentage\nSolo,Pacific,Clean,0.5,1,0,0.5\n",
		"empty":          "",
		"nan target":     "region_name,ce_category,ce_target_fraction,total_demand,external_ce_addl_historical_amount,solar_percentage\nPacific,Clean,NaN,1,0,0.5\n",
		"inf demand":     "region_name,ce_category,ce_target_fraction,total_demand,external_ce_addl_historical_amount,solar_percentage\nPacific,Clean,0.5,+Inf,0,0.5\n",
		"duplicate":      "region_name,ce_category,ce_target_fraction,total_demand,external_ce_addl_historical_amount,solar_percentage\nPacific,Clean,0.5,1,0,0.5\nPacific,Renewables,0.2,1,0,0.5\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewStrategyManager()
			assert.Error(t, s.TargetsFromTable(strings.NewReader(in)))
			assert.Empty(t, s.Targets)
		})
	}
}

func TestTotalShortfall_Collaborative(t *testing.T) {
	s := NewStrategyManager()
	s.Strategy = StrategyCollaborative
	a, err := NewTargetManager("a", 0.5, CategoryClean, 100, 0, 0.5)
	require.NoError(t, err)
	b, err := NewTargetManager("b", 0.5, CategoryClean, 100, 0, 0.5)
	require.NoError(t, err)
	a.CEGeneration = 80
	b.CEGeneration = 10
	s.Targets["a"], s.Targets["b"] = a, b

	assert.InDelta(t, 10.0, s.TotalShortfall(), 1e-9)
	s.Strategy = StrategyIndependent
	assert.InDelta(t, 40.0, s.TotalShortfall(), 1e-9)
}

func TestPopulateFromScenario(t *testing.T) {
	mock, err := testfixtures.Mock()
	require.NoError(t, err)
	info, err := analysis.NewScenarioInfo(context.Background(), mock)
	require.NoError(t, err)

	s := NewStrategyManager()
	zone1, err := NewTargetManager("zone1", 0.5, CategoryRenewables, 4800, 0, 1)
	require.NoError(t, err)
	zone2, err := NewTargetManager("zone2", 0.5, CategoryRenewables, 1500, 0, 0)
	require.NoError(t, err)
	s.Targets["zone1"], s.Targets["zone2"] = zone1, zone2
	require.NoError(t, s.PopulateFromScenario(info))

	// zone1 renewables: solar 300 + hydro 1800; zone2: wind 600.
	assert.InDelta(t, 2100.0, zone1.CEGeneration, 1e-9)
	assert.InDelta(t, 300.0, zone1.Shortfall(), 1e-9)
	assert.InDelta(t, 600.0, zone2.CEGeneration, 1e-9)
	assert.InDelta(t, 150.0, zone2.Shortfall(), 1e-9)

	bad, err := NewTargetManager("Quebec", 0.5, CategoryClean, 1, 0, 0)
	require.NoError(t, err)
	s.Targets["Quebec"] = bad
	assert.True(t, errors.Is(s.PopulateFromScenario(info), analysis.ErrInvalidArea))
}
