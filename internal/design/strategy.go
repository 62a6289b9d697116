package design

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"powersimdata/internal/analysis"
)

// Strategies a planning table may name.
const (
	StrategyIndependent   = "Independent"
	StrategyCollaborative = "Collaborative"
)

// requiredColumns must appear in a planning table; strategy and
// allowed_resources are optional.
var requiredColumns = []string{
	"region_name", "ce_category", "ce_target_fraction", "total_demand",
	"external_ce_addl_historical_amount", "solar_percentage",
}

// StrategyManager holds the targets of every region of a plan.
type StrategyManager struct {
	Strategy string
	Targets  map[string]*TargetManager
}

func NewStrategyManager() *StrategyManager {
	return &StrategyManager{Strategy: StrategyIndependent, Targets: make(map[string]*TargetManager)}
}

// Regions returns region names in sorted order.
func (s *StrategyManager) Regions() []string {
	out := make([]string, 0, len(s.Targets))
	for r := range s.Targets {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// TargetsFromFile reads a planning CSV from disk.
func (s *StrategyManager) TargetsFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open planning table")
	}
	defer f.Close()
	return s.TargetsFromTable(f)
}

// TargetsFromTable adds one target per row of a planning CSV. Rows that
// fail to parse are reported together and none of the table is applied.
func (s *StrategyManager) TargetsFromTable(r io.Reader) error {
	rd := csv.NewReader(r)
	rd.TrimLeadingSpace = true
	records, err := rd.ReadAll()
	if err != nil {
		return errors.Wrap(err, "failed to read planning table")
	}
	if len(records) == 0 {
		return errors.New("planning table is empty")
	}
	col := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		col[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return errors.Errorf("planning table is missing column %q", name)
		}
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var result *multierror.Error
	parsed := make(map[string]*TargetManager, len(records)-1)
	strategy := ""
	for n, rec := range records[1:] {
		line := n + 2
		nums := make(map[string]float64, 4)
		for _, name := range []string{"ce_target_fraction", "total_demand", "external_ce_addl_historical_amount", "solar_percentage"} {
			v, err := strconv.ParseFloat(get(rec, name), 64)
			if err != nil {
				result = multierror.Append(result, errors.Errorf("line %d: bad %s %q", line, name, get(rec, name)))
				continue
			}
			nums[name] = v
		}
		if len(nums) < 4 {
			continue
		}
		t, err := NewTargetManager(get(rec, "region_name"), nums["ce_target_fraction"], get(rec, "ce_category"),
			nums["total_demand"], nums["external_ce_addl_historical_amount"], nums["solar_percentage"])
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "line %d", line))
			continue
		}
		if _, dup := parsed[t.RegionName]; dup {
			result = multierror.Append(result, errors.Errorf("line %d: duplicate region %q", line, t.RegionName))
			continue
		}
		if allowed := splitResources(get(rec, "allowed_resources")); len(allowed) > 0 {
			t.AllowedResources = allowed
		}
		if st := get(rec, "strategy"); st != "" {
			if st != StrategyIndependent && st != StrategyCollaborative {
				result = multierror.Append(result, errors.Errorf("line %d: unknown strategy %q", line, st))
				continue
			}
			if strategy != "" && st != strategy {
				result = multierror.Append(result, errors.Errorf("line %d: mixed strategies %q and %q", line, strategy, st))
				continue
			}
			strategy = st
		}
		parsed[t.RegionName] = t
	}
	if err := result.ErrorOrNil(); err != nil {
		return err
	}
	if strategy != "" {
		s.Strategy = strategy
	}
	for name, t := range parsed {
		s.Targets[name] = t
	}
	return nil
}

func splitResources(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' || r == ' ' || r == '|' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}

// PopulateFromScenario fills every target's current clean generation.
func (s *StrategyManager) PopulateFromScenario(info *analysis.ScenarioInfo) error {
	var result *multierror.Error
	for _, r := range s.Regions() {
		if err := s.Targets[r].PopulateFromScenario(info); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// TotalShortfall is the clean energy missing across the plan. Independent
// regions each cover their own shortfall; collaborative regions pool
// their surpluses.
func (s *StrategyManager) TotalShortfall() float64 {
	total := 0.0
	if s.Strategy == StrategyCollaborative {
		for _, t := range s.Targets {
			total += t.Target() - t.CEGeneration - t.ExternalCEAddlHistoricalAmount
		}
		return math.Max(0, total)
	}
	for _, t := range s.Targets {
		total += t.Shortfall()
	}
	return total
}
