package design

import (
	"math"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"powersimdata/internal/analysis"
	"powersimdata/internal/model"
)

// Clean energy categories a target can be expressed in.
const (
	CategoryRenewables = "Renewables"
	CategoryClean      = "Clean"
)

var ErrUnknownCategory = errors.New("unknown clean energy category")

// CategoryResources lists the generator types counted towards a category.
func CategoryResources(category string) ([]string, error) {
	renewables := []string{model.Solar, model.Wind, model.Hydro, model.Geothermal}
	switch category {
	case CategoryRenewables:
		return renewables, nil
	case CategoryClean:
		return append(renewables, model.Nuclear), nil
	}
	return nil, errors.Wrapf(ErrUnknownCategory, "%q", category)
}

// TargetManager tracks the clean energy target of one region.
type TargetManager struct {
	RegionName                     string   `json:"region_name"`
	CETargetFraction               float64  `json:"ce_target_fraction"`
	CECategory                     string   `json:"ce_category"`
	TotalDemand                    float64  `json:"total_demand"`
	ExternalCEAddlHistoricalAmount float64  `json:"external_ce_addl_historical_amount"`
	SolarPercentage                float64  `json:"solar_percentage"`
	AllowedResources               []string `json:"allowed_resources"`

	// CEGeneration is the clean energy the region already produces.
	CEGeneration float64 `json:"ce_generation"`
}

func NewTargetManager(region string, ceTargetFraction float64, ceCategory string, totalDemand, externalCEAddlHistoricalAmount, solarPercentage float64) (*TargetManager, error) {
	t := &TargetManager{
		RegionName:                     region,
		CETargetFraction:               ceTargetFraction,
		CECategory:                     ceCategory,
		TotalDemand:                    totalDemand,
		ExternalCEAddlHistoricalAmount: externalCEAddlHistoricalAmount,
		SolarPercentage:                solarPercentage,
		AllowedResources:               []string{model.Solar, model.Wind},
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *TargetManager) Validate() error {
	var result *multierror.Error
	if strings.TrimSpace(t.RegionName) == "" {
		result = multierror.Append(result, errors.New("region_name is required"))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"ce_target_fraction", t.CETargetFraction},
		{"total_demand", t.TotalDemand},
		{"external_ce_addl_historical_amount", t.ExternalCEAddlHistoricalAmount},
		{"solar_percentage", t.SolarPercentage},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			result = multierror.Append(result, errors.Errorf("%s must be a finite number, got %g", f.name, f.value))
		}
	}
	if t.CETargetFraction < 0 || t.CETargetFraction > 1 {
		result = multierror.Append(result, errors.Errorf("ce_target_fraction must be in [0, 1], got %g", t.CETargetFraction))
	}
	if _, err := CategoryResources(t.CECategory); err != nil {
		result = multierror.Append(result, err)
	}
	if t.TotalDemand < 0 {
		result = multierror.Append(result, errors.Errorf("total_demand must be >= 0, got %g", t.TotalDemand))
	}
	if t.SolarPercentage < 0 || t.SolarPercentage > 1 {
		result = multierror.Append(result, errors.Errorf("solar_percentage must be in [0, 1], got %g", t.SolarPercentage))
	}
	if err := result.ErrorOrNil(); err != nil {
		return errors.Wrapf(err, "invalid target for %q", t.RegionName)
	}
	return nil
}

// Target is the clean energy the region must produce.
func (t *TargetManager) Target() float64 {
	return t.TotalDemand * t.CETargetFraction
}

// Shortfall is the clean energy still missing once current generation and
// external historical additions are counted. It is never negative.
func (t *TargetManager) Shortfall() float64 {
	return math.Max(0, t.Target()-t.CEGeneration-t.ExternalCEAddlHistoricalAmount)
}

// SolarShortfall and WindShortfall split the shortfall by SolarPercentage.
func (t *TargetManager) SolarShortfall() float64 { return t.Shortfall() * t.SolarPercentage }

func (t *TargetManager) WindShortfall() float64 { return t.Shortfall() * (1 - t.SolarPercentage) }

// PopulateFromScenario sets CEGeneration from the generation of the
// category's resources in the region, read as an area of info.
func (t *TargetManager) PopulateFromScenario(info *analysis.ScenarioInfo) error {
	resources, err := CategoryResources(t.CECategory)
	if err != nil {
		return err
	}
	available, err := info.AvailableResources(t.RegionName)
	if err != nil {
		return errors.Wrapf(err, "region %q", t.RegionName)
	}
	start, end := info.Window()
	total := 0.0
	for _, r := range resources {
		if !contains(available, r) {
			continue
		}
		gen, err := info.Generation(r, t.RegionName, start, end)
		if err != nil {
			return err
		}
		total += gen
	}
	t.CEGeneration = total
	log.WithFields(log.Fields{
		"region":     t.RegionName,
		"category":   t.CECategory,
		"generation": total,
		"shortfall":  t.Shortfall(),
	}).Debug("Target populated from scenario")
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
