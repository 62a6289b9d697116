package analysis

import (
	"sort"
	"time"
)

// ResourceSummary is the statistics of one generator type in an area.
type ResourceSummary struct {
	Type           string   `json:"type"`
	Capacity       float64  `json:"capacity"`
	Generation     float64  `json:"generation"`
	CapacityFactor float64  `json:"capacity_factor"`
	Curtailment    *float64 `json:"curtailment,omitempty"`
}

// Summarize computes the statistics of one resource. Curtailment is only
// set for profile-backed resources.
func (si *ScenarioInfo) Summarize(gentype, area string, start, end time.Time) (ResourceSummary, error) {
	s := ResourceSummary{Type: gentype}
	var err error
	if s.Capacity, err = si.Capacity(gentype, area); err != nil {
		return s, err
	}
	if s.Generation, err = si.Generation(gentype, area, start, end); err != nil {
		return s, err
	}
	if s.Capacity > 0 {
		if s.CapacityFactor, err = si.CapacityFactor(gentype, area, start, end); err != nil {
			return s, err
		}
	}
	if _, ok := si.profiles[gentype]; ok {
		if c, err := si.Curtailment(gentype, area, start, end); err == nil {
			s.Curtailment = &c
		}
	}
	return s, nil
}

// RankResources summarizes every resource available in area and sorts
// them by capacity factor, highest first.
func (si *ScenarioInfo) RankResources(area string, start, end time.Time) ([]ResourceSummary, error) {
	types, err := si.AvailableResources(area)
	if err != nil {
		return nil, err
	}
	out := make([]ResourceSummary, 0, len(types))
	for _, t := range types {
		s, err := si.Summarize(t, area, start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CapacityFactor > out[j].CapacityFactor
	})
	return out, nil
}
