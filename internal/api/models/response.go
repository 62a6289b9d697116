package models

import "time"

// TableResponse is a grid field rendered as records keyed by column name.
type TableResponse struct {
	Name    string           `json:"name"`
	Index   string           `json:"index"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// ProfileResponse is a time series; Values[i] holds the row at Times[i].
type ProfileResponse struct {
	Name    string      `json:"name"`
	Columns []int64     `json:"columns"`
	Times   []time.Time `json:"times"`
	Values  [][]float64 `json:"values"`
}

// ScenarioListResponse lists the scenarios of the scenario list.
type ScenarioListResponse struct {
	Scenarios []ScenarioInfo `json:"scenarios"`
}

// ScenarioInfo describes one scenario-list entry.
type ScenarioInfo struct {
	ID           string `json:"id"`
	Plan         string `json:"plan"`
	Name         string `json:"name"`
	State        string `json:"state"`
	Interconnect string `json:"interconnect"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Engine       string `json:"engine,omitempty"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// InfoResponse holds the statistics of an area of a scenario.
type InfoResponse struct {
	Scenario  string           `json:"scenario"`
	Area      string           `json:"area"`
	Window    TimeWindow       `json:"window"`
	Demand    float64          `json:"demand"`
	Resources []ResourceDetail `json:"resources"`
}

// ResourceDetail holds the statistics of one generator type.
type ResourceDetail struct {
	Type                    string   `json:"type"`
	Capacity                float64  `json:"capacity"`
	Generation              float64  `json:"generation"`
	CapacityFactor          *float64 `json:"capacity_factor,omitempty"`
	Curtailment             *float64 `json:"curtailment,omitempty"`
	ProfileResource         *float64 `json:"profile_resource,omitempty"`
	NoCongestCapacityFactor *float64 `json:"no_congest_capacity_factor,omitempty"`
}

// RankResponse lists resources by capacity factor, highest first.
type RankResponse struct {
	Scenario string    `json:"scenario"`
	Area     string    `json:"area"`
	Rankings []Ranking `json:"rankings"`
}

// Ranking represents one ranked resource
type Ranking struct {
	Rank           int      `json:"rank"`
	Type           string   `json:"type"`
	Capacity       float64  `json:"capacity"`
	Generation     float64  `json:"generation"`
	CapacityFactor float64  `json:"capacity_factor"`
	Curtailment    *float64 `json:"curtailment,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
