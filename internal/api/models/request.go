package models

// WindowRequest selects an inclusive time window. Timestamps accept
// RFC 3339, "2006-01-02 15:04:05" or a bare date; empty bounds are open.
type WindowRequest struct {
	Start string `form:"start"`
	End   string `form:"end"`
}

// InfoRequest is the query of GET /api/v1/scenarios/:scenario/info
type InfoRequest struct {
	WindowRequest
	Area     string `form:"area"`
	Resource string `form:"resource"`
}

// RankRequest is the query of GET /api/v1/scenarios/:scenario/rank
type RankRequest struct {
	WindowRequest
	Area string `form:"area"`
}

// ProfileRequest is the query of GET /api/v1/scenarios/:scenario/input/:field
type ProfileRequest struct {
	WindowRequest
	// Columns is a comma separated list of plant or zone ids.
	Columns string `form:"columns"`
	Format  string `form:"format"`
}
