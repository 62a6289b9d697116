package model

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Profile is an hourly (or any fixed step) time series table.
// Rows are timestamps in UTC; columns are plant ids for generation
// profiles or load-zone ids for demand.
//
// Example, a solar profile for two plants:
//
//	UTC,101,107
//	2016-01-01T00:00:00Z,0,0
//	2016-01-01T01:00:00Z,12.5,3.1
type Profile struct {
	Name string

	times   []time.Time
	columns []int64
	colPos  map[int64]int
	// values[col][row]
	values [][]float64
}

// NewProfile allocates a zero-filled profile.
func NewProfile(name string, times []time.Time, columns []int64) *Profile {
	p := &Profile{
		Name:    name,
		times:   append([]time.Time(nil), times...),
		columns: append([]int64(nil), columns...),
		colPos:  make(map[int64]int, len(columns)),
		values:  make([][]float64, len(columns)),
	}
	for i, c := range columns {
		p.colPos[c] = i
		p.values[i] = make([]float64, len(times))
	}
	return p
}

// HourlyIndex builds n timestamps spaced one hour apart starting at start.
func HourlyIndex(start time.Time, n int) []time.Time {
	out := make([]time.Time, n)
	for i := range out {
		out[i] = start.Add(time.Duration(i) * time.Hour)
	}
	return out
}

func (p *Profile) Len() int { return len(p.times) }

// Times returns the row index. The slice must not be modified.
func (p *Profile) Times() []time.Time { return p.times }

// Columns returns the column ids. The slice must not be modified.
func (p *Profile) Columns() []int64 { return p.columns }

func (p *Profile) HasColumn(id int64) bool {
	_, ok := p.colPos[id]
	return ok
}

// Column returns the backing slice of one column, or nil.
func (p *Profile) Column(id int64) []float64 {
	pos, ok := p.colPos[id]
	if !ok {
		return nil
	}
	return p.values[pos]
}

func (p *Profile) Set(row int, id int64, v float64) error {
	pos, ok := p.colPos[id]
	if !ok {
		return errors.Errorf("%s: no column %d", p.Name, id)
	}
	if row < 0 || row >= len(p.times) {
		return errors.Errorf("%s: row %d out of range", p.Name, row)
	}
	p.values[pos][row] = v
	return nil
}

func (p *Profile) At(row int, id int64) float64 {
	pos, ok := p.colPos[id]
	if !ok {
		return 0
	}
	return p.values[pos][row]
}

// Window returns the half-open row range [lo, hi) of timestamps within
// [start, end]. Both bounds are inclusive, and a zero bound is unbounded.
func (p *Profile) Window(start, end time.Time) (lo, hi int) {
	lo = 0
	hi = len(p.times)
	if !start.IsZero() {
		lo = sort.Search(len(p.times), func(i int) bool { return !p.times[i].Before(start) })
	}
	if !end.IsZero() {
		hi = sort.Search(len(p.times), func(i int) bool { return p.times[i].After(end) })
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// Rows counts the timestamps within [start, end].
func (p *Profile) Rows(start, end time.Time) int {
	lo, hi := p.Window(start, end)
	return hi - lo
}

// Sum adds the given columns over the window. Unknown ids contribute nothing.
func (p *Profile) Sum(ids []int64, start, end time.Time) float64 {
	lo, hi := p.Window(start, end)
	total := 0.0
	for _, id := range ids {
		col := p.Column(id)
		if col == nil {
			continue
		}
		for _, v := range col[lo:hi] {
			total += v
		}
	}
	return total
}

// Select returns a new profile restricted to the given columns and window.
func (p *Profile) Select(ids []int64, start, end time.Time) *Profile {
	lo, hi := p.Window(start, end)
	keep := make([]int64, 0, len(ids))
	for _, id := range ids {
		if p.HasColumn(id) {
			keep = append(keep, id)
		}
	}
	out := NewProfile(p.Name, p.times[lo:hi], keep)
	for i, id := range keep {
		copy(out.values[i], p.Column(id)[lo:hi])
	}
	return out
}

// Scale returns a copy with every value multiplied by factor.
func (p *Profile) Scale(factor float64) *Profile {
	out := p.Clone()
	for _, col := range out.values {
		for i := range col {
			col[i] *= factor
		}
	}
	return out
}

// Merge returns a profile holding the columns of p followed by the columns
// of others that p lacks. All profiles must share the same time index.
func (p *Profile) Merge(name string, others ...*Profile) (*Profile, error) {
	ids := append([]int64(nil), p.columns...)
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	for _, o := range others {
		if o == nil {
			continue
		}
		if !sameIndex(p.times, o.times) {
			return nil, errors.Errorf("cannot merge %s into %s: time index differs", o.Name, p.Name)
		}
		for _, id := range o.columns {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	out := NewProfile(name, p.times, ids)
	filled := make(map[int64]struct{}, len(ids))
	for _, src := range append([]*Profile{p}, others...) {
		if src == nil {
			continue
		}
		for _, id := range src.columns {
			if _, done := filled[id]; done {
				continue
			}
			filled[id] = struct{}{}
			copy(out.Column(id), src.Column(id))
		}
	}
	return out, nil
}

func (p *Profile) Clone() *Profile {
	out := NewProfile(p.Name, p.times, p.columns)
	for i := range p.values {
		copy(out.values[i], p.values[i])
	}
	return out
}

func sameIndex(a, b []time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
