package data

import (
	"sort"
	"strconv"
)

// ChangeTable records the scaling applied to a base grid and its profiles:
// element ("solar", "demand", "branch", ...) -> selector ("zone_id",
// "plant_id", "branch_id") -> id -> factor.
type ChangeTable map[string]map[string]map[string]float64

// Factor returns the scaling of one id, and whether one is recorded.
func (ct ChangeTable) Factor(element, selector string, id int64) (float64, bool) {
	f, ok := ct[element][selector][strconv.FormatInt(id, 10)]
	return f, ok
}

// Set records a factor, creating the nested maps as needed.
func (ct ChangeTable) Set(element, selector string, id int64, factor float64) {
	bySel, ok := ct[element]
	if !ok {
		bySel = make(map[string]map[string]float64)
		ct[element] = bySel
	}
	byID, ok := bySel[selector]
	if !ok {
		byID = make(map[string]float64)
		bySel[selector] = byID
	}
	byID[strconv.FormatInt(id, 10)] = factor
}

// Elements returns the changed elements, sorted.
func (ct ChangeTable) Elements() []string {
	out := make([]string, 0, len(ct))
	for k := range ct {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (ct ChangeTable) clone() ChangeTable {
	out := make(ChangeTable, len(ct))
	for e, bySel := range ct {
		out[e] = make(map[string]map[string]float64, len(bySel))
		for s, byID := range bySel {
			m := make(map[string]float64, len(byID))
			for id, f := range byID {
				m[id] = f
			}
			out[e][s] = m
		}
	}
	return out
}
