package grid

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powersimdata/internal/grid/testfixtures"
	"powersimdata/internal/model"
)

func tamuDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, testfixtures.WriteTAMU(dir))
	return dir
}

func TestNormalizeInterconnect(t *testing.T) {
	tests := map[string]struct {
		in      []string
		want    []string
		wantErr bool
	}{
		"single":            {in: []string{"Western"}, want: []string{"Western"}},
		"sorted and unique": {in: []string{"western", "Eastern", "Western"}, want: []string{"Eastern", "Western"}},
		"usa expands":       {in: []string{"USA"}, want: []string{"Eastern", "Texas", "Western"}},
		"usa paired":        {in: []string{"USA", "Texas"}, wantErr: true},
		"unknown":           {in: []string{"Quebec"}, wantErr: true},
		"empty":             {in: nil, wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := NormalizeInterconnect(tc.in)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
	assert.Equal(t, "USA", InterconnectName(Interconnects))
	assert.Equal(t, "Texas_Western", InterconnectName([]string{"Texas", "Western"}))
	assert.Equal(t, []string{"Texas", "Western"}, ParseInterconnect("Texas_Western"))
}

func TestNew_SourceAndEngineErrors(t *testing.T) {
	_, err := New(Options{Interconnect: []string{"Western"}, Source: "pypsa"})
	assert.True(t, errors.Is(err, ErrUnknownSource))
	assert.Contains(t, err.Error(), "pypsa")

	_, err = New(Options{Interconnect: []string{"Western"}, Source: "case.mat", Engine: "REISE.jl"})
	assert.True(t, errors.Is(err, ErrEngineNotImplemented))

	_, err = New(Options{Interconnect: []string{"Western"}, Source: "case.mat", Engine: "PowerWorld"})
	assert.True(t, errors.Is(err, ErrUnknownEngine))
}

func TestNew_TAMUWestern(t *testing.T) {
	dir := tamuDir(t)
	g, err := New(Options{Interconnect: []string{"Western"}, DataDir: dir})
	require.NoError(t, err)

	assert.Equal(t, dir, g.DataLoc)
	assert.Equal(t, []string{"Western"}, g.Interconnect)

	plant, err := g.Get(FieldPlant)
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102, 103}, plant.IDs())
	row, ok := plant.Row(101)
	require.True(t, ok)
	assert.Equal(t, "solar", plant.String("type", row))
	assert.Equal(t, int64(201), plant.Int("zone_id", row))
	assert.Equal(t, "Washington", plant.String("zone_name", row))
	assert.Equal(t, 47.5, plant.Float("lat", row))
	assert.Equal(t, -122.3, plant.Float("lon", row))

	bus, _ := g.Get(FieldBus)
	assert.Equal(t, 2, bus.Len())
	r, _ := bus.Row(11)
	assert.Equal(t, 45.5, bus.Float("lat", r))

	branch, _ := g.Get(FieldBranch)
	require.Equal(t, 1, branch.Len())
	assert.Equal(t, "Washington", branch.String("from_zone_name", 0))
	assert.Equal(t, "Oregon", branch.String("to_zone_name", 0))
	assert.Equal(t, 45.5, branch.Float("to_lat", 0))

	gencost, _ := g.Get(FieldGenCost)
	assert.Equal(t, 3, gencost.Len())

	dcline, _ := g.Get(FieldDCLine)
	assert.Equal(t, 0, dcline.Len(), "dc line leaving the selection is dropped")

	storage, _ := g.Get(FieldStorage)
	assert.Equal(t, 0, storage.Len())
	assert.True(t, storage.HasColumn("InEff"))

	assert.Equal(t, map[string]int64{"Washington": 201, "Oregon": 202}, g.Zone2ID())
	assert.Equal(t, "Oregon", g.ID2Zone()[202])
	assert.Equal(t, 2, g.Bus2Sub().Len())
	assert.Equal(t, "wind", g.ID2Type()[0])
	assert.Equal(t, 10, g.Type2ID()["storage"])
	assert.Equal(t, "xkcd:amber", g.Type2Color()["solar"])
}

func TestNew_TAMUTwoInterconnects(t *testing.T) {
	g, err := New(Options{Interconnect: []string{"Western", "Texas"}, DataDir: tamuDir(t)})
	require.NoError(t, err)
	assert.Equal(t, []string{"Texas", "Western"}, g.Interconnect)
	dcline, _ := g.Get(FieldDCLine)
	assert.Equal(t, 1, dcline.Len())
	plant, _ := g.Get(FieldPlant)
	assert.Equal(t, 4, plant.Len())
	assert.Len(t, g.Zone2ID(), 3)
}

func TestNew_TAMUMissingFiles(t *testing.T) {
	_, err := New(Options{Interconnect: []string{"Western"}, DataDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus.csv")
	assert.Contains(t, err.Error(), "zone.csv")
}

func TestNew_REISE(t *testing.T) {
	dir := tamuDir(t)
	path := filepath.Join(t.TempDir(), "case.mat")
	require.NoError(t, testfixtures.WriteREISE(path))

	g, err := New(Options{Interconnect: []string{"Western"}, Source: path, DataDir: dir})
	require.NoError(t, err)
	assert.Equal(t, path, g.DataLoc)

	plant, _ := g.Get(FieldPlant)
	assert.Equal(t, []int64{101, 102, 103}, plant.IDs())
	r, _ := plant.Row(102)
	assert.Equal(t, "wind", plant.String("type", r))
	assert.Equal(t, 200.0, plant.Float("Pmax", r))
	assert.Equal(t, int64(11), plant.Int("bus_id", r))
	assert.Equal(t, "Oregon", plant.String("zone_name", r))
	assert.Equal(t, "Western", plant.String("interconnect", r))

	gencost, _ := g.Get(FieldGenCost)
	r, _ = gencost.Row(103)
	assert.Equal(t, 0.01, gencost.Float("c2", r))
	assert.Equal(t, 20.0, gencost.Float("c1", r))
	assert.Equal(t, 100.0, gencost.Float("c0", r))

	bus, _ := g.Get(FieldBus)
	r, _ = bus.Row(10)
	assert.Equal(t, int64(201), bus.Int("zone_id", r))
	assert.Equal(t, 230.0, bus.Float("baseKV", r))

	branch, _ := g.Get(FieldBranch)
	assert.Equal(t, []int64{1}, branch.IDs())
	assert.Equal(t, 500.0, branch.Float("rateA", 0))

	storage, _ := g.Get(FieldStorage)
	require.Equal(t, 1, storage.Len())
	assert.Equal(t, 0.9, storage.Float("InEff", 0))

	sub, _ := g.Get(FieldSub)
	assert.Equal(t, 2, sub.Len(), "only substations of case buses are kept")
}

func TestNew_REISEWithoutTAMUTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case.mat")
	require.NoError(t, testfixtures.WriteREISE(path))

	g, err := New(Options{Interconnect: []string{"Western"}, Source: path})
	require.NoError(t, err)
	assert.Equal(t, int64(201), g.Zone2ID()["zone_201"])
	sub, _ := g.Get(FieldSub)
	assert.Equal(t, 0, sub.Len())
}

func TestGet_UnknownField(t *testing.T) {
	g, err := FromTables([]string{"Texas"}, nil, nil)
	require.NoError(t, err)
	_, err = g.Get("generator")
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = FromTables([]string{"Texas"}, map[string]*model.Table{"generator": nil}, nil)
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestLookup_DeprecationWarning(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()
	logrus.SetLevel(logrus.InfoLevel)
	warned.Delete(FieldBranch)

	g, err := New(Options{Interconnect: []string{"Western"}, DataDir: tamuDir(t)})
	require.NoError(t, err)

	v, err := g.Lookup(TransformZone2ID)
	require.NoError(t, err)
	assert.Equal(t, g.Zone2ID(), v)
	assert.Empty(t, hook.AllEntries(), "transforms never warn")

	v, err = g.Lookup(FieldBranch)
	require.NoError(t, err)
	branch, _ := g.Get(FieldBranch)
	assert.Same(t, branch, v)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Contains(t, hook.LastEntry().Message, "dictionary indexing")

	// only the first access of a property warns
	_ = g.Branch()
	_, _ = g.Lookup(FieldBranch)
	assert.Len(t, hook.AllEntries(), 1)

	_, err = g.Lookup("nope")
	assert.True(t, errors.Is(err, ErrUnknownField))
}

func TestClone_IsIndependent(t *testing.T) {
	g, err := New(Options{Interconnect: []string{"Western"}, DataDir: tamuDir(t)})
	require.NoError(t, err)

	c := g.Clone()
	plant, _ := c.Get(FieldPlant)
	require.NoError(t, plant.Set("Pmax", 0, 999))
	c.Zone2ID()["Idaho"] = 203

	orig, _ := g.Get(FieldPlant)
	assert.Equal(t, 50.0, orig.Float("Pmax", 0))
	_, ok := g.Zone2ID()["Idaho"]
	assert.False(t, ok)
}

func TestPlantsOfType(t *testing.T) {
	g, err := New(Options{Interconnect: []string{"Western", "Texas"}, DataDir: tamuDir(t)})
	require.NoError(t, err)
	assert.Equal(t, []int64{101}, g.PlantsOfType("solar"))
	assert.Equal(t, []int64{102}, g.PlantsOfType("wind", "Oregon"))
	assert.Empty(t, g.PlantsOfType("wind", "Washington"))
}

func TestCache(t *testing.T) {
	dir := tamuDir(t)
	c, err := NewCache(2)
	require.NoError(t, err)

	opts := Options{Interconnect: []string{"Western"}, DataDir: dir}
	a, err := c.Get(opts)
	require.NoError(t, err)
	b, err := c.Get(Options{Interconnect: []string{"western", "Western"}, DataDir: dir})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len(), "equivalent options share an entry")
	assert.NotSame(t, a, b)

	plant, _ := a.Get(FieldPlant)
	require.NoError(t, plant.Set("Pmax", 0, 1))
	again, _ := c.Get(opts)
	fresh, _ := again.Get(FieldPlant)
	assert.Equal(t, 50.0, fresh.Float("Pmax", 0))

	_, err = c.Get(Options{Interconnect: []string{"Mars"}})
	assert.Error(t, err)

	c.Purge()
	assert.Equal(t, 0, c.Len())

	off, err := NewCache(0)
	require.NoError(t, err)
	_, err = off.Get(opts)
	require.NoError(t, err)
	assert.Equal(t, 0, off.Len())

	_, err = NewCache(-1)
	assert.Error(t, err)
}

func TestField_Missing(t *testing.T) {
	tbl := model.NewTable(FieldSub, "sub_id", []model.ColumnSpec{{Name: "lat", Kind: model.KindFloat}})
	f, err := NewField(FieldSub, tbl)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "interconnect_sub_id", "lon", "interconnect"}, f.Missing())

	_, err = NewField("generator", nil)
	assert.Error(t, err)
}
