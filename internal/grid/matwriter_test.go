package grid

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powersimdata/internal/grid/testfixtures"
	"powersimdata/internal/matfile"
)

func TestWriteREISE_RoundTrip(t *testing.T) {
	dir := tamuDir(t)
	g, err := New(Options{Interconnect: []string{"Western"}, DataDir: dir})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "western.mat")
	require.NoError(t, WriteREISE(g, path))

	back, err := New(Options{Interconnect: []string{"Western"}, Source: path, DataDir: dir})
	require.NoError(t, err)

	plant, _ := back.Get(FieldPlant)
	orig, _ := g.Get(FieldPlant)
	assert.Equal(t, orig.IDs(), plant.IDs())
	for row := 0; row < plant.Len(); row++ {
		assert.Equal(t, orig.String("type", row), plant.String("type", row))
		assert.Equal(t, orig.Float("Pmax", row), plant.Float("Pmax", row))
		assert.Equal(t, orig.String("zone_name", row), plant.String("zone_name", row))
	}

	gencost, _ := back.Get(FieldGenCost)
	r, ok := gencost.Row(103)
	require.True(t, ok)
	assert.Equal(t, 20.0, gencost.Float("c1", r))
	assert.Equal(t, 0.01, gencost.Float("c2", r))

	bus, _ := back.Get(FieldBus)
	origBus, _ := g.Get(FieldBus)
	assert.Equal(t, origBus.IDs(), bus.IDs())

	branch, _ := back.Get(FieldBranch)
	origBranch, _ := g.Get(FieldBranch)
	assert.Equal(t, origBranch.IDs(), branch.IDs())
	assert.Equal(t, origBranch.Float("rateA", 0), branch.Float("rateA", 0))
}

func TestWriteREISE_Storage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "case.mat")
	require.NoError(t, testfixtures.WriteREISE(src))
	g, err := New(Options{Interconnect: []string{"Western"}, Source: src})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "copy.mat")
	require.NoError(t, WriteREISE(g, path))
	back, err := New(Options{Interconnect: []string{"Western"}, Source: path})
	require.NoError(t, err)

	storage, _ := back.Get(FieldStorage)
	require.Equal(t, 1, storage.Len())
	assert.Equal(t, 0.9, storage.Float("InEff", 0))
}

func TestNew_CaseFileWithShortMatrix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.mat")
	empty := func(name string) *matfile.Var { return matfile.NewMatrix(name, nil) }
	require.NoError(t, matfile.WriteFile(path, matfile.NewStruct("mpc",
		&matfile.Var{Name: "bus", Class: matfile.ClassDouble, Dims: []int{2, 13}, Real: []float64{1}},
		empty("gen"), empty("branch"), empty("gencost"),
	)))

	assert.NotPanics(t, func() {
		_, err := New(Options{Interconnect: []string{"Western"}, Source: path})
		assert.Error(t, err)
	})
}
