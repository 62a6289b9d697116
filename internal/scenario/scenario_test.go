package scenario

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powersimdata/internal/data"
	"powersimdata/internal/grid"
	gridfixtures "powersimdata/internal/grid/testfixtures"
	"powersimdata/internal/model"
)

func writeProfile(t *testing.T, path, name string, ids []int64) {
	t.Helper()
	start := time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC)
	p := model.NewProfile(name, model.HourlyIndex(start, 4), ids)
	for row := 0; row < 4; row++ {
		for i, id := range ids {
			require.NoError(t, p.Set(row, id, float64((i+1)*row)))
		}
	}
	var buf bytes.Buffer
	require.NoError(t, model.WriteProfileCSV(&buf, p))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func newLoaded(t *testing.T) *Loaded {
	t.Helper()
	gridDir := t.TempDir()
	require.NoError(t, gridfixtures.WriteTAMU(gridDir))

	root := t.TempDir()
	writeProfile(t, filepath.Join(root, data.InputSubdir, "7_solar.csv"), data.FieldSolar, []int64{101})
	writeProfile(t, filepath.Join(root, data.OutputSubdir, "7_PG.csv"), data.FieldPG, []int64{101, 102, 103})
	remote := data.NewLocalDataAccess(root)

	grids, err := grid.NewCache(2)
	require.NoError(t, err)
	rec := data.ScenarioRecord{ID: "7", Plan: "test", Name: "loaded", Interconnect: "Western"}
	return NewLoaded(rec, Deps{
		Grids:       grids,
		GridDataDir: gridDir,
		Input:       data.NewInputData(remote, t.TempDir()),
		Output:      data.NewOutputData(remote, t.TempDir()),
	})
}

func TestLoaded_Grid(t *testing.T) {
	s := newLoaded(t)
	ctx := context.Background()

	g, err := s.Grid(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Western"}, g.Interconnect)

	again, err := s.Grid(ctx)
	require.NoError(t, err)
	assert.Same(t, g, again)
}

func TestLoaded_Profiles(t *testing.T) {
	s := newLoaded(t)
	ctx := context.Background()

	solar, err := s.Profile(ctx, data.FieldSolar)
	require.NoError(t, err)
	assert.Equal(t, []int64{101}, solar.Columns())
	assert.Equal(t, 3.0, solar.At(3, 101))

	pg, err := s.PG(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102, 103}, pg.Columns())
	assert.Equal(t, 9.0, pg.At(3, 103))

	_, err = s.Profile(ctx, data.FieldWind)
	assert.True(t, errors.Is(err, data.ErrNotFoundAnywhere))

	_, err = s.Profile(ctx, "pressure")
	var invalid *data.InvalidFieldError
	assert.True(t, errors.As(err, &invalid))
}

func TestLoaded_NoDeps(t *testing.T) {
	s := NewLoaded(data.ScenarioRecord{ID: "1", Interconnect: "Texas"}, Deps{})
	ctx := context.Background()

	_, err := s.Grid(ctx)
	assert.True(t, errors.Is(err, ErrNoData))
	_, err = s.Profile(ctx, data.FieldDemand)
	assert.True(t, errors.Is(err, ErrNoData))
	_, err = s.PG(ctx)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestMock(t *testing.T) {
	g, err := NewMockGrid([]string{"Texas"}, []MockPlant{
		{ID: 1, Type: "wind", ZoneName: "a", Pmax: 10},
		{ID: 2, Type: "ng", ZoneName: "b", Pmax: 20},
	}, map[string]int64{"b": 5})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"a": 6, "b": 5}, g.Zone2ID())
	assert.Equal(t, []int64{1}, g.PlantsOfType("wind"))

	m := &Mock{G: g}
	_, err = m.PG(context.Background())
	assert.True(t, errors.Is(err, ErrNoData))
	_, err = m.Profile(context.Background(), data.FieldSolar)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestRegistry(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, data.ScenarioListFile),
		[]byte("id,plan,name,state,interconnect\n7,test,loaded,analyze,Western\n8,test,other,create,Texas\n"), 0o644))
	r := NewRegistry(data.NewLocalDataAccess(root), Deps{}, data.NewMemoryCache(time.Minute))
	ctx := context.Background()

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Records, 2)

	s, err := r.Open(ctx, "test_loaded")
	require.NoError(t, err)
	assert.Equal(t, "7", s.Record().ID)

	again, err := r.Open(ctx, "7")
	require.NoError(t, err)
	assert.Same(t, s, again)

	_, err = r.Open(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	// the cached list is served even after the file is gone
	require.NoError(t, os.Remove(filepath.Join(root, data.ScenarioListFile)))
	_, err = r.List(ctx)
	assert.NoError(t, err)
}

func TestRegistry_ScenariosFollowMemoryCache(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, data.ScenarioListFile),
		[]byte("id,plan,name,state,interconnect\n7,test,loaded,analyze,Western\n"), 0o644))
	memory := data.NewMemoryCache(time.Minute)
	r := NewRegistry(data.NewLocalDataAccess(root), Deps{}, memory)
	ctx := context.Background()

	s, err := r.Open(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, 2, memory.Len(), "scenario list and scenario")

	memory.Clear()
	again, err := r.Open(ctx, "7")
	require.NoError(t, err)
	assert.NotSame(t, s, again)
	assert.Equal(t, "7", again.Record().ID)

	uncached := NewRegistry(data.NewLocalDataAccess(root), Deps{}, nil)
	a, err := uncached.Open(ctx, "7")
	require.NoError(t, err)
	b, err := uncached.Open(ctx, "7")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
}
