package data

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioListCSV = `id,plan,name,state,interconnect,base_demand,base_hydro,base_solar,base_wind,change_table,start_date,end_date,interval,engine,runtime,infeasibilities
1,base,1,analyze,Western,v1,v1,v1,v1,No,2016-01-01 00:00:00,2016-12-31 23:00:00,1H,REISE,1:30,
87,test,western_ramp,execute,Western_Texas,v2,v1,v2,v1,Yes,2016-01-01 00:00:00,2016-01-07 23:00:00,24H,REISE,,
`

func TestScenarioList(t *testing.T) {
	list, err := ParseScenarioList(strings.NewReader(scenarioListCSV))
	require.NoError(t, err)
	require.Len(t, list.Records, 2)

	r, ok := list.ByID("87")
	require.True(t, ok)
	assert.Equal(t, "test_western_ramp", r.FullName())
	assert.True(t, r.HasChangeTable())
	assert.Equal(t, "24H", r.Interval)

	r, ok = list.ByName("western_ramp")
	require.True(t, ok)
	assert.Equal(t, "87", r.ID)

	r, err = list.Find("base_1")
	require.NoError(t, err)
	assert.Equal(t, "1", r.ID)
	assert.False(t, r.HasChangeTable())

	_, err = list.Find("nope")
	assert.Error(t, err)

	_, err = ParseScenarioList(strings.NewReader("plan,name\nx,y\n"))
	assert.Error(t, err)
}

func TestLoadLists(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ScenarioListFile), []byte(scenarioListCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ExecuteListFile), []byte("id,status\n1,extracted\n87,running\n"), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	access := NewLocalDataAccess(root)

	list, err := LoadScenarioList(ctx, access)
	require.NoError(t, err)
	assert.Len(t, list.Records, 2)

	exec, err := LoadExecuteList(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, "running", exec["87"])

	_, err = LoadExecuteList(ctx, NewLocalDataAccess(t.TempDir()))
	assert.Error(t, err)
	_, err = ParseExecuteList(strings.NewReader("id\n1\n"))
	assert.Error(t, err)
}

func TestMemoryCacheAndKey(t *testing.T) {
	var disabled *MemoryCache
	disabled.Set("k", 1)
	_, ok := disabled.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, disabled.Len())

	c := NewMemoryCache(time.Minute)
	c.Set("k", 1)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 1, v)
	c.Clear()
	assert.Equal(t, 0, c.Len())

	assert.Equal(t, GenerateCacheKey("input", "a"), GenerateCacheKey("input", "a"))
	assert.NotEqual(t, GenerateCacheKey("input", "a"), GenerateCacheKey("output", "a"))
	assert.Len(t, GenerateCacheKey("x"), 64)
}
