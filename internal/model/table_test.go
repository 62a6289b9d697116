package model

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plantTable(t *testing.T) *Table {
	t.Helper()
	tbl := NewTable("plant", "plant_id", []ColumnSpec{
		{Name: "bus_id", Kind: KindInt},
		{Name: "type", Kind: KindString},
		{Name: "Pmax", Kind: KindFloat},
	})
	require.NoError(t, tbl.AppendRow(101, 1001, "solar", 50.0))
	require.NoError(t, tbl.AppendRow(102, 1002, "wind", 200.0))
	require.NoError(t, tbl.AppendRow(103, int64(1003), "ng", "80.5"))
	return tbl
}

func TestTable_AppendAndAccess(t *testing.T) {
	tbl := plantTable(t)

	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"bus_id", "type", "Pmax"}, tbl.Columns())
	assert.Equal(t, []int64{101, 102, 103}, tbl.IDs())

	row, ok := tbl.Row(102)
	require.True(t, ok)
	assert.Equal(t, "wind", tbl.String("type", row))
	assert.Equal(t, int64(1002), tbl.Int("bus_id", row))
	assert.Equal(t, int64(1002), tbl.Value("bus_id", row))
	assert.Equal(t, "1002", tbl.String("bus_id", row))
	assert.InDelta(t, 80.5, tbl.Float("Pmax", 2), 1e-9)

	_, ok = tbl.Row(999)
	assert.False(t, ok)
}

func TestTable_DuplicateID(t *testing.T) {
	tbl := plantTable(t)
	err := tbl.AppendRow(101, 1, "coal", 1.0)
	assert.Error(t, err)
}

func TestTable_AppendRowBadValueLeavesTableUnchanged(t *testing.T) {
	tbl := plantTable(t)

	err := tbl.AppendRow(104, 1004, "coal", "lots")
	require.Error(t, err)
	assert.Equal(t, 3, tbl.Len())
	_, ok := tbl.Row(104)
	assert.False(t, ok)

	err = tbl.AppendRow(105, "oops", "coal", 1.0)
	require.Error(t, err)
	assert.Equal(t, 3, tbl.Len())

	// the id is still free and every column keeps its length
	require.NoError(t, tbl.AppendRow(104, 1004, "coal", 100.0))
	assert.Equal(t, "coal", tbl.String("type", 3))
	assert.Equal(t, int64(1004), tbl.Int("bus_id", 3))
	assert.Equal(t, 100.0, tbl.Float("Pmax", 3))
	assert.InDelta(t, 430.5, tbl.Sum("Pmax", []int{0, 1, 2, 3}), 1e-9)
}

func TestTable_IntColumnTruncates(t *testing.T) {
	tbl := NewTable("bus", "bus_id", []ColumnSpec{{Name: "zone_id", Kind: KindInt}})
	require.NoError(t, tbl.AppendRow(1, 3.7))
	assert.Equal(t, int64(3), tbl.Int("zone_id", 0))
}

func TestTable_FilterWhereSum(t *testing.T) {
	tbl := plantTable(t)

	rows := tbl.Where("type", "solar", "ng")
	assert.Equal(t, []int{0, 2}, rows)
	assert.InDelta(t, 130.5, tbl.Sum("Pmax", rows), 1e-9)

	big := tbl.Filter(func(row int) bool { return tbl.Float("Pmax", row) > 60 })
	assert.Equal(t, []int64{102, 103}, big.IDs())
	r, ok := big.Row(103)
	require.True(t, ok)
	assert.Equal(t, 1, r)
}

func TestTable_CloneIsIndependent(t *testing.T) {
	tbl := plantTable(t)
	cp := tbl.Clone()
	require.NoError(t, cp.Set("type", 0, "coal"))
	assert.Equal(t, "solar", tbl.String("type", 0))
	assert.Equal(t, "coal", cp.String("type", 0))
}

func TestTableCSV_RoundTripWithSpecs(t *testing.T) {
	tbl := plantTable(t)
	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, tbl))
	assert.True(t, strings.HasPrefix(buf.String(), "plant_id,bus_id,type,Pmax\n101,1001,solar,50\n"))

	specs := append(tbl.Specs(), ColumnSpec{Name: "Pmin", Kind: KindFloat})
	got, err := ReadTableCSV(&buf, "plant", "plant_id", specs)
	require.NoError(t, err)
	assert.Equal(t, tbl.IDs(), got.IDs())
	assert.Equal(t, "ng", got.String("type", 2))
	assert.Equal(t, 0.0, got.Float("Pmin", 1))
}

func TestReadTableCSV_InfersKinds(t *testing.T) {
	in := "zone_id,zone_name,state\n1,Washington,WA\n2,Oregon,OR\n"
	tbl, err := ReadTableCSV(strings.NewReader(in), "zone", "zone_id", nil)
	require.NoError(t, err)

	k, ok := tbl.Kind("zone_name")
	require.True(t, ok)
	assert.Equal(t, KindString, k)
	assert.Equal(t, []int64{1, 2}, tbl.IDs())
	assert.Equal(t, "Oregon", tbl.String("zone_name", 1))
}

func TestReadTableCSV_Empty(t *testing.T) {
	_, err := ReadTableCSV(strings.NewReader(""), "bus", "bus_id", nil)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"int": KindInt, "float": KindFloat, "str": KindString} {
		got, err := ParseKind(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, in, got.String())
	}
	_, err := ParseKind("bool")
	assert.Error(t, err)
}
