package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the storage type of a table column.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "str"
	default:
		return "float"
	}
}

// ParseKind maps the schema type names ("int", "float", "str") to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "int":
		return KindInt, nil
	case "float":
		return KindFloat, nil
	case "str":
		return KindString, nil
	}
	return KindFloat, errors.Errorf("unknown column type %q", s)
}

// ColumnSpec names a column and its kind.
type ColumnSpec struct {
	Name string
	Kind Kind
}

// Table is an integer-indexed table with typed columns.
// Numeric columns (int and float) are stored as float64, string columns as string.
type Table struct {
	Name      string
	IndexName string

	ids     []int64
	rowOf   map[int64]int
	columns []ColumnSpec
	colPos  map[string]int
	nums    map[string][]float64
	strs    map[string][]string
}

// NewTable creates an empty table with the given column layout.
func NewTable(name, indexName string, specs []ColumnSpec) *Table {
	t := &Table{
		Name:      name,
		IndexName: indexName,
		rowOf:     make(map[int64]int),
		colPos:    make(map[string]int, len(specs)),
		nums:      make(map[string][]float64),
		strs:      make(map[string][]string),
	}
	for _, s := range specs {
		t.addColumn(s)
	}
	return t
}

func (t *Table) addColumn(s ColumnSpec) {
	if _, ok := t.colPos[s.Name]; ok {
		return
	}
	t.colPos[s.Name] = len(t.columns)
	t.columns = append(t.columns, s)
	n := len(t.ids)
	if s.Kind == KindString {
		t.strs[s.Name] = make([]string, n)
	} else {
		t.nums[s.Name] = make([]float64, n)
	}
}

// AddColumn appends a column filled with zero values; a no-op if it already exists.
func (t *Table) AddColumn(s ColumnSpec) {
	t.addColumn(s)
}

// AppendRow adds a row; values follow column order and may be any of
// float64, float32, int, int64 or string. Missing trailing values are zero.
// On error the table is left unchanged.
func (t *Table) AppendRow(id int64, values ...any) error {
	if _, dup := t.rowOf[id]; dup {
		return errors.Errorf("%s: duplicate %s %d", t.Name, t.IndexName, id)
	}
	if len(values) > len(t.columns) {
		return errors.Errorf("%s: got %d values for %d columns", t.Name, len(values), len(t.columns))
	}
	nums := make([]float64, len(values))
	strs := make([]string, len(values))
	for i, v := range values {
		var err error
		if nums[i], strs[i], err = t.convert(t.columns[i], v); err != nil {
			return err
		}
	}

	row := len(t.ids)
	t.ids = append(t.ids, id)
	t.rowOf[id] = row
	for i, c := range t.columns {
		var f float64
		var s string
		if i < len(values) {
			f, s = nums[i], strs[i]
		}
		if c.Kind == KindString {
			t.strs[c.Name] = append(t.strs[c.Name], s)
		} else {
			t.nums[c.Name] = append(t.nums[c.Name], f)
		}
	}
	return nil
}

func (t *Table) set(c ColumnSpec, row int, v any) error {
	f, s, err := t.convert(c, v)
	if err != nil {
		return err
	}
	if c.Kind == KindString {
		t.strs[c.Name][row] = s
	} else {
		t.nums[c.Name][row] = f
	}
	return nil
}

// convert turns v into the stored form of column c.
func (t *Table) convert(c ColumnSpec, v any) (float64, string, error) {
	if c.Kind == KindString {
		switch x := v.(type) {
		case string:
			return 0, x, nil
		case nil:
			return 0, "", nil
		default:
			return 0, fmt.Sprint(x), nil
		}
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case nil:
	case string:
		parsed, err := ParseNumber(x)
		if err != nil {
			return 0, "", errors.Wrapf(err, "%s.%s", t.Name, c.Name)
		}
		f = parsed
	default:
		return 0, "", errors.Errorf("%s.%s: unsupported value type %T", t.Name, c.Name, v)
	}
	if c.Kind == KindInt {
		f = float64(int64(f))
	}
	return f, "", nil
}

// Set assigns a single cell.
func (t *Table) Set(col string, row int, v any) error {
	pos, ok := t.colPos[col]
	if !ok {
		return errors.Errorf("%s: no column %q", t.Name, col)
	}
	if row < 0 || row >= len(t.ids) {
		return errors.Errorf("%s: row %d out of range", t.Name, row)
	}
	return t.set(t.columns[pos], row, v)
}

// ParseNumber parses a CSV cell; empty and "nan" cells read as zero.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "na", "null":
		return 0, nil
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func (t *Table) Len() int { return len(t.ids) }

// IDs returns the index column. The slice must not be modified.
func (t *Table) IDs() []int64 { return t.ids }

// ID returns the index value of a row.
func (t *Table) ID(row int) int64 { return t.ids[row] }

// Row finds the row holding the given index id.
func (t *Table) Row(id int64) (int, bool) {
	r, ok := t.rowOf[id]
	return r, ok
}

// Columns returns the column names in order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

// Specs returns a copy of the column layout.
func (t *Table) Specs() []ColumnSpec {
	return append([]ColumnSpec(nil), t.columns...)
}

func (t *Table) HasColumn(col string) bool {
	_, ok := t.colPos[col]
	return ok
}

func (t *Table) Kind(col string) (Kind, bool) {
	pos, ok := t.colPos[col]
	if !ok {
		return KindFloat, false
	}
	return t.columns[pos].Kind, true
}

// Float returns a numeric cell; zero for string or unknown columns.
func (t *Table) Float(col string, row int) float64 {
	if v, ok := t.nums[col]; ok {
		return v[row]
	}
	return 0
}

func (t *Table) Int(col string, row int) int64 {
	return int64(t.Float(col, row))
}

// String returns a cell formatted as text.
func (t *Table) String(col string, row int) string {
	if v, ok := t.strs[col]; ok {
		return v[row]
	}
	if v, ok := t.nums[col]; ok {
		k, _ := t.Kind(col)
		return FormatNumber(v[row], k)
	}
	return ""
}

// Value returns a cell as float64, int64 or string depending on the column kind.
func (t *Table) Value(col string, row int) any {
	k, ok := t.Kind(col)
	if !ok {
		return nil
	}
	switch k {
	case KindString:
		return t.strs[col][row]
	case KindInt:
		return int64(t.nums[col][row])
	default:
		return t.nums[col][row]
	}
}

// Floats returns the backing slice of a numeric column.
func (t *Table) Floats(col string) []float64 { return t.nums[col] }

// Strings returns the backing slice of a string column.
func (t *Table) Strings(col string) []string { return t.strs[col] }

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	out := NewTable(t.Name, t.IndexName, t.columns)
	for row, id := range t.ids {
		if !keep(row) {
			continue
		}
		out.ids = append(out.ids, id)
		out.rowOf[id] = len(out.ids) - 1
		for _, c := range t.columns {
			if c.Kind == KindString {
				out.strs[c.Name] = append(out.strs[c.Name], t.strs[c.Name][row])
			} else {
				out.nums[c.Name] = append(out.nums[c.Name], t.nums[c.Name][row])
			}
		}
	}
	return out
}

// Where returns the rows whose string column value is in the set.
func (t *Table) Where(col string, values ...string) []int {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	var rows []int
	for row := range t.ids {
		if _, ok := set[t.String(col, row)]; ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// Sum adds a numeric column over the given rows.
func (t *Table) Sum(col string, rows []int) float64 {
	v := t.nums[col]
	if v == nil {
		return 0
	}
	total := 0.0
	for _, r := range rows {
		total += v[r]
	}
	return total
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	return t.Filter(func(int) bool { return true })
}

// FormatNumber renders a numeric cell the way the CSV writer does.
func FormatNumber(x float64, k Kind) string {
	if k == KindInt {
		return strconv.FormatInt(int64(x), 10)
	}
	return strconv.FormatFloat(x, 'f', -1, 64)
}
