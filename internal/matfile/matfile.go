// Package matfile reads and writes MATLAB level-5 MAT-files.
//
// Only the array classes that appear in power-system case files are
// supported: numeric matrices (real part), char arrays, cell arrays and
// struct arrays. Sparse, object and function-handle arrays are rejected.
package matfile

import (
	"github.com/pkg/errors"
)

// Class is the MATLAB array class.
type Class uint8

const (
	ClassCell   Class = 1
	ClassStruct Class = 2
	ClassObject Class = 3
	ClassChar   Class = 4
	ClassSparse Class = 5
	ClassDouble Class = 6
	ClassSingle Class = 7
	ClassInt8   Class = 8
	ClassUint8  Class = 9
	ClassInt16  Class = 10
	ClassUint16 Class = 11
	ClassInt32  Class = 12
	ClassUint32 Class = 13
	ClassInt64  Class = 14
	ClassUint64 Class = 15
)

func (c Class) numeric() bool { return c >= ClassDouble && c <= ClassUint64 }

// data element types
const (
	miINT8       = 1
	miUINT8      = 2
	miINT16      = 3
	miUINT16     = 4
	miINT32      = 5
	miUINT32     = 6
	miSINGLE     = 7
	miDOUBLE     = 9
	miINT64      = 12
	miUINT64     = 13
	miMATRIX     = 14
	miCOMPRESSED = 15
	miUTF8       = 16
	miUTF16      = 17
	miUTF32      = 18
)

const headerLen = 128

// Var is one MATLAB array. Numeric data is stored column-major in Real.
type Var struct {
	Name  string
	Class Class
	Dims  []int

	Real  []float64
	Text  string
	Cells []*Var

	// FieldNames is the field order of a struct array; Elems holds one map
	// per struct element, column-major.
	FieldNames []string
	Elems      []map[string]*Var
}

// NewMatrix builds a double matrix from row-major rows.
func NewMatrix(name string, rows [][]float64) *Var {
	r := len(rows)
	c := 0
	if r > 0 {
		c = len(rows[0])
	}
	v := &Var{Name: name, Class: ClassDouble, Dims: []int{r, c}, Real: make([]float64, r*c)}
	for i, row := range rows {
		for j := 0; j < c && j < len(row); j++ {
			v.Real[j*r+i] = row[j]
		}
	}
	return v
}

// NewChar builds a 1xN char array.
func NewChar(name, s string) *Var {
	return &Var{Name: name, Class: ClassChar, Dims: []int{1, len([]rune(s))}, Text: s}
}

// NewCellColumn builds an Nx1 cell array of strings.
func NewCellColumn(name string, values []string) *Var {
	v := &Var{Name: name, Class: ClassCell, Dims: []int{len(values), 1}}
	for _, s := range values {
		v.Cells = append(v.Cells, NewChar("", s))
	}
	return v
}

// NewStruct builds a 1x1 struct with fields in the given order.
func NewStruct(name string, fields ...*Var) *Var {
	v := &Var{Name: name, Class: ClassStruct, Dims: []int{1, 1}}
	elem := make(map[string]*Var, len(fields))
	for _, f := range fields {
		v.FieldNames = append(v.FieldNames, f.Name)
		elem[f.Name] = f
	}
	v.Elems = []map[string]*Var{elem}
	return v
}

// Rows is the first dimension.
func (v *Var) Rows() int {
	if len(v.Dims) == 0 {
		return 0
	}
	return v.Dims[0]
}

// Cols is the product of every dimension after the first.
func (v *Var) Cols() int {
	if len(v.Dims) < 2 {
		return 0
	}
	n := 1
	for _, d := range v.Dims[1:] {
		n *= d
	}
	return n
}

// Len is the number of elements.
func (v *Var) Len() int { return v.Rows() * v.Cols() }

// At reads element (i, j) of a numeric matrix.
func (v *Var) At(i, j int) float64 {
	return v.Real[j*v.Rows()+i]
}

// Row copies row i of a numeric matrix.
func (v *Var) Row(i int) []float64 {
	out := make([]float64, v.Cols())
	for j := range out {
		out[j] = v.At(i, j)
	}
	return out
}

// Vector returns the values of a row or column vector.
func (v *Var) Vector() []float64 {
	return v.Real
}

// Field returns a field of the first struct element.
func (v *Var) Field(name string) (*Var, bool) {
	if v.Class != ClassStruct || len(v.Elems) == 0 {
		return nil, false
	}
	f, ok := v.Elems[0][name]
	return f, ok
}

// Strings returns the text of a cell array of char arrays, or of a
// char matrix read row by row.
func (v *Var) Strings() ([]string, error) {
	switch v.Class {
	case ClassCell:
		out := make([]string, len(v.Cells))
		for i, c := range v.Cells {
			if c.Class != ClassChar {
				return nil, errors.Errorf("cell %d of %q is %d, not char", i, v.Name, c.Class)
			}
			out[i] = c.Text
		}
		return out, nil
	case ClassChar:
		r := v.Rows()
		if r <= 1 {
			return []string{v.Text}, nil
		}
		runes := []rune(v.Text)
		c := v.Cols()
		out := make([]string, r)
		for i := 0; i < r; i++ {
			row := make([]rune, 0, c)
			for j := 0; j < c && j*r+i < len(runes); j++ {
				row = append(row, runes[j*r+i])
			}
			out[i] = trimRight(string(row))
		}
		return out, nil
	}
	return nil, errors.Errorf("%q is not a cell or char array", v.Name)
}

func trimRight(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == ' ' || s[end-1] == 0) {
		end--
	}
	return s[:end]
}
