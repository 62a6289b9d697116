package grid

import (
	"github.com/pkg/errors"

	"powersimdata/internal/model"
)

// Field is one named table of a Grid.
type Field struct {
	Name string
	Data *model.Table
}

// NewField wraps data as the named field. A nil table becomes an empty
// table with the field schema.
func NewField(name string, data *model.Table) (*Field, error) {
	if Columns(name) == nil {
		return nil, errors.Wrapf(ErrUnknownField, "%q", name)
	}
	if data == nil {
		data = NewEmpty(name)
	}
	data.Name = name
	return &Field{Name: name, Data: data}, nil
}

// Missing lists schema columns absent from the data.
func (f *Field) Missing() []string {
	var out []string
	for _, c := range Columns(f.Name) {
		if !f.Data.HasColumn(c.Name) {
			out = append(out, c.Name)
		}
	}
	return out
}

func (f *Field) clone() *Field {
	return &Field{Name: f.Name, Data: f.Data.Clone()}
}
