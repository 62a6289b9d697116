package matfile

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"math"
	"os"
	"unicode/utf16"

	"github.com/pkg/errors"
)

var ErrNotMAT5 = errors.New("not a level 5 MAT-file")

// maxElements bounds the element count a dimensions header may declare.
const maxElements = math.MaxInt32

// ReadFile decodes every variable in a MAT-file.
func ReadFile(path string) (map[string]*Var, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a whole MAT-file and returns its variables by name.
func Decode(r io.Reader) (map[string]*Var, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(raw) < headerLen {
		return nil, ErrNotMAT5
	}
	var bo binary.ByteOrder
	switch string(raw[126:128]) {
	case "IM":
		bo = binary.LittleEndian
	case "MI":
		bo = binary.BigEndian
	default:
		return nil, ErrNotMAT5
	}
	if v := bo.Uint16(raw[124:126]); v != 0x0100 {
		return nil, errors.Wrapf(ErrNotMAT5, "version %#x", v)
	}
	d := decoder{bo: bo}
	vars := make(map[string]*Var)
	if err := d.top(raw[headerLen:], vars); err != nil {
		return nil, err
	}
	return vars, nil
}

type decoder struct {
	bo binary.ByteOrder
}

type element struct {
	typ  uint32
	data []byte
}

// next splits one data element off buf.
func (d decoder) next(buf []byte) (element, []byte, error) {
	if len(buf) < 8 {
		return element{}, nil, errors.New("truncated data element tag")
	}
	first := d.bo.Uint32(buf[0:4])
	if n := first >> 16; n != 0 {
		// small data element: size and type share the first word
		if n > 4 {
			return element{}, nil, errors.Errorf("small data element of %d bytes", n)
		}
		return element{typ: first & 0xffff, data: buf[4 : 4+n]}, buf[8:], nil
	}
	n := int(d.bo.Uint32(buf[4:8]))
	if 8+n > len(buf) {
		return element{}, nil, errors.Errorf("data element of %d bytes overruns file", n)
	}
	el := element{typ: first, data: buf[8 : 8+n]}
	adv := 8 + n
	if first != miCOMPRESSED {
		adv += (8 - n%8) % 8
	}
	if adv > len(buf) {
		adv = len(buf)
	}
	return el, buf[adv:], nil
}

func (d decoder) top(buf []byte, vars map[string]*Var) error {
	for len(buf) > 0 {
		el, rest, err := d.next(buf)
		if err != nil {
			return err
		}
		buf = rest
		switch el.typ {
		case miCOMPRESSED:
			zr, err := zlib.NewReader(bytes.NewReader(el.data))
			if err != nil {
				return errors.Wrap(err, "compressed element")
			}
			inner, err := io.ReadAll(zr)
			zr.Close()
			if err != nil {
				return errors.Wrap(err, "compressed element")
			}
			if err := d.top(inner, vars); err != nil {
				return err
			}
		case miMATRIX:
			v, err := d.matrix(el.data)
			if err != nil {
				return err
			}
			vars[v.Name] = v
		default:
			return errors.Errorf("unexpected top-level element type %d", el.typ)
		}
	}
	return nil
}

func (d decoder) matrix(buf []byte) (*Var, error) {
	v := &Var{}
	if len(buf) == 0 {
		// empty array, e.g. an unset struct field
		v.Class = ClassDouble
		v.Dims = []int{0, 0}
		return v, nil
	}
	flags, buf, err := d.next(buf)
	if err != nil {
		return nil, err
	}
	if len(flags.data) < 8 {
		return nil, errors.New("short array flags")
	}
	word := d.bo.Uint32(flags.data[0:4])
	v.Class = Class(word & 0xff)

	dims, buf, err := d.next(buf)
	if err != nil {
		return nil, err
	}
	n := 1
	for _, x := range d.numbers(dims) {
		if x < 0 {
			return nil, errors.Errorf("negative dimension %v", x)
		}
		if x > 0 && float64(n)*x > maxElements {
			return nil, errors.Errorf("dimensions %v overflow", d.numbers(dims))
		}
		n *= int(x)
		v.Dims = append(v.Dims, int(x))
	}
	name, buf, err := d.next(buf)
	if err != nil {
		return nil, err
	}
	v.Name = string(name.data)

	switch {
	case v.Class.numeric():
		// the imaginary part of complex arrays, if any, is dropped
		re, _, err := d.next(buf)
		if err != nil {
			return nil, errors.Wrapf(err, "%q real part", v.Name)
		}
		v.Real = d.numbers(re)
		if len(v.Real) != v.Len() {
			return nil, errors.Errorf("%q: dimensions %v hold %d elements, found %d", v.Name, v.Dims, v.Len(), len(v.Real))
		}
	case v.Class == ClassChar:
		if len(buf) > 0 {
			el, _, err := d.next(buf)
			if err != nil {
				return nil, errors.Wrapf(err, "%q text", v.Name)
			}
			v.Text = d.text(el)
		}
	case v.Class == ClassCell:
		for i := 0; i < v.Len(); i++ {
			el, rest, err := d.next(buf)
			if err != nil {
				return nil, errors.Wrapf(err, "%q cell %d", v.Name, i)
			}
			buf = rest
			if el.typ != miMATRIX {
				return nil, errors.Errorf("%q cell %d: element type %d", v.Name, i, el.typ)
			}
			c, err := d.matrix(el.data)
			if err != nil {
				return nil, err
			}
			v.Cells = append(v.Cells, c)
		}
	case v.Class == ClassStruct:
		if err := d.structure(v, buf); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("%q: unsupported array class %d", v.Name, v.Class)
	}
	return v, nil
}

func (d decoder) structure(v *Var, buf []byte) error {
	lenEl, buf, err := d.next(buf)
	if err != nil {
		return errors.Wrapf(err, "%q field name length", v.Name)
	}
	nums := d.numbers(lenEl)
	if len(nums) != 1 || nums[0] <= 0 {
		return errors.Errorf("%q: bad field name length", v.Name)
	}
	width := int(nums[0])
	namesEl, buf, err := d.next(buf)
	if err != nil {
		return errors.Wrapf(err, "%q field names", v.Name)
	}
	for off := 0; off+width <= len(namesEl.data); off += width {
		raw := namesEl.data[off : off+width]
		if i := bytes.IndexByte(raw, 0); i >= 0 {
			raw = raw[:i]
		}
		v.FieldNames = append(v.FieldNames, string(raw))
	}
	for e := 0; e < v.Len(); e++ {
		elem := make(map[string]*Var, len(v.FieldNames))
		for _, fname := range v.FieldNames {
			el, rest, err := d.next(buf)
			if err != nil {
				return errors.Wrapf(err, "%q.%s", v.Name, fname)
			}
			buf = rest
			f, err := d.matrix(el.data)
			if err != nil {
				return errors.Wrapf(err, "%q.%s", v.Name, fname)
			}
			f.Name = fname
			elem[fname] = f
		}
		v.Elems = append(v.Elems, elem)
	}
	return nil
}

// numbers converts a numeric data element to float64.
func (d decoder) numbers(el element) []float64 {
	b := el.data
	var out []float64
	switch el.typ {
	case miINT8:
		for _, x := range b {
			out = append(out, float64(int8(x)))
		}
	case miUINT8, miUTF8:
		for _, x := range b {
			out = append(out, float64(x))
		}
	case miINT16:
		for i := 0; i+2 <= len(b); i += 2 {
			out = append(out, float64(int16(d.bo.Uint16(b[i:]))))
		}
	case miUINT16:
		for i := 0; i+2 <= len(b); i += 2 {
			out = append(out, float64(d.bo.Uint16(b[i:])))
		}
	case miINT32:
		for i := 0; i+4 <= len(b); i += 4 {
			out = append(out, float64(int32(d.bo.Uint32(b[i:]))))
		}
	case miUINT32, miUTF32:
		for i := 0; i+4 <= len(b); i += 4 {
			out = append(out, float64(d.bo.Uint32(b[i:])))
		}
	case miSINGLE:
		for i := 0; i+4 <= len(b); i += 4 {
			out = append(out, float64(math.Float32frombits(d.bo.Uint32(b[i:]))))
		}
	case miDOUBLE:
		for i := 0; i+8 <= len(b); i += 8 {
			out = append(out, math.Float64frombits(d.bo.Uint64(b[i:])))
		}
	case miINT64:
		for i := 0; i+8 <= len(b); i += 8 {
			out = append(out, float64(int64(d.bo.Uint64(b[i:]))))
		}
	case miUINT64:
		for i := 0; i+8 <= len(b); i += 8 {
			out = append(out, float64(d.bo.Uint64(b[i:])))
		}
	}
	return out
}

func (d decoder) text(el element) string {
	switch el.typ {
	case miUTF8, miINT8, miUINT8:
		return string(el.data)
	case miUINT16, miUTF16:
		u := make([]uint16, 0, len(el.data)/2)
		for i := 0; i+2 <= len(el.data); i += 2 {
			u = append(u, d.bo.Uint16(el.data[i:]))
		}
		return string(utf16.Decode(u))
	default:
		runes := make([]rune, 0)
		for _, x := range d.numbers(el) {
			runes = append(runes, rune(x))
		}
		return string(runes)
	}
}
