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

const headerText = "MATLAB 5.0 MAT-file, written by powersimdata"

var le = binary.LittleEndian

// WriteFile encodes vars to path, compressing each variable.
func WriteFile(path string, vars ...*Var) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, true, vars...); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Encode writes a little-endian level 5 MAT-file.
func Encode(w io.Writer, compress bool, vars ...*Var) error {
	header := bytes.Repeat([]byte{' '}, headerLen)
	copy(header, headerText)
	for i := 116; i < 124; i++ {
		header[i] = 0
	}
	le.PutUint16(header[124:], 0x0100)
	header[126], header[127] = 'I', 'M'
	if _, err := w.Write(header); err != nil {
		return err
	}

	for _, v := range vars {
		body, err := encodeMatrix(v, v.Name)
		if err != nil {
			return err
		}
		var el bytes.Buffer
		writeElement(&el, miMATRIX, body)
		if !compress {
			if _, err := w.Write(el.Bytes()); err != nil {
				return err
			}
			continue
		}
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		if _, err := zw.Write(el.Bytes()); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
		tag := make([]byte, 8)
		le.PutUint32(tag[0:], miCOMPRESSED)
		le.PutUint32(tag[4:], uint32(z.Len()))
		if _, err := w.Write(tag); err != nil {
			return err
		}
		if _, err := w.Write(z.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

func writeElement(buf *bytes.Buffer, typ uint32, data []byte) {
	tag := make([]byte, 8)
	le.PutUint32(tag[0:], typ)
	le.PutUint32(tag[4:], uint32(len(data)))
	buf.Write(tag)
	buf.Write(data)
	if pad := (8 - len(data)%8) % 8; pad > 0 {
		buf.Write(make([]byte, pad))
	}
}

func encodeMatrix(v *Var, name string) ([]byte, error) {
	var buf bytes.Buffer

	flags := make([]byte, 8)
	le.PutUint32(flags, uint32(v.Class))
	writeElement(&buf, miUINT32, flags)

	dims := v.Dims
	if len(dims) < 2 {
		dims = []int{1, len(v.Real)}
	}
	db := make([]byte, 4*len(dims))
	for i, d := range dims {
		le.PutUint32(db[4*i:], uint32(int32(d)))
	}
	writeElement(&buf, miINT32, db)
	writeElement(&buf, miINT8, []byte(name))

	switch {
	case v.Class.numeric():
		data := make([]byte, 8*len(v.Real))
		for i, x := range v.Real {
			le.PutUint64(data[8*i:], math.Float64bits(x))
		}
		writeElement(&buf, miDOUBLE, data)
	case v.Class == ClassChar:
		u := utf16.Encode([]rune(v.Text))
		data := make([]byte, 2*len(u))
		for i, x := range u {
			le.PutUint16(data[2*i:], x)
		}
		writeElement(&buf, miUINT16, data)
	case v.Class == ClassCell:
		for _, c := range v.Cells {
			body, err := encodeMatrix(c, "")
			if err != nil {
				return nil, err
			}
			writeElement(&buf, miMATRIX, body)
		}
	case v.Class == ClassStruct:
		width := 32
		for _, f := range v.FieldNames {
			if len(f)+1 > width {
				width = len(f) + 1
			}
		}
		// field name length as a small data element
		small := make([]byte, 8)
		le.PutUint32(small[0:], 4<<16|miINT32)
		le.PutUint32(small[4:], uint32(width))
		buf.Write(small)

		names := make([]byte, width*len(v.FieldNames))
		for i, f := range v.FieldNames {
			copy(names[i*width:], f)
		}
		writeElement(&buf, miINT8, names)
		for _, elem := range v.Elems {
			for _, f := range v.FieldNames {
				fv, ok := elem[f]
				if !ok {
					writeElement(&buf, miMATRIX, nil)
					continue
				}
				body, err := encodeMatrix(fv, "")
				if err != nil {
					return nil, err
				}
				writeElement(&buf, miMATRIX, body)
			}
		}
	default:
		return nil, errors.Errorf("%q: cannot encode array class %d", name, v.Class)
	}
	return buf.Bytes(), nil
}
