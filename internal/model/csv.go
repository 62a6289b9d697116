package model

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ProfileIndexName is the header of the timestamp column in profile CSVs.
const ProfileIndexName = "UTC"

// WriteTableCSV writes the index column followed by every table column.
func WriteTableCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := append([]string{t.IndexName}, t.Columns()...)
	if err := cw.Write(header); err != nil {
		return err
	}
	cols := t.Columns()
	for row, id := range t.IDs() {
		rec := make([]string, 0, len(header))
		rec = append(rec, strconv.FormatInt(id, 10))
		for _, c := range cols {
			rec = append(rec, t.String(c, row))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTableCSV reads a table whose header names its columns.
//
// With specs, only the listed columns are kept, in spec order, and columns
// absent from the file are zero-filled. Without specs every column is kept
// and its kind inferred (numeric when every cell parses as a number).
// If the index column is missing rows are numbered from zero.
func ReadTableCSV(r io.Reader, name, indexName string, specs []ColumnSpec) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s csv", name)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("%s csv is empty", name)
	}
	header := records[0]
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	rows := records[1:]

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}
	if specs == nil {
		specs = inferSpecs(header, rows, indexName)
	}

	t := NewTable(name, indexName, specs)
	idxCol, hasIndex := pos[indexName]
	for n, rec := range rows {
		id := int64(n)
		if hasIndex {
			f, err := ParseNumber(cell(rec, idxCol))
			if err != nil {
				return nil, errors.Wrapf(err, "%s row %d: bad %s", name, n+1, indexName)
			}
			id = int64(f)
		}
		values := make([]any, len(specs))
		for i, s := range specs {
			p, ok := pos[s.Name]
			if !ok {
				continue
			}
			values[i] = cell(rec, p)
		}
		if err := t.AppendRow(id, values...); err != nil {
			return nil, errors.Wrapf(err, "%s row %d", name, n+1)
		}
	}
	return t, nil
}

func inferSpecs(header []string, rows [][]string, indexName string) []ColumnSpec {
	specs := make([]ColumnSpec, 0, len(header))
	for i, h := range header {
		if h == indexName || h == "" {
			continue
		}
		kind := KindFloat
		for _, rec := range rows {
			if _, err := ParseNumber(cell(rec, i)); err != nil {
				kind = KindString
				break
			}
		}
		specs = append(specs, ColumnSpec{Name: h, Kind: kind})
	}
	return specs
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return strings.TrimSpace(rec[i])
	}
	return ""
}

// WriteProfileCSV writes a profile with a UTC timestamp column.
func WriteProfileCSV(w io.Writer, p *Profile) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := make([]string, 0, len(p.Columns())+1)
	header = append(header, ProfileIndexName)
	for _, id := range p.Columns() {
		header = append(header, strconv.FormatInt(id, 10))
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for row, ts := range p.Times() {
		rec := make([]string, 0, len(header))
		rec = append(rec, fmtTime(ts))
		for _, id := range p.Columns() {
			rec = append(rec, fmtFloat(p.At(row, id)))
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadProfileCSV parses the output of WriteProfileCSV.
func ReadProfileCSV(r io.Reader, name string) (*Profile, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s profile", name)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("%s profile is empty", name)
	}
	header := records[0]
	ids := make([]int64, 0, len(header)-1)
	for _, h := range header[1:] {
		id, err := strconv.ParseInt(strings.TrimSpace(h), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s profile: bad column id %q", name, h)
		}
		ids = append(ids, id)
	}
	times := make([]time.Time, 0, len(records)-1)
	for n, rec := range records[1:] {
		ts, err := ParseTime(rec[0])
		if err != nil {
			return nil, errors.Wrapf(err, "%s profile row %d", name, n+1)
		}
		times = append(times, ts)
	}
	p := NewProfile(name, times, ids)
	for n, rec := range records[1:] {
		for i, id := range ids {
			v, err := ParseNumber(cell(rec, i+1))
			if err != nil {
				return nil, errors.Wrapf(err, "%s profile row %d column %d", name, n+1, id)
			}
			p.values[p.colPos[id]][n] = v
		}
	}
	return p, nil
}

// WriteTableCSVFile writes a table to path.
func WriteTableCSVFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteTableCSV(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// timeLayouts are accepted when parsing timestamps from files and requests.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime parses a timestamp in any of the accepted layouts as UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Errorf("invalid timestamp %q", s)
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}
