package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// DefaultNAValues are the tokens read as missing when CSVOptions.NAValues is nil.
var DefaultNAValues = []string{"", "NA", "NaN", "nan", "null", "NULL"}

// CSVOptions controls ReadCSV.
type CSVOptions struct {
	// Schema declares the dtype of each column by name.
	Schema map[string]DType

	// DefaultDType is used for columns absent from Schema. When empty, an
	// undeclared column is a SchemaError.
	DefaultDType DType

	// NAValues are the raw tokens that become Missing.
	NAValues []string

	// Comma is the field delimiter, ',' when zero.
	Comma rune
}

// ReadCSV reads a header row followed by records into a Dataset. Every
// column dtype comes from the options; cells are parsed against it and a
// cell that does not parse is a SchemaError carrying its row number.
func ReadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	reader := csv.NewReader(r)
	if opts.Comma != 0 {
		reader.Comma = opts.Comma
	}
	reader.ReuseRecord = false

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.NewValueErrorWrap("ReadCSV", "missing header row", errors.ErrEmptyData)
		}
		return nil, errors.Wrap(err, "ReadCSV: read header")
	}

	na := opts.NAValues
	if na == nil {
		na = DefaultNAValues
	}
	naSet := make(map[string]bool, len(na))
	for _, tok := range na {
		naSet[tok] = true
	}

	dtypes := make([]DType, len(header))
	for j, name := range header {
		name = strings.TrimSpace(name)
		header[j] = name
		dt, ok := opts.Schema[name]
		if !ok {
			if opts.DefaultDType == "" {
				return nil, errors.NewSchemaError("ReadCSV", name, "column has no declared dtype")
			}
			dt = opts.DefaultDType
		}
		dtypes[j] = dt
	}

	values := make([][]Value, len(header))
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "ReadCSV: read record %d", row+1)
		}
		for j, raw := range record {
			v, err := parseCell(raw, dtypes[j], naSet)
			if err != nil {
				return nil, errors.NewSchemaError("ReadCSV", header[j],
					fmt.Sprintf("row %d: %v", row+1, err))
			}
			values[j] = append(values[j], v)
		}
		row++
	}

	cols := make([]*Column, len(header))
	for j, name := range header {
		cols[j] = &Column{Name: name, DType: dtypes[j], Values: values[j]}
		if cols[j].Values == nil {
			cols[j].Values = []Value{}
		}
	}
	return New(cols...)
}

func parseCell(raw string, dt DType, na map[string]bool) (Value, error) {
	if na[raw] {
		return Missing(), nil
	}
	switch {
	case dt == Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as bool", raw)
		}
		return BoolValue(b), nil
	case dt.IsNumeric():
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Value{}, fmt.Errorf("cannot parse %q as %s", raw, dt)
		}
		return Num(f), nil
	default:
		return Text(raw), nil
	}
}

// WriteCSV writes d with a header row. Missing cells are written as empty fields.
func WriteCSV(w io.Writer, d *Dataset) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(d.Names()); err != nil {
		return errors.Wrap(err, "WriteCSV: write header")
	}
	record := make([]string, d.NCols())
	for i := 0; i < d.NRows(); i++ {
		for j, c := range d.columns {
			v := c.Values[i]
			if v.IsMissing() {
				record[j] = ""
			} else {
				record[j] = v.String()
			}
		}
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "WriteCSV: write row %d", i+1)
		}
	}
	writer.Flush()
	return writer.Error()
}
