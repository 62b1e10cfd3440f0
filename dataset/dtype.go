package dataset

import "strings"

// DType is the declared element type of a column. Names follow the
// numpy/pandas spelling so schemas written for the Python tooling can be
// reused as is.
type DType string

const (
	Float64  DType = "float64"
	Float32  DType = "float32"
	Int64    DType = "int64"
	Int32    DType = "int32"
	Int      DType = "int"
	Bool     DType = "bool"
	Object   DType = "object"
	String   DType = "string"
	Category DType = "category"
)

// ParseDType normalizes a dtype name. Unknown names are returned verbatim
// (lowercased) so that the column classifier can report them.
func ParseDType(s string) DType {
	return DType(strings.ToLower(strings.TrimSpace(s)))
}

// IsNumeric reports whether cells of this type are numbers. Booleans are
// numeric and stored as 0/1.
func (d DType) IsNumeric() bool {
	switch d {
	case Float64, Float32, Int64, Int32, Int, Bool:
		return true
	}
	return false
}

// IsCategorical reports whether cells of this type are text.
func (d DType) IsCategorical() bool {
	switch d {
	case Object, String, Category:
		return true
	}
	return false
}

// Known reports whether d is one of the recognized dtypes.
func (d DType) Known() bool {
	return d.IsNumeric() || d.IsCategorical()
}

func (d DType) String() string { return string(d) }
