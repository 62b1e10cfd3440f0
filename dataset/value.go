package dataset

import (
	"math"
	"strconv"
)

// ValueKind discriminates the cell variants. The zero value is KindMissing,
// so a zero Value is the missing sentinel.
type ValueKind uint8

const (
	KindMissing ValueKind = iota
	KindNumber
	KindText
)

func (k ValueKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is a single cell. Fields are exported for gob encoding of fitted
// state; construct values with Missing, Num, Int, Bool and Text.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Missing returns the missing sentinel. It never compares equal to a number
// or a text value, including Text("").
func Missing() Value { return Value{} }

// Num returns a numeric cell. NaN is not a number cell but the missing
// sentinel, so statistics never see it.
func Num(f float64) Value {
	if math.IsNaN(f) {
		return Missing()
	}
	return Value{Kind: KindNumber, Num: f}
}

// IntValue returns a numeric cell holding an integer.
func IntValue(i int64) Value { return Value{Kind: KindNumber, Num: float64(i)} }

// BoolValue returns a numeric cell holding 1 for true and 0 for false.
func BoolValue(b bool) Value {
	if b {
		return Num(1)
	}
	return Num(0)
}

// Text returns a categorical cell.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// IsMissing reports whether v is the missing sentinel.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// IsNumber reports whether v holds a number.
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// IsText reports whether v holds text.
func (v Value) IsText() bool { return v.Kind == KindText }

// Float returns the numeric payload.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// TextValue returns the text payload.
func (v Value) TextValue() (string, bool) {
	if v.Kind != KindText {
		return "", false
	}
	return v.Str, true
}

// Equal reports whether both cells have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNumber:
		return v.Num == o.Num
	case KindText:
		return v.Str == o.Str
	default:
		return true
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindText:
		return v.Str
	default:
		return "<missing>"
	}
}

// Floats builds numeric cells from a slice.
func Floats(xs ...float64) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = Num(x)
	}
	return out
}

// Texts builds categorical cells from a slice. Entries equal to na become
// Missing; pass a token that cannot occur in the data to disable this.
func Texts(na string, xs ...string) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		if x == na {
			out[i] = Missing()
			continue
		}
		out[i] = Text(x)
	}
	return out
}
