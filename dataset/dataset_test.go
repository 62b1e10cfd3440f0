package dataset

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

func TestValue(t *testing.T) {
	t.Run("missing is distinct from empty text and zero", func(t *testing.T) {
		assert.True(t, Missing().IsMissing())
		assert.False(t, Text("").IsMissing())
		assert.False(t, Num(0).IsMissing())
		assert.False(t, Missing().Equal(Text("")))
		assert.False(t, Missing().Equal(Num(0)))
		assert.True(t, Missing().Equal(Value{}))
	})

	t.Run("bool is stored as 0/1", func(t *testing.T) {
		f, ok := BoolValue(true).Float()
		require.True(t, ok)
		assert.Equal(t, 1.0, f)
		f, ok = BoolValue(false).Float()
		require.True(t, ok)
		assert.Equal(t, 0.0, f)
	})

	t.Run("payload accessors", func(t *testing.T) {
		_, ok := Text("A").Float()
		assert.False(t, ok)
		s, ok := Text("A").TextValue()
		assert.True(t, ok)
		assert.Equal(t, "A", s)
		assert.Equal(t, "3.5", Num(3.5).String())
		assert.Equal(t, "<missing>", Missing().String())
	})

	t.Run("NaN is missing", func(t *testing.T) {
		assert.True(t, Num(math.NaN()).IsMissing())
		assert.True(t, Floats(1, math.NaN())[1].IsMissing())
		_, ok := Num(math.NaN()).Float()
		assert.False(t, ok)
	})

	t.Run("Texts maps the NA token to missing", func(t *testing.T) {
		vals := Texts("", "A", "", "B")
		assert.True(t, vals[1].IsMissing())
		assert.True(t, vals[0].Equal(Text("A")))
	})
}

func TestDType(t *testing.T) {
	assert.Equal(t, Float64, ParseDType(" Float64 "))
	assert.True(t, Bool.IsNumeric())
	assert.True(t, Int32.IsNumeric())
	assert.True(t, Object.IsCategorical())
	assert.False(t, ParseDType("datetime64").Known())
}

func TestNewColumn(t *testing.T) {
	_, err := NewColumn("Age", Float64, []Value{Num(1), Missing()})
	require.NoError(t, err)

	_, err = NewColumn("Age", Float64, []Value{Text("x")})
	var schemaErr *errors.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "Age", schemaErr.Column)

	_, err = NewColumn("HomePlanet", Object, []Value{Num(1)})
	assert.True(t, errors.As(err, &schemaErr))

	_, err = NewColumn("", Object, nil)
	assert.True(t, errors.As(err, &schemaErr))
}

func TestNewDataset(t *testing.T) {
	age := MustColumn("Age", Float64, Floats(1, 2, 3))
	planet := MustColumn("HomePlanet", Object, Texts("", "Earth", "Mars", ""))

	ds, err := New(age, planet)
	require.NoError(t, err)
	rows, cols := ds.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, []string{"Age", "HomePlanet"}, ds.Names())
	assert.Equal(t, Schema{{"Age", Float64}, {"HomePlanet", Object}}, ds.Schema())

	t.Run("unequal lengths", func(t *testing.T) {
		short := MustColumn("Short", Float64, Floats(1))
		_, err := New(age, short)
		var shapeErr *errors.ShapeMismatchError
		assert.True(t, errors.As(err, &shapeErr))
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := New(age, age)
		var schemaErr *errors.SchemaError
		assert.True(t, errors.As(err, &schemaErr))
	})
}

func TestDatasetTakeDoesNotAlias(t *testing.T) {
	age := MustColumn("Age", Float64, Floats(10, 20, 30))
	ds := MustNew(age)

	sub := ds.Take([]int{2, 0})
	require.Equal(t, 2, sub.NRows())
	col, _ := sub.Column("Age")
	assert.Equal(t, Floats(30, 10), col.Values)

	col.Values[0] = Num(-1)
	orig, _ := ds.Column("Age")
	assert.Equal(t, 30.0, orig.Values[2].Num)
}

func TestDatasetDropSelectPop(t *testing.T) {
	ds := MustNew(
		MustColumn("PassengerId", Object, Texts("", "1", "2")),
		MustColumn("Age", Float64, Floats(1, 2)),
		MustColumn("Transported", Bool, []Value{BoolValue(true), BoolValue(false)}),
	)

	dropped, err := ds.Drop("PassengerId")
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Transported"}, dropped.Names())
	assert.Equal(t, 3, ds.NCols(), "Drop must not modify the receiver")

	_, err = ds.Drop("Nope")
	assert.Error(t, err)

	sel, err := ds.Select("Transported", "Age")
	require.NoError(t, err)
	assert.Equal(t, []string{"Transported", "Age"}, sel.Names())

	X, y, err := ds.Pop("Transported")
	require.NoError(t, err)
	assert.Equal(t, []string{"PassengerId", "Age"}, X.Names())
	assert.Equal(t, "Transported", y.Name)
}

func TestDatasetWithColumn(t *testing.T) {
	ds := MustNew(MustColumn("Age", Float64, Floats(1, 2)))

	out, err := ds.WithColumn(MustColumn("Deck", Object, Texts("", "B", "F")))
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Deck"}, out.Names())

	replaced, err := out.WithColumn(MustColumn("Age", Float64, Floats(5, 6)))
	require.NoError(t, err)
	col, _ := replaced.Column("Age")
	assert.Equal(t, 5.0, col.Values[0].Num)

	_, err = ds.WithColumn(MustColumn("Bad", Float64, Floats(1)))
	assert.Error(t, err)
}

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		"PassengerId,HomePlanet,CryoSleep,Age,Transported",
		"0001_01,Europa,False,39,False",
		"0002_01,,True,,True",
		"0003_01,Earth,,24.5,true",
	}, "\n")

	ds, err := ReadCSV(strings.NewReader(input), CSVOptions{
		Schema: map[string]DType{
			"PassengerId": Object,
			"HomePlanet":  Object,
			"CryoSleep":   Bool,
			"Age":         Float64,
			"Transported": Bool,
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ds.NRows())

	planet, _ := ds.Column("HomePlanet")
	assert.True(t, planet.Values[1].IsMissing())
	assert.True(t, planet.Values[0].Equal(Text("Europa")))

	cryo, _ := ds.Column("CryoSleep")
	assert.True(t, cryo.Values[1].Equal(Num(1)))
	assert.True(t, cryo.Values[2].IsMissing())

	age, _ := ds.Column("Age")
	assert.Equal(t, 24.5, age.Values[2].Num)
	assert.Equal(t, 1, age.CountMissing())
}

func TestReadCSVNaNIsMissing(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("Age\n1\nNaN\n3\n"), CSVOptions{
		Schema:   map[string]DType{"Age": Float64},
		NAValues: []string{""},
	})
	require.NoError(t, err)
	age, _ := ds.Column("Age")
	assert.True(t, age.Values[1].IsMissing())

	col := MustColumn("Age", Float64, []Value{{Kind: KindNumber, Num: math.NaN()}, Num(2)})
	assert.True(t, col.Values[0].IsMissing())
	assert.Equal(t, 1, col.CountMissing())
}

func TestReadCSVErrors(t *testing.T) {
	t.Run("undeclared column", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a,b\n1,2\n"), CSVOptions{Schema: map[string]DType{"a": Float64}})
		var schemaErr *errors.SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, "b", schemaErr.Column)
	})

	t.Run("default dtype", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("a,b\n1,x\n"), CSVOptions{
			Schema:       map[string]DType{"a": Float64},
			DefaultDType: Object,
		})
		require.NoError(t, err)
		b, _ := ds.Column("b")
		assert.Equal(t, Object, b.DType)
	})

	t.Run("unparsable number", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a\nabc\n"), CSVOptions{Schema: map[string]DType{"a": Float64}})
		var schemaErr *errors.SchemaError
		require.True(t, errors.As(err, &schemaErr))
		assert.Contains(t, schemaErr.Reason, "row 1")
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""), CSVOptions{})
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})
}

func TestWriteCSVRoundTrip(t *testing.T) {
	ds := MustNew(
		MustColumn("Age", Float64, []Value{Num(1.5), Missing()}),
		MustColumn("Deck", Object, Texts("", "B", "")),
	)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, ds))
	assert.Equal(t, "Age,Deck\n1.5,B\n,\n", buf.String())

	back, err := ReadCSV(&buf, CSVOptions{Schema: map[string]DType{"Age": Float64, "Deck": Object}})
	require.NoError(t, err)
	assert.Equal(t, ds.Schema(), back.Schema())
	age, _ := back.Column("Age")
	assert.True(t, age.Values[1].IsMissing())
}
