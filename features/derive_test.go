package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

func passengers() *dataset.Dataset {
	return dataset.MustNew(
		dataset.NewStringColumn("PassengerId", []string{"0001_01", "0002_01", "0003_01"}, ""),
		dataset.NewStringColumn("Cabin", []string{"B/0/P", "", "F/12/S"}, ""),
		dataset.NewFloatColumn("RoomService", []float64{0, 109, 43}),
	)
}

func cabinDerivations() []Derivation {
	return []Derivation{
		{Name: "Cabin_Deck", DType: dataset.Object, Expr: `Cabin.split("/")[0]`},
		{Name: "Cabin_Number", DType: dataset.Float64, Expr: `double(Cabin.split("/")[1])`},
		{Name: "Cabin_Side", DType: dataset.Object, Expr: `Cabin.split("/")[2]`},
	}
}

func TestDeriverCabinSplit(t *testing.T) {
	ds := passengers()
	d, err := NewDeriver(ds.Schema(), cabinDerivations()...)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cabin_Deck", "Cabin_Number", "Cabin_Side"}, d.Names())

	out, err := d.Apply(ds)
	require.NoError(t, err)
	assert.Equal(t, 6, out.NCols())
	assert.Equal(t, 3, ds.NCols(), "input must not be modified")

	deck, _ := out.Column("Cabin_Deck")
	assert.Equal(t, dataset.Texts("", "B", "", "F"), deck.Values)

	num, _ := out.Column("Cabin_Number")
	assert.Equal(t, dataset.Float64, num.DType)
	assert.True(t, num.Values[0].Equal(dataset.Num(0)))
	assert.True(t, num.Values[1].IsMissing(), "missing input yields a missing cell")
	assert.True(t, num.Values[2].Equal(dataset.Num(12)))

	side, _ := out.Column("Cabin_Side")
	assert.Equal(t, dataset.Texts("", "P", "", "S"), side.Values)
}

func TestDeriverExpressions(t *testing.T) {
	ds := passengers()
	d, err := NewDeriver(ds.Schema(),
		Derivation{Name: "Group", DType: dataset.Object, Expr: `PassengerId.split("_")[0]`},
		Derivation{Name: "Spent", DType: dataset.Bool, Expr: `row["RoomService"] > 0.0`},
		Derivation{Name: "GroupNumber", DType: dataset.Int64, Expr: `int(Group)`},
	)
	require.NoError(t, err)

	out, err := d.Apply(ds)
	require.NoError(t, err)

	spent, _ := out.Column("Spent")
	assert.Equal(t, []dataset.Value{dataset.BoolValue(false), dataset.BoolValue(true), dataset.BoolValue(true)}, spent.Values)
	group, _ := out.Column("GroupNumber")
	assert.Equal(t, dataset.Floats(1, 2, 3), group.Values)
}

func TestDeriverErrors(t *testing.T) {
	schema := passengers().Schema()

	t.Run("compile error", func(t *testing.T) {
		_, err := NewDeriver(schema, Derivation{Name: "x", DType: dataset.Object, Expr: `Cabin.`})
		var ve *errors.ValidationError
		assert.True(t, errors.As(err, &ve))
	})
	t.Run("unknown variable", func(t *testing.T) {
		_, err := NewDeriver(schema, Derivation{Name: "x", DType: dataset.Object, Expr: `Deck + "x"`})
		assert.Error(t, err)
	})
	t.Run("unknown dtype", func(t *testing.T) {
		_, err := NewDeriver(schema, Derivation{Name: "x", DType: dataset.ParseDType("date"), Expr: `Cabin`})
		var se *errors.SchemaError
		assert.True(t, errors.As(err, &se))
	})
	t.Run("evaluation error on present input", func(t *testing.T) {
		d, err := NewDeriver(schema, Derivation{Name: "x", DType: dataset.Float64, Expr: `double(Cabin)`})
		require.NoError(t, err)
		_, err = d.Apply(passengers())
		var ve *errors.ValueError
		assert.True(t, errors.As(err, &ve))
	})
	t.Run("input column missing", func(t *testing.T) {
		d, err := NewDeriver(schema, cabinDerivations()...)
		require.NoError(t, err)
		short, err := passengers().Drop("Cabin")
		require.NoError(t, err)
		_, err = d.Apply(short)
		var se *errors.SchemaError
		assert.True(t, errors.As(err, &se))
	})
}
