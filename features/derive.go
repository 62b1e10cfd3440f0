// Package features derives new columns from existing ones with CEL
// expressions, e.g. splitting a composite "Cabin" field "B/0/P" into deck,
// number and side:
//
//	Cabin.split("/")[0]
//	double(Cabin.split("/")[1])
//
// Every column whose name is a valid identifier is bound as a variable of
// dynamic type; all columns are also reachable as row["name"]. Missing cells
// are unknown values, so any expression that depends on one yields a
// missing cell rather than an error.
package features

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"
	"github.com/google/cel-go/interpreter"

	"github.com/YuminosukeSato/tabprep/dataset"
	"github.com/YuminosukeSato/tabprep/pkg/errors"
	"github.com/YuminosukeSato/tabprep/pkg/log"
)

// rowVar exposes all cells of the current row as a map.
const rowVar = "row"

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var reserved = map[string]bool{
	"true": true, "false": true, "null": true, "in": true, "as": true, "break": true,
	"const": true, "continue": true, "else": true, "for": true, "function": true, "if": true,
	"import": true, "let": true, "loop": true, "package": true, "namespace": true,
	"return": true, "var": true, "void": true, "while": true, rowVar: true,
}

// Derivation declares one derived column.
type Derivation struct {
	Name  string
	DType dataset.DType
	Expr  string
}

type compiled struct {
	Derivation
	prg cel.Program
}

// Deriver evaluates a fixed list of derivations against datasets sharing
// the schema it was built for. Derivations run in order and may refer to
// columns produced by earlier ones.
type Deriver struct {
	inputs dataset.Schema
	steps  []compiled
	logger log.Logger
}

// NewDeriver compiles derivations against schema.
func NewDeriver(schema dataset.Schema, derivations ...Derivation) (*Deriver, error) {
	d := &Deriver{
		inputs: schema,
		logger: log.GetLoggerWithName("Deriver"),
	}

	known := append(dataset.Schema(nil), schema...)
	for _, der := range derivations {
		if der.Name == "" {
			return nil, errors.NewValidationError("derive.name", "must not be empty", der.Expr)
		}
		if !der.DType.Known() {
			return nil, errors.NewSchemaError("NewDeriver", der.Name, fmt.Sprintf("unsupported dtype %q", der.DType))
		}

		env, err := newEnv(known)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create CEL environment")
		}
		ast, issues := env.Compile(der.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, errors.NewValidationError("derive."+der.Name, issues.Err().Error(), der.Expr)
		}
		prg, err := env.Program(ast, cel.EvalOptions(cel.OptPartialEval))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to build program for %s", der.Name)
		}

		d.steps = append(d.steps, compiled{Derivation: der, prg: prg})
		if _, exists := known.Lookup(der.Name); !exists {
			known = append(known, dataset.Field{Name: der.Name, DType: der.DType})
		}
	}
	return d, nil
}

func newEnv(schema dataset.Schema) (*cel.Env, error) {
	opts := []cel.EnvOption{
		ext.Strings(),
		cel.Variable(rowVar, cel.MapType(cel.StringType, cel.DynType)),
	}
	for _, f := range schema {
		if bindable(f.Name) {
			opts = append(opts, cel.Variable(f.Name, cel.DynType))
		}
	}
	return cel.NewEnv(opts...)
}

func bindable(name string) bool {
	return identPattern.MatchString(name) && !reserved[name]
}

// Names returns the derived column names in evaluation order.
func (d *Deriver) Names() []string {
	names := make([]string, len(d.steps))
	for i, s := range d.steps {
		names[i] = s.Name
	}
	return names
}

// Apply returns ds with every derived column appended (or replaced, when a
// derivation reuses an existing name). ds is not modified.
func (d *Deriver) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	for _, f := range d.inputs {
		if _, ok := ds.Column(f.Name); !ok {
			return nil, errors.NewSchemaError("Deriver.Apply", f.Name, "column not found")
		}
	}

	out := ds
	for _, step := range d.steps {
		col, err := step.evaluate(out)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(col); err != nil {
			return nil, err
		}
		d.logger.Debug("Derived column",
			log.ColumnKey, step.Name,
			log.DataTypeKey, step.DType.String(),
			log.MissingCountKey, col.CountMissing(),
		)
	}
	return out, nil
}

func (c *compiled) evaluate(ds *dataset.Dataset) (*dataset.Column, error) {
	cols := ds.Columns()
	values := make([]dataset.Value, ds.NRows())

	for i := range values {
		vars := make(map[string]any, len(cols)+1)
		row := make(map[string]any, len(cols))
		var unknowns []*interpreter.AttributePattern
		for _, col := range cols {
			v := col.Values[i]
			if v.IsMissing() {
				unknowns = append(unknowns, cel.AttributePattern(rowVar).QualString(col.Name))
				if bindable(col.Name) {
					unknowns = append(unknowns, cel.AttributePattern(col.Name))
				}
				row[col.Name] = types.NullValue
				continue
			}
			native := toNative(col.DType, v)
			row[col.Name] = native
			if bindable(col.Name) {
				vars[col.Name] = native
			}
		}
		vars[rowVar] = row

		act, err := cel.PartialVars(vars, unknowns...)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build activation")
		}
		out, _, err := c.prg.Eval(act)
		if err != nil {
			return nil, errors.NewValueErrorWrap("Deriver.Apply",
				fmt.Sprintf("evaluating %s at row %d", c.Name, i), err)
		}
		if values[i], err = c.fromCEL(out); err != nil {
			return nil, errors.NewValueErrorWrap("Deriver.Apply",
				fmt.Sprintf("converting %s at row %d", c.Name, i), err)
		}
	}
	return dataset.NewColumn(c.Name, c.DType, values)
}

func toNative(dtype dataset.DType, v dataset.Value) any {
	if f, ok := v.Float(); ok {
		if dtype == dataset.Bool {
			return f != 0
		}
		return f
	}
	s, _ := v.TextValue()
	return s
}

func (c *compiled) fromCEL(out ref.Val) (dataset.Value, error) {
	if types.IsUnknown(out) || out == types.NullValue {
		return dataset.Missing(), nil
	}
	switch x := out.Value().(type) {
	case float64:
		return c.number(x, strconv.FormatFloat(x, 'g', -1, 64)), nil
	case int64:
		return c.number(float64(x), strconv.FormatInt(x, 10)), nil
	case uint64:
		return c.number(float64(x), strconv.FormatUint(x, 10)), nil
	case bool:
		if c.DType.IsCategorical() {
			return dataset.Text(strconv.FormatBool(x)), nil
		}
		return dataset.BoolValue(x), nil
	case string:
		if c.DType.IsCategorical() {
			return dataset.Text(x), nil
		}
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return dataset.Missing(), errors.NewSchemaError("Deriver.Apply", c.Name,
				fmt.Sprintf("expression returned text %q for %s column", x, c.DType))
		}
		return dataset.Num(f), nil
	default:
		return dataset.Missing(), errors.NewSchemaError("Deriver.Apply", c.Name,
			fmt.Sprintf("unsupported expression result type %T", x))
	}
}

func (c *compiled) number(f float64, text string) dataset.Value {
	if c.DType.IsCategorical() {
		return dataset.Text(text)
	}
	return dataset.Num(f)
}
