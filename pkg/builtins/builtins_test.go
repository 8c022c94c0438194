package builtins

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

func call(t *testing.T, name string, args ...runtime.Value) (runtime.Value, error) {
	t.Helper()
	fn, ok := Default()[name]
	require.True(t, ok, "missing built-in %s", name)
	return fn.Impl(args)
}

func TestDefaultTableNames(t *testing.T) {
	table := Default()
	for _, name := range []string{"sin", "cos", "tan", "asin", "acos", "atan", "exp", "log", "sqrt"} {
		fn, ok := table[name]
		require.True(t, ok, name)
		assert.Equal(t, 1, fn.Arity, name)
	}
	assert.Equal(t, 2, table["j"].Arity)
}

func TestNumericBuiltins(t *testing.T) {
	val, err := call(t, "sqrt", runtime.NewInteger(16))
	require.NoError(t, err)
	assert.Equal(t, runtime.RealValue{Val: 4}, val)

	val, err = call(t, "cos", runtime.RealValue{Val: 0})
	require.NoError(t, err)
	assert.Equal(t, runtime.RealValue{Val: 1}, val)

	val, err = call(t, "j", runtime.NewInteger(0), runtime.RealValue{Val: 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, val.(runtime.RealValue).Val, 1e-12)
}

func TestNumericBuiltinErrors(t *testing.T) {
	cases := []struct {
		name string
		arg  runtime.Value
	}{
		{"sqrt", runtime.RealValue{Val: -1}},
		{"log", runtime.NewInteger(0)},
		{"asin", runtime.RealValue{Val: 2}},
		{"exp", runtime.RealValue{Val: 1000}},
		{"sin", runtime.StringValue{Val: "x"}},
	}
	for _, tc := range cases {
		_, err := call(t, tc.name, tc.arg)
		assert.Error(t, err, tc.name)
	}
	_, err := call(t, "j", runtime.RealValue{Val: 1}, runtime.RealValue{Val: 1})
	assert.Error(t, err)
}

func TestConversionTableIsComplete(t *testing.T) {
	kinds := []runtime.Kind{runtime.KindInteger, runtime.KindReal, runtime.KindBoolean, runtime.KindString}
	table := Conversions()
	assert.Len(t, table, 12)
	for _, from := range kinds {
		for _, to := range kinds {
			if from == to {
				continue
			}
			conv, ok := table[runtime.ConversionName(from, to)]
			require.True(t, ok, "%s to %s", from, to)
			assert.Equal(t, from, conv.From)
			assert.Equal(t, to, conv.To)
		}
	}
	_, ok := table["inttostr"]
	assert.True(t, ok)
}

func TestConversions(t *testing.T) {
	table := Conversions()
	cases := []struct {
		conversion string
		in         runtime.Value
		want       string
	}{
		{"inttostr", runtime.NewInteger(42), "42"},
		{"inttoreal", runtime.NewInteger(3), "3.0"},
		{"inttoboolean", runtime.NewInteger(0), "false"},
		{"realtostr", runtime.RealValue{Val: 2.5}, "2.5"},
		{"realtoint", runtime.RealValue{Val: -2.7}, "-2"},
		{"realtoboolean", runtime.RealValue{Val: 0.1}, "true"},
		{"booleantostr", runtime.BoolValue{Val: true}, "true"},
		{"booleantoint", runtime.BoolValue{Val: true}, "1"},
		{"booleantoreal", runtime.BoolValue{Val: false}, "0.0"},
		{"strtoint", runtime.StringValue{Val: " 1_000 "}, "1000"},
		{"strtoreal", runtime.StringValue{Val: "1e3"}, "1000.0"},
		{"strtoboolean", runtime.StringValue{Val: "false"}, "true"},
		{"strtoboolean", runtime.StringValue{Val: ""}, "false"},
	}
	for _, tc := range cases {
		t.Run(tc.conversion, func(t *testing.T) {
			val, err := table[tc.conversion].Impl(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, runtime.FormatValue(val))
		})
	}
}

func TestConversionFailures(t *testing.T) {
	table := Conversions()
	_, err := table["strtoint"].Impl(runtime.StringValue{Val: "twelve"})
	assert.Error(t, err)
	_, err = table["strtoreal"].Impl(runtime.StringValue{Val: "1.2.3"})
	assert.Error(t, err)
	_, err = table["realtoint"].Impl(runtime.RealValue{Val: math.Inf(1)})
	assert.Error(t, err)
}
