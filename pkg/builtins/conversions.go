package builtins

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

// ConversionTable maps an operator name such as "realtoint" to its entry.
type ConversionTable map[string]runtime.ConversionValue

// Conversions returns the twelve conversions between the primitive kinds.
func Conversions() ConversionTable {
	t := ConversionTable{}
	add := func(from, to runtime.Kind, fn func(runtime.Value) (runtime.Value, error)) {
		name := runtime.ConversionName(from, to)
		t[name] = runtime.ConversionValue{Name: name, From: from, To: to, Impl: fn}
	}

	add(runtime.KindInteger, runtime.KindString, func(v runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: v.(runtime.IntegerValue).Val.String()}, nil
	})
	add(runtime.KindInteger, runtime.KindReal, func(v runtime.Value) (runtime.Value, error) {
		f, _ := new(big.Float).SetInt(v.(runtime.IntegerValue).Val).Float64()
		return runtime.RealValue{Val: f}, nil
	})
	add(runtime.KindInteger, runtime.KindBoolean, func(v runtime.Value) (runtime.Value, error) {
		return runtime.BoolValue{Val: v.(runtime.IntegerValue).Val.Sign() != 0}, nil
	})

	add(runtime.KindReal, runtime.KindString, func(v runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: runtime.FormatReal(v.(runtime.RealValue).Val)}, nil
	})
	add(runtime.KindReal, runtime.KindInteger, func(v runtime.Value) (runtime.Value, error) {
		f := v.(runtime.RealValue).Val
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("cannot convert %s to integer", runtime.FormatReal(f))
		}
		i, _ := big.NewFloat(math.Trunc(f)).Int(nil)
		return runtime.IntegerValue{Val: i}, nil
	})
	add(runtime.KindReal, runtime.KindBoolean, func(v runtime.Value) (runtime.Value, error) {
		return runtime.BoolValue{Val: v.(runtime.RealValue).Val != 0}, nil
	})

	add(runtime.KindBoolean, runtime.KindString, func(v runtime.Value) (runtime.Value, error) {
		return runtime.StringValue{Val: runtime.FormatValue(v)}, nil
	})
	add(runtime.KindBoolean, runtime.KindInteger, func(v runtime.Value) (runtime.Value, error) {
		if v.(runtime.BoolValue).Val {
			return runtime.NewInteger(1), nil
		}
		return runtime.NewInteger(0), nil
	})
	add(runtime.KindBoolean, runtime.KindReal, func(v runtime.Value) (runtime.Value, error) {
		if v.(runtime.BoolValue).Val {
			return runtime.RealValue{Val: 1}, nil
		}
		return runtime.RealValue{Val: 0}, nil
	})

	add(runtime.KindString, runtime.KindInteger, func(v runtime.Value) (runtime.Value, error) {
		s := v.(runtime.StringValue).Val
		i, ok := new(big.Int).SetString(strings.ReplaceAll(strings.TrimSpace(s), "_", ""), 10)
		if !ok {
			return nil, fmt.Errorf("invalid literal for int: %q", s)
		}
		return runtime.IntegerValue{Val: i}, nil
	})
	add(runtime.KindString, runtime.KindReal, func(v runtime.Value) (runtime.Value, error) {
		s := v.(runtime.StringValue).Val
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("could not convert string to real: %q", s)
		}
		return runtime.RealValue{Val: f}, nil
	})
	// Any non-empty string is true, "false" included.
	add(runtime.KindString, runtime.KindBoolean, func(v runtime.Value) (runtime.Value, error) {
		return runtime.BoolValue{Val: v.(runtime.StringValue).Val != ""}, nil
	})
	return t
}
