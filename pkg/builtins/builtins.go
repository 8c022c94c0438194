// Package builtins supplies the default tables the interpreter is injected
// with: numeric functions and the primitive conversion operators.
package builtins

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

// Table maps a built-in name to its implementation.
type Table map[string]runtime.NativeFunctionValue

// Default returns sin, cos, tan, asin, acos, atan, exp, log, sqrt and j.
func Default() Table {
	t := Table{}
	unary := map[string]func(float64) (float64, error){
		"sin":  total(math.Sin),
		"cos":  total(math.Cos),
		"tan":  total(math.Tan),
		"atan": total(math.Atan),
		"asin": func(x float64) (float64, error) {
			if x < -1 || x > 1 {
				return 0, errDomain
			}
			return math.Asin(x), nil
		},
		"acos": func(x float64) (float64, error) {
			if x < -1 || x > 1 {
				return 0, errDomain
			}
			return math.Acos(x), nil
		},
		"exp": func(x float64) (float64, error) {
			r := math.Exp(x)
			if math.IsInf(r, 1) && !math.IsInf(x, 1) {
				return 0, errRange
			}
			return r, nil
		},
		"log": func(x float64) (float64, error) {
			if x <= 0 {
				return 0, errDomain
			}
			return math.Log(x), nil
		},
		"sqrt": func(x float64) (float64, error) {
			if x < 0 {
				return 0, errDomain
			}
			return math.Sqrt(x), nil
		},
	}
	for name, fn := range unary {
		t[name] = runtime.NativeFunctionValue{Name: name, Arity: 1, Impl: numeric(name, fn)}
	}
	t["j"] = runtime.NativeFunctionValue{Name: "j", Arity: 2, Impl: besselJ}
	return t
}

var (
	errDomain = errors.New("math domain error")
	errRange  = errors.New("math range error")
)

func total(fn func(float64) float64) func(float64) (float64, error) {
	return func(x float64) (float64, error) { return fn(x), nil }
}

func numeric(name string, fn func(float64) (float64, error)) runtime.NativeFunc {
	return func(args []runtime.Value) (runtime.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		x, err := toFloat(args[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		r, err := fn(x)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return runtime.RealValue{Val: r}, nil
	}
}

// besselJ is the Bessel function of the first kind, j(order, x).
func besselJ(args []runtime.Value) (runtime.Value, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("j expects 2 arguments, got %d", len(args))
	}
	order, ok := args[0].(runtime.IntegerValue)
	if !ok || !order.Val.IsInt64() {
		return nil, fmt.Errorf("j: order must be int, given %s", args[0].Kind())
	}
	x, err := toFloat(args[1])
	if err != nil {
		return nil, fmt.Errorf("j: %w", err)
	}
	return runtime.RealValue{Val: math.Jn(int(order.Val.Int64()), x)}, nil
}

func toFloat(v runtime.Value) (float64, error) {
	switch n := v.(type) {
	case runtime.RealValue:
		return n.Val, nil
	case runtime.IntegerValue:
		f, _ := new(big.Float).SetInt(n.Val).Float64()
		return f, nil
	default:
		return 0, fmt.Errorf("must be real number, not %s", v.Kind())
	}
}
