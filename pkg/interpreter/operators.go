package interpreter

import (
	"math"
	"math/big"

	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

func applyBinaryOperator(op string, left, right runtime.Value) (runtime.Value, error) {
	if left.Kind() != right.Kind() {
		return nil, runtime.Errorf(runtime.BinaryOperationTypeMismatch, "Types of arguments do not match! Left is %s while right is %s", left.Kind(), right.Kind())
	}
	switch l := left.(type) {
	case runtime.IntegerValue:
		return integerOperation(op, l.Val, right.(runtime.IntegerValue).Val)
	case runtime.RealValue:
		return realOperation(op, l.Val, right.(runtime.RealValue).Val)
	case runtime.BoolValue:
		return booleanOperation(op, l.Val, right.(runtime.BoolValue).Val)
	case runtime.StringValue:
		return stringOperation(op, l.Val, right.(runtime.StringValue).Val)
	}
	return nil, unsupportedOperator(op, left.Kind())
}

func unsupportedOperator(op string, kind runtime.Kind) error {
	return runtime.Errorf(runtime.BinaryOperationTypeMismatch, "Operator %s is not supported for %s operands", op, kind)
}

func comparisonOp(op string, cmp int) (bool, bool) {
	switch op {
	case "==":
		return cmp == 0, true
	case "!=":
		return cmp != 0, true
	case "<":
		return cmp < 0, true
	case "<=":
		return cmp <= 0, true
	case ">":
		return cmp > 0, true
	case ">=":
		return cmp >= 0, true
	}
	return false, false
}

func integerOperation(op string, x, y *big.Int) (runtime.Value, error) {
	if result, ok := comparisonOp(op, x.Cmp(y)); ok {
		return runtime.BoolValue{Val: result}, nil
	}
	switch op {
	case "+":
		return runtime.IntegerValue{Val: new(big.Int).Add(x, y)}, nil
	case "-":
		return runtime.IntegerValue{Val: new(big.Int).Sub(x, y)}, nil
	case "*":
		return runtime.IntegerValue{Val: new(big.Int).Mul(x, y)}, nil
	case "/":
		if y.Sign() == 0 {
			return nil, runtime.Errorf(runtime.DivisionByZero, "division by zero")
		}
		f, _ := new(big.Rat).SetFrac(x, y).Float64()
		return runtime.RealValue{Val: f}, nil
	case "%":
		if y.Sign() == 0 {
			return nil, runtime.Errorf(runtime.DivisionByZero, "integer modulo by zero")
		}
		r := new(big.Int).Rem(x, y)
		if r.Sign() != 0 && r.Sign() != y.Sign() {
			r.Add(r, y)
		}
		return runtime.IntegerValue{Val: r}, nil
	case "**":
		if y.Sign() >= 0 {
			if err := checkPowerSize(x, y); err != nil {
				return nil, err
			}
			return runtime.IntegerValue{Val: new(big.Int).Exp(x, y, nil)}, nil
		}
		if x.Sign() == 0 {
			return nil, runtime.Errorf(runtime.DivisionByZero, "0 cannot be raised to a negative power")
		}
		fx, _ := new(big.Float).SetInt(x).Float64()
		fy, _ := new(big.Float).SetInt(y).Float64()
		return runtime.RealValue{Val: math.Pow(fx, fy)}, nil
	case "&":
		return runtime.IntegerValue{Val: new(big.Int).And(x, y)}, nil
	case "|":
		return runtime.IntegerValue{Val: new(big.Int).Or(x, y)}, nil
	case "^":
		return runtime.IntegerValue{Val: new(big.Int).Xor(x, y)}, nil
	}
	return nil, unsupportedOperator(op, runtime.KindInteger)
}

// maxPowerBits bounds the bit length of an integer power.
const maxPowerBits = 1 << 20

// checkPowerSize rejects x**y when the result would need more than
// maxPowerBits bits. Bases 0, 1 and -1 never grow.
func checkPowerSize(x, y *big.Int) error {
	if x.CmpAbs(big.NewInt(1)) <= 0 {
		return nil
	}
	if !y.IsInt64() || y.Int64() > maxPowerBits {
		return runtime.Errorf(runtime.ArithmeticOverflow, "Result of %s ** %s is too large", x, y)
	}
	bits := new(big.Int).Mul(big.NewInt(int64(x.BitLen()-1)), y)
	if bits.Cmp(big.NewInt(maxPowerBits)) > 0 {
		return runtime.Errorf(runtime.ArithmeticOverflow, "Result of %s ** %s is too large", x, y)
	}
	return nil
}

func realComparison(op string, x, y float64) (bool, bool) {
	switch op {
	case "==":
		return x == y, true
	case "!=":
		return x != y, true
	case "<":
		return x < y, true
	case "<=":
		return x <= y, true
	case ">":
		return x > y, true
	case ">=":
		return x >= y, true
	}
	return false, false
}

func realOperation(op string, x, y float64) (runtime.Value, error) {
	if result, ok := realComparison(op, x, y); ok {
		return runtime.BoolValue{Val: result}, nil
	}
	switch op {
	case "+":
		return runtime.RealValue{Val: x + y}, nil
	case "-":
		return runtime.RealValue{Val: x - y}, nil
	case "*":
		return runtime.RealValue{Val: x * y}, nil
	case "/":
		if y == 0 {
			return nil, runtime.Errorf(runtime.DivisionByZero, "float division by zero")
		}
		return runtime.RealValue{Val: x / y}, nil
	case "%":
		if y == 0 {
			return nil, runtime.Errorf(runtime.DivisionByZero, "float modulo")
		}
		m := math.Mod(x, y)
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return runtime.RealValue{Val: m}, nil
	case "**":
		if x == 0 && y < 0 {
			return nil, runtime.Errorf(runtime.DivisionByZero, "0.0 cannot be raised to a negative power")
		}
		return runtime.RealValue{Val: math.Pow(x, y)}, nil
	}
	return nil, unsupportedOperator(op, runtime.KindReal)
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func booleanOperation(op string, x, y bool) (runtime.Value, error) {
	if result, ok := comparisonOp(op, boolRank(x)-boolRank(y)); ok {
		return runtime.BoolValue{Val: result}, nil
	}
	switch op {
	case "&":
		return runtime.BoolValue{Val: x && y}, nil
	case "|":
		return runtime.BoolValue{Val: x || y}, nil
	case "^":
		return runtime.BoolValue{Val: x != y}, nil
	}
	return nil, unsupportedOperator(op, runtime.KindBoolean)
}

func stringOperation(op string, x, y string) (runtime.Value, error) {
	cmp := 0
	switch {
	case x < y:
		cmp = -1
	case x > y:
		cmp = 1
	}
	if result, ok := comparisonOp(op, cmp); ok {
		return runtime.BoolValue{Val: result}, nil
	}
	if op == "+" {
		return runtime.StringValue{Val: x + y}, nil
	}
	return nil, unsupportedOperator(op, runtime.KindString)
}

func negate(v runtime.Value) (runtime.Value, error) {
	switch n := v.(type) {
	case runtime.IntegerValue:
		return runtime.IntegerValue{Val: new(big.Int).Neg(n.Val)}, nil
	case runtime.RealValue:
		return runtime.RealValue{Val: -n.Val}, nil
	}
	return nil, runtime.Errorf(runtime.BinaryOperationTypeMismatch, "Bad operand type for unary minus: %s", v.Kind())
}

func incrDecr(op string, v runtime.Value) (runtime.Value, error) {
	delta := int64(1)
	if op == "--" {
		delta = -1
	} else if op != "++" {
		return nil, runtime.Errorf(runtime.BinaryOperationTypeMismatch, "Unknown operator %s", op)
	}
	switch n := v.(type) {
	case runtime.IntegerValue:
		return runtime.IntegerValue{Val: new(big.Int).Add(n.Val, big.NewInt(delta))}, nil
	case runtime.RealValue:
		return runtime.RealValue{Val: n.Val + float64(delta)}, nil
	}
	return nil, runtime.Errorf(runtime.BinaryOperationTypeMismatch, "Operator %s is not supported for %s operands", op, kindName(v))
}

func kindName(v runtime.Value) string {
	if v == nil {
		return "none"
	}
	return v.Kind().String()
}
