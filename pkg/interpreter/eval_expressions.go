package interpreter

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

// evaluated is the outcome of one expression: its value (nil for a call
// without a return expression) and, when optimizing, the structural key the
// expression memoizes under. An empty key marks an expression that is never
// memoized, such as a call or an increment.
type evaluated struct {
	value runtime.Value
	key   string
}

func (i *Interpreter) evaluateExpression(node ast.Expression, scope *runtime.Scope, st *execState) (evaluated, error) {
	switch n := node.(type) {
	case *ast.IntegerLiteral:
		return evaluated{value: runtime.IntegerValue{Val: new(big.Int).Set(n.Value)}, key: literalKey(st, n)}, nil
	case *ast.RealLiteral:
		return evaluated{value: runtime.RealValue{Val: n.Value}, key: literalKey(st, n)}, nil
	case *ast.BooleanLiteral:
		return evaluated{value: runtime.BoolValue{Val: n.Value}, key: literalKey(st, n)}, nil
	case *ast.StringLiteral:
		return evaluated{value: runtime.StringValue{Val: n.Value}, key: literalKey(st, n)}, nil
	case *ast.Name:
		return i.evaluateName(n, scope, st)
	case *ast.BinaryOperation:
		return i.evaluateBinaryOperation(n, scope, st)
	case *ast.UnaryMinus:
		return i.evaluateUnaryMinus(n, scope, st)
	case *ast.TypeConversion:
		return i.evaluateTypeConversion(n, scope, st)
	case *ast.PrefixIncrDecr:
		_, next, err := i.applyIncrDecr(n.Operator, n.Target, scope, st)
		return evaluated{value: next}, err
	case *ast.PostfixIncrDecr:
		old, _, err := i.applyIncrDecr(n.Operator, n.Target, scope, st)
		return evaluated{value: old}, err
	case *ast.Call:
		return i.evaluateCall(n, scope, st)
	case *ast.BuiltinCall:
		return i.evaluateBuiltinCall(n, scope, st)
	case nil:
		return evaluated{}, fmt.Errorf("missing expression")
	default:
		return evaluated{}, fmt.Errorf("unsupported expression type: %s", n.NodeType())
	}
}

// evaluateValue evaluates node and requires it to produce a value.
func (i *Interpreter) evaluateValue(node ast.Expression, scope *runtime.Scope, st *execState) (runtime.Value, error) {
	res, err := i.evaluateExpression(node, scope, st)
	if err != nil {
		return nil, err
	}
	if res.value == nil {
		return nil, noValue(node)
	}
	return res.value, nil
}

func noValue(node ast.Expression) error {
	if call, ok := node.(*ast.Call); ok {
		return runtime.Errorf(runtime.NoValue, "Function %s does not return a value", call.Function)
	}
	return runtime.Errorf(runtime.NoValue, "%s expression produced no value", node.NodeType())
}

func smallInt(v runtime.Value) (int, bool) {
	n, ok := v.(runtime.IntegerValue)
	if !ok || !n.Val.IsInt64() {
		return 0, false
	}
	x := n.Val.Int64()
	if x > math.MaxInt32 || x < math.MinInt32 {
		return 0, false
	}
	return int(x), true
}

// evaluateIndex evaluates array subscripts in order. The returned key joins
// the subscripts' keys and is empty when any of them is not memoizable.
func (i *Interpreter) evaluateIndex(index []ast.Expression, scope *runtime.Scope, st *execState) ([]runtime.Value, string, error) {
	values := make([]runtime.Value, 0, len(index))
	keys := make([]string, 0, len(index))
	for _, expr := range index {
		res, err := i.evaluateExpression(expr, scope, st)
		if err != nil {
			return nil, "", err
		}
		if res.value == nil {
			return nil, "", noValue(expr)
		}
		values = append(values, res.value)
		keys = append(keys, res.key)
	}
	return values, joinKeys(keys), nil
}

func (i *Interpreter) evaluateName(name *ast.Name, scope *runtime.Scope, st *execState) (evaluated, error) {
	var (
		index    []runtime.Value
		indexKey string
	)
	if len(name.Index) > 0 {
		var err error
		if index, indexKey, err = i.evaluateIndex(name.Index, scope, st); err != nil {
			return evaluated{}, err
		}
	}
	val, ref, err := scope.ReadRef(name.Identifier, index)
	if err != nil {
		return evaluated{}, err
	}
	res := evaluated{value: val}
	if st.optimize && (len(index) == 0 || indexKey != "") {
		res.key = nameKey(name.Identifier, ref, indexKey)
	}
	return res, nil
}

// evaluateSlot evaluates the expression held by slot. When optimizing and
// the registry already holds an equivalent expression under the same key,
// the slot is redirected to that shared node.
func (i *Interpreter) evaluateSlot(slot *ast.Slot, scope *runtime.Scope, st *execState) (evaluated, error) {
	res, err := i.evaluateExpression(slot.Get(), scope, st)
	if err != nil || !st.optimize || res.key == "" {
		return res, err
	}
	if shared, ok := scope.Registry().Node(res.key); ok {
		slot.Replace(shared)
	}
	return res, nil
}

func (i *Interpreter) evaluateBinaryOperation(op *ast.BinaryOperation, scope *runtime.Scope, st *execState) (evaluated, error) {
	left, err := i.evaluateExpression(op.Left, scope, st)
	if err != nil {
		return evaluated{}, err
	}
	if left.value == nil {
		return evaluated{}, noValue(op.Left)
	}
	right, err := i.evaluateExpression(op.Right, scope, st)
	if err != nil {
		return evaluated{}, err
	}
	if right.value == nil {
		return evaluated{}, noValue(op.Right)
	}
	if !st.optimize || left.key == "" || right.key == "" {
		val, err := applyBinaryOperator(op.Operator, left.value, right.value)
		return evaluated{value: val}, err
	}
	key := binaryKey(op.Operator, left.value.Kind(), left.key, right.key)
	val, err := scope.Registry().Memoize(key, op, func() (runtime.Value, error) {
		return applyBinaryOperator(op.Operator, left.value, right.value)
	})
	if err != nil {
		return evaluated{}, err
	}
	return evaluated{value: val, key: key}, nil
}

func (i *Interpreter) evaluateUnaryMinus(expr *ast.UnaryMinus, scope *runtime.Scope, st *execState) (evaluated, error) {
	operand, err := i.evaluateSlot(expr.Operand, scope, st)
	if err != nil {
		return evaluated{}, err
	}
	if operand.value == nil {
		return evaluated{}, noValue(expr.Operand.Get())
	}
	val, err := negate(operand.value)
	if err != nil {
		return evaluated{}, err
	}
	return evaluated{value: val, key: wrapKey("neg", operand.key)}, nil
}

func (i *Interpreter) evaluateTypeConversion(expr *ast.TypeConversion, scope *runtime.Scope, st *execState) (evaluated, error) {
	conv, ok := i.conversions[expr.Conversion]
	if !ok {
		return evaluated{}, runtime.Errorf(runtime.BuiltinFailure, "Unknown conversion %s", expr.Conversion)
	}
	if expr.From != "" {
		from, err := runtime.ParseKind(expr.From)
		if err != nil {
			return evaluated{}, runtime.Errorf(runtime.ConversionTypeMismatch, "Conversion %s: %v", expr.Conversion, err)
		}
		if from != conv.From {
			return evaluated{}, runtime.Errorf(runtime.ConversionTypeMismatch, "Conversion %s converts from %s, not %s", expr.Conversion, conv.From, from)
		}
	}
	operand, err := i.evaluateSlot(expr.Value, scope, st)
	if err != nil {
		return evaluated{}, err
	}
	if operand.value == nil {
		return evaluated{}, noValue(expr.Value.Get())
	}
	if operand.value.Kind() != conv.From {
		return evaluated{}, runtime.Errorf(runtime.ConversionTypeMismatch, "Converted value is in incorrect type, expected %s given %s", conv.From, operand.value.Kind())
	}
	val, err := conv.Impl(operand.value)
	if err != nil {
		return evaluated{}, runtime.Errorf(runtime.BuiltinFailure, "%s(%s): %v", conv.Name, runtime.FormatValue(operand.value), err)
	}
	return evaluated{value: val, key: wrapKey(expr.Conversion, operand.key)}, nil
}

func (i *Interpreter) applyIncrDecr(operator string, target *ast.Name, scope *runtime.Scope, st *execState) (runtime.Value, runtime.Value, error) {
	var index []runtime.Value
	if len(target.Index) > 0 {
		var err error
		if index, _, err = i.evaluateIndex(target.Index, scope, st); err != nil {
			return nil, nil, err
		}
	}
	return scope.Update(target.Identifier, index, func(current runtime.Value) (runtime.Value, error) {
		return incrDecr(operator, current)
	})
}

// evaluateCall binds the evaluated arguments as the callee's parameters in a
// new frame, runs the body in that frame and evaluates the return expression
// there. An argument whose kind differs from the parameter type is converted
// through the conversion table.
func (i *Interpreter) evaluateCall(call *ast.Call, scope *runtime.Scope, st *execState) (evaluated, error) {
	def, err := scope.ResolveFunction(call.Function)
	if err != nil {
		return evaluated{}, err
	}
	if len(call.Args) != len(def.Params) {
		return evaluated{}, runtime.Errorf(runtime.ArityMismatch, "Function %s expects %d arguments, %d given", def.Name, len(def.Params), len(call.Args))
	}
	args := make([]runtime.Value, len(call.Args))
	for idx, slot := range call.Args {
		res, err := i.evaluateSlot(slot, scope, st)
		if err != nil {
			return evaluated{}, err
		}
		if res.value == nil {
			return evaluated{}, noValue(slot.Get())
		}
		args[idx] = res.value
	}
	var result runtime.Value
	err = withFrame(scope, func() error {
		for idx, param := range def.Params {
			kind, err := runtime.ParseKind(param.ValueType)
			if err != nil {
				return runtime.Errorf(runtime.AssignmentTypeMismatch, "Parameter %s of %s: %v", param.Name, def.Name, err)
			}
			arg, err := i.coerce(args[idx], kind, param.Name)
			if err != nil {
				return err
			}
			if err := scope.Declare(param.Name, kind, arg); err != nil {
				return err
			}
		}
		if def.Body != nil {
			if err := i.executeStatements(def.Body.Body, scope, st); err != nil {
				return err
			}
		}
		if def.Return != nil {
			res, err := i.evaluateExpression(def.Return, scope, st)
			if err != nil {
				return err
			}
			result = res.value
		}
		// The return expression counts as a use of the body's locals.
		if st.optimize && def.Body != nil {
			i.eliminateDeadCode(def.Body.Body, scope)
		}
		return nil
	})
	if err != nil {
		return evaluated{}, err
	}
	return evaluated{value: result}, nil
}

func (i *Interpreter) coerce(arg runtime.Value, kind runtime.Kind, param string) (runtime.Value, error) {
	if arg.Kind() == kind {
		return arg, nil
	}
	conv, ok := i.conversions[runtime.ConversionName(arg.Kind(), kind)]
	if !ok || arg.Kind() == runtime.KindArray {
		return nil, runtime.Errorf(runtime.AssignmentTypeMismatch, "Value of wrong type assigned to %s. Expected %s given %s", param, kind, arg.Kind())
	}
	val, err := conv.Impl(arg)
	if err != nil {
		return nil, runtime.Errorf(runtime.BuiltinFailure, "%s(%s): %v", conv.Name, runtime.FormatValue(arg), err)
	}
	return val, nil
}

func (i *Interpreter) evaluateBuiltinCall(call *ast.BuiltinCall, scope *runtime.Scope, st *execState) (evaluated, error) {
	fn, ok := i.builtins[call.Function]
	if !ok {
		return evaluated{}, runtime.Errorf(runtime.UndeclaredFunction, "Built-in function %s is not available", call.Function)
	}
	if fn.Arity >= 0 && len(call.Args) != fn.Arity {
		return evaluated{}, runtime.Errorf(runtime.ArityMismatch, "Function %s expects %d arguments, %d given", fn.Name, fn.Arity, len(call.Args))
	}
	args := make([]runtime.Value, len(call.Args))
	keys := make([]string, len(call.Args))
	for idx, slot := range call.Args {
		res, err := i.evaluateSlot(slot, scope, st)
		if err != nil {
			return evaluated{}, err
		}
		if res.value == nil {
			return evaluated{}, noValue(slot.Get())
		}
		args[idx] = res.value
		keys[idx] = res.key
	}
	val, err := fn.Impl(args)
	if err != nil {
		return evaluated{}, runtime.Errorf(runtime.BuiltinFailure, "%s(%s): %v", fn.Name, formatArgs(args), err)
	}
	return evaluated{value: val, key: wrapKey(call.Function, joinKeys(keys))}, nil
}

func formatArgs(args []runtime.Value) string {
	parts := make([]string, len(args))
	for idx, arg := range args {
		parts[idx] = runtime.FormatValue(arg)
	}
	return strings.Join(parts, ", ")
}
