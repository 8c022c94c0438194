package runtime

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Kind identifies the runtime value category. The primitive kinds double as
// the declared types of variables and parameters.
type Kind int

const (
	KindInteger Kind = iota
	KindReal
	KindBoolean
	KindString
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "int"
	case KindReal:
		return "real"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// ParseKind maps a language type name to its primitive kind.
func ParseKind(name string) (Kind, error) {
	switch name {
	case "int":
		return KindInteger, nil
	case "real":
		return KindReal, nil
	case "boolean":
		return KindBoolean, nil
	case "string":
		return KindString, nil
	default:
		return 0, fmt.Errorf("unknown type %q", name)
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type IntegerValue struct {
	Val *big.Int
}

func (v IntegerValue) Kind() Kind { return KindInteger }

func NewInteger(v int64) IntegerValue {
	return IntegerValue{Val: big.NewInt(v)}
}

type RealValue struct {
	Val float64
}

func (v RealValue) Kind() Kind { return KindReal }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBoolean }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// DefaultValue returns the zero value of a primitive kind.
func DefaultValue(kind Kind) Value {
	switch kind {
	case KindInteger:
		return IntegerValue{Val: new(big.Int)}
	case KindReal:
		return RealValue{}
	case KindBoolean:
		return BoolValue{}
	case KindString:
		return StringValue{}
	default:
		return nil
	}
}

//-----------------------------------------------------------------------------
// Arrays
//-----------------------------------------------------------------------------

// ArrayValue is a fixed-shape array of one primitive kind, stored flat in
// row-major order.
type ArrayValue struct {
	Elem     Kind
	Shape    []int
	Elements []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

// MaxArrayElements bounds the number of elements a single array may hold.
const MaxArrayElements = 1 << 24

// NewArray allocates a zero-filled array. Every dimension must be positive
// and the total element count must not exceed MaxArrayElements.
func NewArray(elem Kind, shape []int) (*ArrayValue, error) {
	if len(shape) == 0 {
		return nil, newError(ArrayIndexInvalid, "array requires at least one dimension")
	}
	size := 1
	for _, dim := range shape {
		if dim <= 0 {
			return nil, newError(ArrayIndexInvalid, "array dimensions must be positive, got %d", dim)
		}
		if size > MaxArrayElements/dim {
			return nil, newError(ArrayIndexInvalid, "array of shape %v exceeds %d elements", shape, MaxArrayElements)
		}
		size *= dim
	}
	elems := make([]Value, size)
	for idx := range elems {
		elems[idx] = DefaultValue(elem)
	}
	return &ArrayValue{Elem: elem, Shape: append([]int(nil), shape...), Elements: elems}, nil
}

func (v *ArrayValue) Rank() int { return len(v.Shape) }

// Offset converts an index tuple to the flat row-major position.
func (v *ArrayValue) Offset(index []Value) (int, error) {
	if len(index) != len(v.Shape) {
		return 0, newError(ArrayIndexInvalid, "array of rank %d indexed with %d components", len(v.Shape), len(index))
	}
	offset := 0
	for k, raw := range index {
		iv, ok := raw.(IntegerValue)
		if !ok {
			return 0, newError(ArrayIndexInvalid, "array index must be int, given %s", raw.Kind())
		}
		if !iv.Val.IsInt64() || iv.Val.Int64() < 0 || iv.Val.Int64() >= int64(v.Shape[k]) {
			return 0, newError(ArrayIndexInvalid, "index %s out of range for dimension %d of size %d", iv.Val, k, v.Shape[k])
		}
		offset = offset*v.Shape[k] + int(iv.Val.Int64())
	}
	return offset, nil
}

// Clone copies the element storage; elements themselves are immutable.
func (v *ArrayValue) Clone() *ArrayValue {
	return &ArrayValue{
		Elem:     v.Elem,
		Shape:    append([]int(nil), v.Shape...),
		Elements: append([]Value(nil), v.Elements...),
	}
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

//-----------------------------------------------------------------------------
// Formatting
//-----------------------------------------------------------------------------

// FormatValue renders a value the way print shows it.
func FormatValue(val Value) string {
	switch v := val.(type) {
	case IntegerValue:
		return v.Val.String()
	case RealValue:
		return FormatReal(v.Val)
	case BoolValue:
		if v.Val {
			return "true"
		}
		return "false"
	case StringValue:
		return v.Val
	case *ArrayValue:
		return formatArray(v.Elements, v.Shape)
	case nil:
		return "<none>"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// FormatReal prints the shortest representation that round-trips, always
// marking the value as real ("5.0" rather than "5").
func FormatReal(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

func formatArray(elems []Value, shape []int) string {
	if len(shape) == 0 {
		return ""
	}
	stride := len(elems) / shape[0]
	parts := make([]string, 0, shape[0])
	for i := 0; i < shape[0]; i++ {
		chunk := elems[i*stride : (i+1)*stride]
		if len(shape) == 1 {
			parts = append(parts, FormatValue(chunk[0]))
			continue
		}
		parts = append(parts, formatArray(chunk, shape[1:]))
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}
