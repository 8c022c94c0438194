package interpreter

import (
	"strconv"
	"strings"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

// Structural keys identify expressions that must evaluate to the same value.
// Names carry the binding identity and the version observed by the read, so
// keys never match across shadowing frames or across a reassignment.

func literalKey(st *execState, lit ast.Literal) string {
	if !st.optimize {
		return ""
	}
	switch l := lit.(type) {
	case *ast.IntegerLiteral:
		return "i:" + l.Value.String()
	case *ast.RealLiteral:
		return "r:" + strconv.FormatFloat(l.Value, 'g', -1, 64)
	case *ast.BooleanLiteral:
		return "b:" + strconv.FormatBool(l.Value)
	case *ast.StringLiteral:
		return "s:" + strconv.Quote(l.Value)
	}
	return ""
}

func nameKey(identifier string, ref runtime.Ref, indexKey string) string {
	var b strings.Builder
	b.WriteString(identifier)
	b.WriteByte('#')
	b.WriteString(strconv.FormatUint(ref.Binding, 10))
	b.WriteByte('@')
	b.WriteString(strconv.FormatUint(ref.Version, 10))
	if indexKey != "" {
		b.WriteByte('[')
		b.WriteString(indexKey)
		b.WriteByte(']')
	}
	return b.String()
}

// binaryKey orders the operand keys of a reversible operator so that a+b and
// b+a share one key. String concatenation keeps its order.
func binaryKey(operator string, kind runtime.Kind, left, right string) string {
	if ast.IsReversible(operator) && !(operator == "+" && kind == runtime.KindString) && right < left {
		left, right = right, left
	}
	return "(" + left + " " + operator + " " + right + ")"
}

func wrapKey(tag, inner string) string {
	if inner == "" {
		return ""
	}
	return tag + "(" + inner + ")"
}

// joinKeys returns "" when any part is unkeyed.
func joinKeys(keys []string) string {
	for _, k := range keys {
		if k == "" {
			return ""
		}
	}
	return strings.Join(keys, ",")
}
