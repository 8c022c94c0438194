package runtime

import "fmt"

// ErrorKind classifies evaluation failures.
type ErrorKind int

const (
	BinaryOperationTypeMismatch ErrorKind = iota + 1
	ConditionNotBoolean
	ConversionTypeMismatch
	AssignmentTypeMismatch
	UndeclaredName
	UndeclaredFunction
	DuplicateDeclaration
	ArityMismatch
	ArrayIndexInvalid
	MemoizationConsistency
	DivisionByZero
	BuiltinFailure
	NoValue
	ArithmeticOverflow
)

func (k ErrorKind) String() string {
	switch k {
	case BinaryOperationTypeMismatch:
		return "binary operation"
	case ConditionNotBoolean:
		return "given condition"
	case ConversionTypeMismatch:
		return "conversion"
	case AssignmentTypeMismatch:
		return "assignment"
	case UndeclaredName:
		return "name resolution"
	case UndeclaredFunction:
		return "function resolution"
	case DuplicateDeclaration:
		return "declaration"
	case ArityMismatch:
		return "function call"
	case ArrayIndexInvalid:
		return "array index"
	case MemoizationConsistency:
		return "expression cache"
	case DivisionByZero:
		return "division"
	case BuiltinFailure:
		return "built-in function"
	case NoValue:
		return "missing value"
	case ArithmeticOverflow:
		return "arithmetic"
	default:
		return fmt.Sprintf("error_kind_%d", int(k))
	}
}

// Error is the single error type raised by evaluation. Compare kinds with
// errors.Is against the Err* sentinels.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is matches any *Error of the same kind when the target carries no message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message != "" {
		return t.Kind == e.Kind && t.Message == e.Message
	}
	return t.Kind == e.Kind
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an evaluation error of the given kind.
func Errorf(kind ErrorKind, format string, args ...any) error {
	return newError(kind, format, args...)
}

var (
	ErrBinaryOperationTypeMismatch = &Error{Kind: BinaryOperationTypeMismatch}
	ErrConditionNotBoolean         = &Error{Kind: ConditionNotBoolean}
	ErrConversionTypeMismatch      = &Error{Kind: ConversionTypeMismatch}
	ErrAssignmentTypeMismatch      = &Error{Kind: AssignmentTypeMismatch}
	ErrUndeclaredName              = &Error{Kind: UndeclaredName}
	ErrUndeclaredFunction          = &Error{Kind: UndeclaredFunction}
	ErrDuplicateDeclaration        = &Error{Kind: DuplicateDeclaration}
	ErrArityMismatch               = &Error{Kind: ArityMismatch}
	ErrArrayIndexInvalid           = &Error{Kind: ArrayIndexInvalid}
	ErrMemoizationConsistency      = &Error{Kind: MemoizationConsistency}
	ErrDivisionByZero              = &Error{Kind: DivisionByZero}
	ErrBuiltinFailure              = &Error{Kind: BuiltinFailure}
	ErrNoValue                     = &Error{Kind: NoValue}
	ErrArithmeticOverflow          = &Error{Kind: ArithmeticOverflow}
)
