package ast

import "math/big"

// Short constructors for building trees by hand (tests, the document
// decoder, embedders).

func Int(v int64) *IntegerLiteral { return NewIntegerLiteral(big.NewInt(v)) }
func Real(v float64) *RealLiteral { return NewRealLiteral(v) }
func Bool(v bool) *BooleanLiteral { return NewBooleanLiteral(v) }
func Str(v string) *StringLiteral { return NewStringLiteral(v) }

func ID(name string, index ...Expression) *Name { return NewName(name, index...) }

func Bin(left Expression, operator string, right Expression) *BinaryOperation {
	return NewBinaryOperation(operator, left, right)
}

func Neg(operand Expression) *UnaryMinus { return NewUnaryMinus(operand) }

func Conv(conversion, from string, value Expression) *TypeConversion {
	return NewTypeConversion(conversion, from, value)
}

func Prog(body ...Statement) *Program { return NewProgram(body) }
func Blk(body ...Statement) *Block    { return NewBlock(body) }

func Decl(valueType, name string, value Expression) *Declaration {
	return NewDeclaration(name, valueType, value)
}

func ArrayDecl(valueType, name string, shape ...Expression) *Declaration {
	return NewArrayDeclaration(name, valueType, shape)
}

func Assign(name string, value Expression) *Assignment {
	return NewAssignment(NewName(name), value)
}

func AssignAt(target *Name, value Expression) *Assignment {
	return NewAssignment(target, value)
}

func Out(value Expression) *Print { return NewPrint(value) }

func If(condition Expression, body Statement) *ConditionalIf {
	return NewConditionalIf(condition, body)
}

func IfElse(condition Expression, then, otherwise Statement) *ConditionalIfElse {
	return NewConditionalIfElse(condition, then, otherwise)
}

func Loop(condition Expression, body Statement) *While { return NewWhile(condition, body) }

func ForLoop(init Statement, condition Expression, step Statement, body Statement) *For {
	return NewFor(init, condition, step, body)
}

func Repeat(body Statement, condition Expression) *RepeatUntil {
	return NewRepeatUntil(body, condition)
}

func Par(body ...Statement) *Parallel { return NewParallel(body) }

func Param(name, valueType string) *Parameter {
	return &Parameter{Name: name, ValueType: valueType}
}

func Fn(name string, params []*Parameter, body *Block, ret Expression) *FunctionDefinition {
	return NewFunctionDefinition(name, params, body, ret)
}

func CallFn(function string, args ...Expression) *Call { return NewCall(function, args) }

func Builtin(function string, args ...Expression) *BuiltinCall {
	return NewBuiltinCall(function, args)
}

func Incr(name string) *PrefixIncrDecr      { return NewPrefixIncrDecr("++", NewName(name)) }
func Decr(name string) *PrefixIncrDecr      { return NewPrefixIncrDecr("--", NewName(name)) }
func PostIncr(name string) *PostfixIncrDecr { return NewPostfixIncrDecr("++", NewName(name)) }
func PostDecr(name string) *PostfixIncrDecr { return NewPostfixIncrDecr("--", NewName(name)) }
