package ast

import (
	"math/big"
	"sync"
	"sync/atomic"
)

type NodeType string

const (
	NodeProgram           NodeType = "Program"
	NodeBlock             NodeType = "Block"
	NodeDeclaration       NodeType = "Declaration"
	NodeAssignment        NodeType = "Assignment"
	NodePrint             NodeType = "Print"
	NodeConditionalIf     NodeType = "If"
	NodeConditionalIfElse NodeType = "IfElse"
	NodeWhile             NodeType = "While"
	NodeFor               NodeType = "For"
	NodeRepeatUntil       NodeType = "RepeatUntil"
	NodeParallel          NodeType = "Parallel"
	NodeFunctionDef       NodeType = "FunctionDefinition"
	NodeBinaryOperation   NodeType = "BinaryOperation"
	NodeUnaryMinus        NodeType = "Minus"
	NodeTypeConversion    NodeType = "Conversion"
	NodeName              NodeType = "Name"
	NodePrefixIncrDecr    NodeType = "PrefixIncrDecr"
	NodePostfixIncrDecr   NodeType = "PostfixIncrDecr"
	NodeCall              NodeType = "Call"
	NodeBuiltinCall       NodeType = "BuiltinCall"
	NodeIntegerLiteral    NodeType = "Integer"
	NodeRealLiteral       NodeType = "Real"
	NodeBooleanLiteral    NodeType = "Boolean"
	NodeStringLiteral     NodeType = "String"
)

type Node interface {
	NodeType() NodeType
	isNode()
}

type nodeImpl struct {
	Type NodeType `json:"type"`
}

func newNodeImpl(kind NodeType) nodeImpl {
	return nodeImpl{Type: kind}
}

func (n nodeImpl) NodeType() NodeType { return n.Type }
func (nodeImpl) isNode()              {}

// Marker interfaces.

type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{}

func (statementMarker) statementNode() {}

// Expression nodes double as statements (`i++;`, `f(1);`).
type Expression interface {
	Node
	expressionNode()
	statementNode()
}

type expressionMarker struct{}

func (expressionMarker) expressionNode() {}

type Literal interface {
	Expression
	literalNode()
}

type literalMarker struct{}

func (literalMarker) literalNode() {}

//-----------------------------------------------------------------------------
// Rewritable children
//-----------------------------------------------------------------------------

// Slot holds a child expression that the optimizer may swap for an equal,
// previously registered expression. Reads and swaps are atomic so a subtree
// shared by concurrently running tasks stays consistent.
type Slot struct {
	ptr atomic.Pointer[slotBox]
}

type slotBox struct {
	expr Expression
}

func NewSlot(expr Expression) *Slot {
	s := &Slot{}
	s.ptr.Store(&slotBox{expr: expr})
	return s
}

// Get returns the current child, nil for an empty or nil slot.
func (s *Slot) Get() Expression {
	if s == nil {
		return nil
	}
	box := s.ptr.Load()
	if box == nil {
		return nil
	}
	return box.expr
}

// Replace swaps the child. It reports false when the slot already held expr.
func (s *Slot) Replace(expr Expression) bool {
	for {
		old := s.ptr.Load()
		if old != nil && old.expr == expr {
			return false
		}
		if s.ptr.CompareAndSwap(old, &slotBox{expr: expr}) {
			return true
		}
	}
}

func slots(exprs []Expression) []*Slot {
	out := make([]*Slot, 0, len(exprs))
	for _, expr := range exprs {
		out = append(out, NewSlot(expr))
	}
	return out
}

// StatementList is the live body of a Program or Block. The dead-code pass
// prunes it in place between executions.
type StatementList struct {
	mu    sync.RWMutex
	items []Statement
}

func NewStatementList(items []Statement) *StatementList {
	cp := make([]Statement, len(items))
	copy(cp, items)
	return &StatementList{items: cp}
}

// Statements returns a snapshot safe to iterate while the list is pruned.
func (l *StatementList) Statements() []Statement {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Statement, len(l.items))
	copy(out, l.items)
	return out
}

func (l *StatementList) Len() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Retain keeps the statements for which keep returns true and reports how
// many were removed.
func (l *StatementList) Retain(keep func(Statement) bool) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.items[:0:0]
	for _, stmt := range l.items {
		if keep(stmt) {
			kept = append(kept, stmt)
		}
	}
	removed := len(l.items) - len(kept)
	l.items = kept
	return removed
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

type Program struct {
	nodeImpl
	statementMarker

	Body *StatementList `json:"body"`
}

func NewProgram(body []Statement) *Program {
	return &Program{nodeImpl: newNodeImpl(NodeProgram), Body: NewStatementList(body)}
}

type Block struct {
	nodeImpl
	statementMarker

	Body *StatementList `json:"body"`
}

func NewBlock(body []Statement) *Block {
	return &Block{nodeImpl: newNodeImpl(NodeBlock), Body: NewStatementList(body)}
}

// Declaration binds Name in the innermost frame. Shape is non-empty for
// array declarations, in which case Value is unused.
type Declaration struct {
	nodeImpl
	statementMarker

	Name      string       `json:"name"`
	ValueType string       `json:"valueType"`
	Shape     []Expression `json:"shape,omitempty"`
	Value     *Slot        `json:"value,omitempty"`
}

func NewDeclaration(name, valueType string, value Expression) *Declaration {
	decl := &Declaration{nodeImpl: newNodeImpl(NodeDeclaration), Name: name, ValueType: valueType}
	if value != nil {
		decl.Value = NewSlot(value)
	}
	return decl
}

func NewArrayDeclaration(name, valueType string, shape []Expression) *Declaration {
	return &Declaration{nodeImpl: newNodeImpl(NodeDeclaration), Name: name, ValueType: valueType, Shape: shape}
}

type Assignment struct {
	nodeImpl
	statementMarker

	Target *Name `json:"target"`
	Value  *Slot `json:"value"`
}

func NewAssignment(target *Name, value Expression) *Assignment {
	return &Assignment{nodeImpl: newNodeImpl(NodeAssignment), Target: target, Value: NewSlot(value)}
}

type Print struct {
	nodeImpl
	statementMarker

	Value *Slot `json:"value"`
}

func NewPrint(value Expression) *Print {
	return &Print{nodeImpl: newNodeImpl(NodePrint), Value: NewSlot(value)}
}

type ConditionalIf struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      Statement  `json:"body"`
}

func NewConditionalIf(condition Expression, body Statement) *ConditionalIf {
	return &ConditionalIf{nodeImpl: newNodeImpl(NodeConditionalIf), Condition: condition, Body: body}
}

type ConditionalIfElse struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Then      Statement  `json:"then"`
	Else      Statement  `json:"else"`
}

func NewConditionalIfElse(condition Expression, then, otherwise Statement) *ConditionalIfElse {
	return &ConditionalIfElse{nodeImpl: newNodeImpl(NodeConditionalIfElse), Condition: condition, Then: then, Else: otherwise}
}

type While struct {
	nodeImpl
	statementMarker

	Condition Expression `json:"condition"`
	Body      Statement  `json:"body"`
}

func NewWhile(condition Expression, body Statement) *While {
	return &While{nodeImpl: newNodeImpl(NodeWhile), Condition: condition, Body: body}
}

type For struct {
	nodeImpl
	statementMarker

	Init      Statement  `json:"init"`
	Condition Expression `json:"condition"`
	Step      Statement  `json:"step"`
	Body      Statement  `json:"body"`
}

func NewFor(init Statement, condition Expression, step Statement, body Statement) *For {
	return &For{nodeImpl: newNodeImpl(NodeFor), Init: init, Condition: condition, Step: step, Body: body}
}

type RepeatUntil struct {
	nodeImpl
	statementMarker

	Body      Statement  `json:"body"`
	Condition Expression `json:"condition"`
}

func NewRepeatUntil(body Statement, condition Expression) *RepeatUntil {
	return &RepeatUntil{nodeImpl: newNodeImpl(NodeRepeatUntil), Body: body, Condition: condition}
}

type Parallel struct {
	nodeImpl
	statementMarker

	Body []Statement `json:"body"`
}

func NewParallel(body []Statement) *Parallel {
	return &Parallel{nodeImpl: newNodeImpl(NodeParallel), Body: body}
}

type Parameter struct {
	Name      string `json:"name"`
	ValueType string `json:"valueType"`
}

type FunctionDefinition struct {
	nodeImpl
	statementMarker

	Name   string       `json:"name"`
	Params []*Parameter `json:"params"`
	Body   *Block       `json:"body"`
	Return Expression   `json:"return,omitempty"`
}

func NewFunctionDefinition(name string, params []*Parameter, body *Block, ret Expression) *FunctionDefinition {
	return &FunctionDefinition{nodeImpl: newNodeImpl(NodeFunctionDef), Name: name, Params: params, Body: body, Return: ret}
}

//-----------------------------------------------------------------------------
// Expressions
//-----------------------------------------------------------------------------

type BinaryOperation struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string     `json:"operator"`
	Left     Expression `json:"left"`
	Right    Expression `json:"right"`
}

func NewBinaryOperation(operator string, left, right Expression) *BinaryOperation {
	return &BinaryOperation{nodeImpl: newNodeImpl(NodeBinaryOperation), Operator: operator, Left: left, Right: right}
}

// Reversible reports whether operand order is irrelevant for the operator.
func (b *BinaryOperation) Reversible() bool {
	return IsReversible(b.Operator)
}

func IsReversible(operator string) bool {
	switch operator {
	case "+", "*", "==", "!=", "&", "|", "^":
		return true
	default:
		return false
	}
}

type UnaryMinus struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operand *Slot `json:"value"`
}

func NewUnaryMinus(operand Expression) *UnaryMinus {
	return &UnaryMinus{nodeImpl: newNodeImpl(NodeUnaryMinus), Operand: NewSlot(operand)}
}

// TypeConversion applies the named conversion operator (e.g. "inttostr")
// after checking the operand has the From type.
type TypeConversion struct {
	nodeImpl
	expressionMarker
	statementMarker

	Conversion string `json:"conversion"`
	From       string `json:"from"`
	Value      *Slot  `json:"value"`
}

func NewTypeConversion(conversion, from string, value Expression) *TypeConversion {
	return &TypeConversion{nodeImpl: newNodeImpl(NodeTypeConversion), Conversion: conversion, From: from, Value: NewSlot(value)}
}

// Name references a variable, optionally indexing into an array.
type Name struct {
	nodeImpl
	expressionMarker
	statementMarker

	Identifier string       `json:"name"`
	Index      []Expression `json:"index,omitempty"`
}

func NewName(identifier string, index ...Expression) *Name {
	return &Name{nodeImpl: newNodeImpl(NodeName), Identifier: identifier, Index: index}
}

type PrefixIncrDecr struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string `json:"operator"`
	Target   *Name  `json:"target"`
}

func NewPrefixIncrDecr(operator string, target *Name) *PrefixIncrDecr {
	return &PrefixIncrDecr{nodeImpl: newNodeImpl(NodePrefixIncrDecr), Operator: operator, Target: target}
}

type PostfixIncrDecr struct {
	nodeImpl
	expressionMarker
	statementMarker

	Operator string `json:"operator"`
	Target   *Name  `json:"target"`
}

func NewPostfixIncrDecr(operator string, target *Name) *PostfixIncrDecr {
	return &PostfixIncrDecr{nodeImpl: newNodeImpl(NodePostfixIncrDecr), Operator: operator, Target: target}
}

// Call invokes a user-defined function.
type Call struct {
	nodeImpl
	expressionMarker
	statementMarker

	Function string  `json:"function"`
	Args     []*Slot `json:"args"`
}

func NewCall(function string, args []Expression) *Call {
	return &Call{nodeImpl: newNodeImpl(NodeCall), Function: function, Args: slots(args)}
}

// BuiltinCall invokes an entry of the injected built-in table.
type BuiltinCall struct {
	nodeImpl
	expressionMarker
	statementMarker

	Function string  `json:"function"`
	Args     []*Slot `json:"args"`
}

func NewBuiltinCall(function string, args []Expression) *BuiltinCall {
	return &BuiltinCall{nodeImpl: newNodeImpl(NodeBuiltinCall), Function: function, Args: slots(args)}
}

// Literals

type IntegerLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value *big.Int `json:"value"`
}

func NewIntegerLiteral(value *big.Int) *IntegerLiteral {
	return &IntegerLiteral{nodeImpl: newNodeImpl(NodeIntegerLiteral), Value: value}
}

type RealLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value float64 `json:"value"`
}

func NewRealLiteral(value float64) *RealLiteral {
	return &RealLiteral{nodeImpl: newNodeImpl(NodeRealLiteral), Value: value}
}

type BooleanLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value bool `json:"value"`
}

func NewBooleanLiteral(value bool) *BooleanLiteral {
	return &BooleanLiteral{nodeImpl: newNodeImpl(NodeBooleanLiteral), Value: value}
}

type StringLiteral struct {
	nodeImpl
	expressionMarker
	statementMarker
	literalMarker

	Value string `json:"value"`
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{nodeImpl: newNodeImpl(NodeStringLiteral), Value: value}
}
