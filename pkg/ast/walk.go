package ast

// Children returns the direct children of node in evaluation order. Slots
// are dereferenced, so a walk observes any rewrites the optimizer made.
func Children(node Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, n := range nodes {
			if !isNilNode(n) {
				out = append(out, n)
			}
		}
	}
	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Body.Statements() {
			add(stmt)
		}
	case *Block:
		for _, stmt := range n.Body.Statements() {
			add(stmt)
		}
	case *Declaration:
		for _, dim := range n.Shape {
			add(dim)
		}
		add(n.Value.Get())
	case *Assignment:
		add(n.Target, n.Value.Get())
	case *Print:
		add(n.Value.Get())
	case *ConditionalIf:
		add(n.Condition, n.Body)
	case *ConditionalIfElse:
		add(n.Condition, n.Then, n.Else)
	case *While:
		add(n.Condition, n.Body)
	case *For:
		add(n.Init, n.Condition, n.Step, n.Body)
	case *RepeatUntil:
		add(n.Body, n.Condition)
	case *Parallel:
		for _, stmt := range n.Body {
			add(stmt)
		}
	case *FunctionDefinition:
		add(n.Body, n.Return)
	case *BinaryOperation:
		add(n.Left, n.Right)
	case *UnaryMinus:
		add(n.Operand.Get())
	case *TypeConversion:
		add(n.Value.Get())
	case *Name:
		for _, idx := range n.Index {
			add(idx)
		}
	case *PrefixIncrDecr:
		add(n.Target)
	case *PostfixIncrDecr:
		add(n.Target)
	case *Call:
		for _, arg := range n.Args {
			add(arg.Get())
		}
	case *BuiltinCall:
		for _, arg := range n.Args {
			add(arg.Get())
		}
	}
	return out
}

// Walk traverses the tree depth-first in evaluation order. Children of a
// node are skipped when fn returns false for it.
func Walk(node Node, fn func(Node) bool) {
	if isNilNode(node) || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Walk(child, fn)
	}
}

// isNilNode catches typed nil pointers stored in interface fields.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *Name:
		return v == nil
	case *Block:
		return v == nil
	default:
		return false
	}
}
