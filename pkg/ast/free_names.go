package ast

import "sort"

// NameSet is a set of identifiers.
type NameSet map[string]struct{}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s NameSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// FreeNames reports the variable and function names node references without
// declaring them itself. Assignment targets count as references, so a body
// with an empty set can neither observe nor mutate an enclosing binding.
func FreeNames(node Node) NameSet {
	c := &freeNameCollector{free: NameSet{}}
	c.push()
	c.visit(node)
	return c.free
}

type declaredSet struct {
	names     map[string]struct{}
	functions map[string]struct{}
}

type freeNameCollector struct {
	scopes []declaredSet
	free   NameSet
}

func (c *freeNameCollector) push() {
	c.scopes = append(c.scopes, declaredSet{names: map[string]struct{}{}, functions: map[string]struct{}{}})
}

func (c *freeNameCollector) pop() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *freeNameCollector) declareName(name string) {
	c.scopes[len(c.scopes)-1].names[name] = struct{}{}
}

func (c *freeNameCollector) declareFunction(name string) {
	c.scopes[len(c.scopes)-1].functions[name] = struct{}{}
}

func (c *freeNameCollector) referenceName(name string) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if _, ok := c.scopes[i].names[name]; ok {
			return
		}
	}
	c.free[name] = struct{}{}
}

func (c *freeNameCollector) referenceFunction(name string) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if _, ok := c.scopes[i].functions[name]; ok {
			return
		}
	}
	c.free[name] = struct{}{}
}

// scoped visits children inside a fresh declaration scope, matching the
// frame the interpreter pushes for the construct.
func (c *freeNameCollector) scoped(nodes ...Node) {
	c.push()
	for _, n := range nodes {
		c.visit(n)
	}
	c.pop()
}

func (c *freeNameCollector) visit(node Node) {
	if isNilNode(node) {
		return
	}
	switch n := node.(type) {
	case *Program:
		for _, stmt := range n.Body.Statements() {
			c.visit(stmt)
		}
	case *Block:
		stmts := n.Body.Statements()
		nodes := make([]Node, 0, len(stmts))
		for _, stmt := range stmts {
			nodes = append(nodes, stmt)
		}
		c.scoped(nodes...)
	case *Declaration:
		for _, dim := range n.Shape {
			c.visit(dim)
		}
		c.visit(n.Value.Get())
		c.declareName(n.Name)
	case *Assignment:
		c.visit(n.Target)
		c.visit(n.Value.Get())
	case *ConditionalIf:
		c.visit(n.Condition)
		c.scoped(n.Body)
	case *ConditionalIfElse:
		c.visit(n.Condition)
		c.scoped(n.Then)
		c.scoped(n.Else)
	case *While:
		c.scoped(n.Condition, n.Body)
	case *For:
		c.visit(n.Init)
		c.visit(n.Condition)
		c.scoped(n.Body, n.Step)
	case *RepeatUntil:
		c.scoped(n.Body, n.Condition)
	case *FunctionDefinition:
		c.declareFunction(n.Name)
		c.push()
		for _, param := range n.Params {
			if param != nil {
				c.declareName(param.Name)
			}
		}
		c.visit(n.Body)
		c.visit(n.Return)
		c.pop()
	case *Name:
		for _, idx := range n.Index {
			c.visit(idx)
		}
		c.referenceName(n.Identifier)
	case *Call:
		c.referenceFunction(n.Function)
		for _, child := range Children(n) {
			c.visit(child)
		}
	default:
		for _, child := range Children(n) {
			c.visit(child)
		}
	}
}
