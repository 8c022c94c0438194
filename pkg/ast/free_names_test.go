package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFreeNames(t *testing.T) {
	cases := []struct {
		name string
		node Node
		want []string
	}{
		{
			name: "self-contained block",
			node: Blk(
				Decl("int", "x", Int(1)),
				Out(Bin(ID("x"), "+", Int(2))),
			),
			want: []string{},
		},
		{
			name: "reads an enclosing name",
			node: Blk(Out(ID("total"))),
			want: []string{"total"},
		},
		{
			name: "assignment target is a reference",
			node: Blk(Assign("total", Int(0))),
			want: []string{"total"},
		},
		{
			name: "declaration value is visited before the name is bound",
			node: Blk(Decl("int", "x", ID("x"))),
			want: []string{"x"},
		},
		{
			name: "inner block declarations do not leak",
			node: Blk(
				Blk(Decl("int", "y", Int(1))),
				Out(ID("y")),
			),
			want: []string{"y"},
		},
		{
			name: "if-else branches are scoped separately",
			node: Blk(IfElse(Bool(true),
				Blk(Decl("int", "a", Int(1))),
				Blk(Out(ID("a"))),
			)),
			want: []string{"a"},
		},
		{
			name: "array index expressions",
			node: Blk(Out(ID("grid", ID("i"), Int(0)))),
			want: []string{"grid", "i"},
		},
		{
			name: "calls reference the function namespace",
			node: Blk(Out(CallFn("square", Int(3)))),
			want: []string{"square"},
		},
		{
			name: "local function and its parameters",
			node: Blk(
				Fn("square", []*Parameter{Param("n", "int")}, Blk(), Bin(ID("n"), "*", ID("n"))),
				Out(CallFn("square", Int(3))),
			),
			want: []string{},
		},
		{
			name: "builtins and conversions are not names",
			node: Blk(Out(Builtin("sqrt", Conv("inttoreal", "int", Int(4))))),
			want: []string{},
		},
		{
			name: "increments count as references",
			node: Blk(PostIncr("counter")),
			want: []string{"counter"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FreeNames(tc.node).Sorted())
		})
	}
}

func TestFreeNamesLoopScopes(t *testing.T) {
	loop := ForLoop(
		Decl("int", "i", Int(0)),
		Bin(ID("i"), "<", Int(3)),
		Incr("i"),
		Blk(Decl("int", "sq", Bin(ID("i"), "*", ID("i")))),
	)
	free := FreeNames(loop)
	assert.False(t, free.Has("i"), "loop variable is declared by the init statement")
	assert.True(t, FreeNames(loop.Body).Has("i"), "body alone references the loop variable")
	assert.False(t, FreeNames(loop.Body).Has("sq"))
}
