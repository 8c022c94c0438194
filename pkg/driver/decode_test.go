package driver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
)

const factorialDoc = `
type: Program
body:
  - type: FunctionDefinition
    name: fact
    params:
      - {name: n, valueType: int}
    body:
      type: Block
      body:
        - type: Declaration
          name: result
          valueType: int
          value: {type: Integer, value: 1}
        - type: While
          condition:
            type: BinaryOperation
            operator: ">"
            left: {type: Name, name: n}
            right: {type: Integer, value: 1}
          body:
            type: Block
            body:
              - type: Assignment
                target: {type: Name, name: result}
                value:
                  type: BinaryOperation
                  operator: "*"
                  left: {type: Name, name: result}
                  right: {type: Name, name: n}
              - type: PrefixIncrDecr
                operator: "--"
                target: {type: Name, name: n}
    return: {type: Name, name: result}
  - type: Print
    value:
      type: Call
      function: fact
      args:
        - {type: Integer, value: 5}
`

func TestDecodeProgramDocument(t *testing.T) {
	programs, err := DecodePrograms(strings.NewReader(factorialDoc))
	require.NoError(t, err)
	require.Len(t, programs, 1)

	stmts := programs[0].Body.Statements()
	require.Len(t, stmts, 2)
	fn, ok := stmts[0].(*ast.FunctionDefinition)
	require.True(t, ok)
	assert.Equal(t, "fact", fn.Name)
	require.Len(t, fn.Params, 1)
	assert.Equal(t, "int", fn.Params[0].ValueType)
	assert.Equal(t, 2, fn.Body.Body.Len())
	assert.IsType(t, &ast.Name{}, fn.Return)

	print, ok := stmts[1].(*ast.Print)
	require.True(t, ok)
	call, ok := print.Value.Get().(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "fact", call.Function)
	assert.Len(t, call.Args, 1)
}

func TestDecodeMultipleDocuments(t *testing.T) {
	src := `
type: Declaration
name: x
valueType: int
value: {type: Integer, value: "123_456_789_012_345_678_901"}
---
- type: Print
  value: {type: Name, name: x}
- type: Print
  value: {type: Conversion, conversion: inttostr, from: int, value: {type: Name, name: x}}
---
`
	programs, err := DecodePrograms(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, 1, programs[0].Body.Len())
	assert.Equal(t, 2, programs[1].Body.Len())

	decl := programs[0].Body.Statements()[0].(*ast.Declaration)
	lit, ok := decl.Value.Get().(*ast.IntegerLiteral)
	require.True(t, ok)
	assert.Equal(t, "123456789012345678901", lit.Value.String())

	print := programs[1].Body.Statements()[1].(*ast.Print)
	conv, ok := print.Value.Get().(*ast.TypeConversion)
	require.True(t, ok)
	assert.Equal(t, "inttostr", conv.Conversion)
	assert.Equal(t, "int", conv.From)
}

func TestDecodeLoopsAndParallel(t *testing.T) {
	src := `
- type: For
  init: {type: Declaration, name: i, valueType: int, value: {type: Integer, value: 0}}
  condition: {type: BinaryOperation, operator: "<", left: {type: Name, name: i}, right: {type: Integer, value: 3}}
  step: {type: PostfixIncrDecr, operator: "++", target: {type: Name, name: i}}
  body: {type: Block, body: [{type: Print, value: {type: Real, value: 2.5}}]}
- type: RepeatUntil
  body: {type: Print, value: {type: Boolean, value: true}}
  condition: {type: Boolean, value: true}
- type: Parallel
  body:
    - {type: Print, value: {type: String, value: a}}
    - {type: Print, value: {type: Minus, value: {type: Integer, value: 1}}}
- type: IfElse
  condition: {type: Boolean, value: false}
  then: {type: Print, value: {type: String, value: yes}}
  else: {type: Print, value: {type: BuiltinCall, function: sqrt, args: [{type: Real, value: 4}]}}
- type: Declaration
  name: grid
  valueType: int
  shape: [{type: Integer, value: 2}, {type: Integer, value: 3}]
`
	programs, err := DecodePrograms(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, programs, 1)
	stmts := programs[0].Body.Statements()
	require.Len(t, stmts, 5)

	loop := stmts[0].(*ast.For)
	assert.NotNil(t, loop.Init)
	assert.NotNil(t, loop.Step)
	assert.IsType(t, &ast.Block{}, loop.Body)
	assert.IsType(t, &ast.RepeatUntil{}, stmts[1])
	par := stmts[2].(*ast.Parallel)
	assert.Len(t, par.Body, 2)
	assert.IsType(t, &ast.ConditionalIfElse{}, stmts[3])
	grid := stmts[4].(*ast.Declaration)
	assert.Len(t, grid.Shape, 2)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]struct {
		src  string
		want string
	}{
		"missing type": {
			src:  "{name: x}",
			want: "node without type",
		},
		"unknown type": {
			src:  "{type: Goto}",
			want: `unsupported node type "Goto"`,
		},
		"missing field": {
			src:  "- {type: Integer, value: 1}\n- {type: Print}",
			want: "Print: missing value",
		},
		"statement as expression": {
			src:  "{type: Print, value: {type: Block}}",
			want: "Block is not an expression",
		},
		"function body": {
			src:  "{type: FunctionDefinition, name: f, body: {type: Print, value: {type: Integer, value: 1}}}",
			want: "function f: body must be a Block",
		},
		"bad integer": {
			src:  "{type: Print, value: {type: Integer, value: 1.5}}",
			want: "Integer: 1.5 is not integral",
		},
		"bad operator": {
			src:  "{type: PostfixIncrDecr, operator: '**', target: {type: Name, name: x}}",
			want: `unknown operator "**"`,
		},
		"malformed yaml": {
			src:  "type: [Print",
			want: "document 0",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodePrograms(strings.NewReader(tc.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoadProgramsMissingFile(t *testing.T) {
	_, err := LoadPrograms("testdata/does-not-exist.yml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist.yml")
}
