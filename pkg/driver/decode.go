package driver

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
)

// LoadPrograms decodes every document of the YAML (or JSON) file at path.
func LoadPrograms(path string) ([]*ast.Program, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("program: open %s: %w", path, err)
	}
	defer file.Close()
	programs, err := DecodePrograms(file)
	if err != nil {
		return nil, fmt.Errorf("program: %s: %w", path, err)
	}
	return programs, nil
}

// DecodePrograms reads a stream of documents. Each document is a Program, a
// single statement or a list of statements; the last two are wrapped in a
// Program.
func DecodePrograms(r io.Reader) ([]*ast.Program, error) {
	decoder := yaml.NewDecoder(r)
	var programs []*ast.Program
	for idx := 0; ; idx++ {
		var raw any
		if err := decoder.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("document %d: %w", idx, err)
		}
		if raw == nil {
			continue
		}
		program, err := decodeProgram(raw)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", idx, err)
		}
		programs = append(programs, program)
	}
	return programs, nil
}

func decodeProgram(raw any) (*ast.Program, error) {
	if list, ok := raw.([]any); ok {
		stmts, err := decodeStatements(list)
		if err != nil {
			return nil, err
		}
		return ast.NewProgram(stmts), nil
	}
	node, err := decodeAny(raw)
	if err != nil {
		return nil, err
	}
	switch n := node.(type) {
	case *ast.Program:
		return n, nil
	case ast.Statement:
		return ast.NewProgram([]ast.Statement{n}), nil
	}
	return nil, fmt.Errorf("document is not a program")
}

func decodeAny(raw any) (ast.Node, error) {
	node, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("invalid node %T", raw)
	}
	return DecodeNode(node)
}

// DecodeNode converts one decoded document mapping into an AST node.
func DecodeNode(node map[string]any) (ast.Node, error) {
	typ, _ := node["type"].(string)
	switch ast.NodeType(typ) {
	case ast.NodeProgram:
		body, err := decodeBody(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewProgram(body), nil
	case ast.NodeBlock:
		body, err := decodeBody(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewBlock(body), nil
	case ast.NodeDeclaration:
		name, err := stringField(node, "name")
		if err != nil {
			return nil, err
		}
		valueType, err := stringField(node, "valueType")
		if err != nil {
			return nil, err
		}
		if rawShape, ok := node["shape"]; ok {
			shape, err := decodeExpressions(rawShape)
			if err != nil {
				return nil, fmt.Errorf("declaration %s shape: %w", name, err)
			}
			return ast.NewArrayDeclaration(name, valueType, shape), nil
		}
		value, err := optionalExpression(node, "value")
		if err != nil {
			return nil, err
		}
		return ast.NewDeclaration(name, valueType, value), nil
	case ast.NodeAssignment:
		target, err := nameField(node, "target")
		if err != nil {
			return nil, err
		}
		value, err := expressionField(node, "value")
		if err != nil {
			return nil, err
		}
		return ast.NewAssignment(target, value), nil
	case ast.NodePrint:
		value, err := expressionField(node, "value")
		if err != nil {
			return nil, err
		}
		return ast.NewPrint(value), nil
	case ast.NodeConditionalIf:
		cond, err := expressionField(node, "condition")
		if err != nil {
			return nil, err
		}
		body, err := statementField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewConditionalIf(cond, body), nil
	case ast.NodeConditionalIfElse:
		cond, err := expressionField(node, "condition")
		if err != nil {
			return nil, err
		}
		then, err := statementField(node, "then")
		if err != nil {
			return nil, err
		}
		otherwise, err := statementField(node, "else")
		if err != nil {
			return nil, err
		}
		return ast.NewConditionalIfElse(cond, then, otherwise), nil
	case ast.NodeWhile:
		cond, err := expressionField(node, "condition")
		if err != nil {
			return nil, err
		}
		body, err := statementField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewWhile(cond, body), nil
	case ast.NodeFor:
		var init, step ast.Statement
		if _, ok := node["init"]; ok {
			stmt, err := statementField(node, "init")
			if err != nil {
				return nil, err
			}
			init = stmt
		}
		cond, err := expressionField(node, "condition")
		if err != nil {
			return nil, err
		}
		if _, ok := node["step"]; ok {
			stmt, err := statementField(node, "step")
			if err != nil {
				return nil, err
			}
			step = stmt
		}
		body, err := statementField(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewFor(init, cond, step, body), nil
	case ast.NodeRepeatUntil:
		body, err := statementField(node, "body")
		if err != nil {
			return nil, err
		}
		cond, err := expressionField(node, "condition")
		if err != nil {
			return nil, err
		}
		return ast.NewRepeatUntil(body, cond), nil
	case ast.NodeParallel:
		body, err := decodeBody(node, "body")
		if err != nil {
			return nil, err
		}
		return ast.NewParallel(body), nil
	case ast.NodeFunctionDef:
		return decodeFunctionDefinition(node)
	case ast.NodeBinaryOperation:
		operator, err := stringField(node, "operator")
		if err != nil {
			return nil, err
		}
		left, err := expressionField(node, "left")
		if err != nil {
			return nil, err
		}
		right, err := expressionField(node, "right")
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryOperation(operator, left, right), nil
	case ast.NodeUnaryMinus:
		value, err := expressionField(node, "value")
		if err != nil {
			return nil, err
		}
		return ast.NewUnaryMinus(value), nil
	case ast.NodeTypeConversion:
		conversion, err := stringField(node, "conversion")
		if err != nil {
			return nil, err
		}
		from, _ := node["from"].(string)
		value, err := expressionField(node, "value")
		if err != nil {
			return nil, err
		}
		return ast.NewTypeConversion(conversion, from, value), nil
	case ast.NodeName:
		return decodeName(node)
	case ast.NodePrefixIncrDecr, ast.NodePostfixIncrDecr:
		operator, err := stringField(node, "operator")
		if err != nil {
			return nil, err
		}
		if operator != "++" && operator != "--" {
			return nil, fmt.Errorf("%s: unknown operator %q", typ, operator)
		}
		target, err := nameField(node, "target")
		if err != nil {
			return nil, err
		}
		if typ == string(ast.NodePrefixIncrDecr) {
			return ast.NewPrefixIncrDecr(operator, target), nil
		}
		return ast.NewPostfixIncrDecr(operator, target), nil
	case ast.NodeCall, ast.NodeBuiltinCall:
		function, err := stringField(node, "function")
		if err != nil {
			return nil, err
		}
		var args []ast.Expression
		if rawArgs, ok := node["args"]; ok {
			if args, err = decodeExpressions(rawArgs); err != nil {
				return nil, fmt.Errorf("call %s: %w", function, err)
			}
		}
		if typ == string(ast.NodeCall) {
			return ast.NewCall(function, args), nil
		}
		return ast.NewBuiltinCall(function, args), nil
	case ast.NodeIntegerLiteral:
		value, err := decodeBigInt(node["value"])
		if err != nil {
			return nil, err
		}
		return ast.NewIntegerLiteral(value), nil
	case ast.NodeRealLiteral:
		value, err := decodeFloat(node["value"])
		if err != nil {
			return nil, err
		}
		return ast.NewRealLiteral(value), nil
	case ast.NodeBooleanLiteral:
		value, ok := node["value"].(bool)
		if !ok {
			return nil, fmt.Errorf("Boolean: value must be true or false, got %T", node["value"])
		}
		return ast.NewBooleanLiteral(value), nil
	case ast.NodeStringLiteral:
		value, ok := node["value"].(string)
		if !ok {
			return nil, fmt.Errorf("String: value must be a string, got %T", node["value"])
		}
		return ast.NewStringLiteral(value), nil
	case "":
		return nil, fmt.Errorf("node without type")
	default:
		return nil, fmt.Errorf("unsupported node type %q", typ)
	}
}

func decodeFunctionDefinition(node map[string]any) (*ast.FunctionDefinition, error) {
	name, err := stringField(node, "name")
	if err != nil {
		return nil, err
	}
	rawParams, _ := node["params"].([]any)
	params := make([]*ast.Parameter, 0, len(rawParams))
	for _, raw := range rawParams {
		param, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("function %s: invalid parameter %T", name, raw)
		}
		paramName, err := stringField(param, "name")
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		valueType, err := stringField(param, "valueType")
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		params = append(params, &ast.Parameter{Name: paramName, ValueType: valueType})
	}
	var body *ast.Block
	if rawBody, ok := node["body"]; ok {
		child, err := decodeAny(rawBody)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		block, ok := child.(*ast.Block)
		if !ok {
			return nil, fmt.Errorf("function %s: body must be a Block", name)
		}
		body = block
	} else {
		body = ast.NewBlock(nil)
	}
	ret, err := optionalExpression(node, "return")
	if err != nil {
		return nil, fmt.Errorf("function %s: %w", name, err)
	}
	return ast.NewFunctionDefinition(name, params, body, ret), nil
}

func decodeName(node map[string]any) (*ast.Name, error) {
	name, err := stringField(node, "name")
	if err != nil {
		return nil, err
	}
	var index []ast.Expression
	if rawIndex, ok := node["index"]; ok {
		if index, err = decodeExpressions(rawIndex); err != nil {
			return nil, fmt.Errorf("name %s index: %w", name, err)
		}
	}
	return ast.NewName(name, index...), nil
}

func stringField(node map[string]any, key string) (string, error) {
	value, ok := node[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%v: missing %s", node["type"], key)
	}
	return value, nil
}

func decodeBody(node map[string]any, key string) ([]ast.Statement, error) {
	raw, ok := node[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%v: %s must be a list", node["type"], key)
	}
	return decodeStatements(list)
}

func decodeStatements(list []any) ([]ast.Statement, error) {
	stmts := make([]ast.Statement, 0, len(list))
	for _, raw := range list {
		stmt, err := decodeStatement(raw)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

func decodeStatement(raw any) (ast.Statement, error) {
	node, err := decodeAny(raw)
	if err != nil {
		return nil, err
	}
	stmt, ok := node.(ast.Statement)
	if !ok {
		return nil, fmt.Errorf("%s is not a statement", node.NodeType())
	}
	return stmt, nil
}

func statementField(node map[string]any, key string) (ast.Statement, error) {
	raw, ok := node[key]
	if !ok {
		return nil, fmt.Errorf("%v: missing %s", node["type"], key)
	}
	return decodeStatement(raw)
}

func decodeExpression(raw any) (ast.Expression, error) {
	node, err := decodeAny(raw)
	if err != nil {
		return nil, err
	}
	expr, ok := node.(ast.Expression)
	if !ok {
		return nil, fmt.Errorf("%s is not an expression", node.NodeType())
	}
	return expr, nil
}

func decodeExpressions(raw any) ([]ast.Expression, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", raw)
	}
	exprs := make([]ast.Expression, 0, len(list))
	for _, item := range list {
		expr, err := decodeExpression(item)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return exprs, nil
}

func expressionField(node map[string]any, key string) (ast.Expression, error) {
	raw, ok := node[key]
	if !ok {
		return nil, fmt.Errorf("%v: missing %s", node["type"], key)
	}
	return decodeExpression(raw)
}

func optionalExpression(node map[string]any, key string) (ast.Expression, error) {
	raw, ok := node[key]
	if !ok || raw == nil {
		return nil, nil
	}
	return decodeExpression(raw)
}

func nameField(node map[string]any, key string) (*ast.Name, error) {
	raw, ok := node[key].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%v: missing %s", node["type"], key)
	}
	if typ, _ := raw["type"].(string); typ != "" && typ != string(ast.NodeName) {
		return nil, fmt.Errorf("%v: %s must be a Name", node["type"], key)
	}
	return decodeName(raw)
}

func decodeBigInt(raw any) (*big.Int, error) {
	switch v := raw.(type) {
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("Integer: %v is not integral", v)
		}
		out, _ := big.NewFloat(v).Int(nil)
		return out, nil
	case string:
		out, ok := new(big.Int).SetString(strings.ReplaceAll(strings.TrimSpace(v), "_", ""), 10)
		if !ok {
			return nil, fmt.Errorf("Integer: invalid value %q", v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("Integer: invalid value %T", raw)
}

func decodeFloat(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case uint64:
		return float64(v), nil
	}
	return 0, fmt.Errorf("Real: invalid value %T", raw)
}
