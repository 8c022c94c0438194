package interpreter

import (
	"fmt"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

func (i *Interpreter) executeStatement(node ast.Statement, scope *runtime.Scope, st *execState) error {
	switch n := node.(type) {
	case *ast.Block:
		return i.executeBlock(n, scope, st)
	case *ast.Declaration:
		return i.executeDeclaration(n, scope, st)
	case *ast.Assignment:
		return i.executeAssignment(n, scope, st)
	case *ast.Print:
		return i.executePrint(n, scope, st)
	case *ast.ConditionalIf:
		return i.executeIf(n, scope, st)
	case *ast.ConditionalIfElse:
		return i.executeIfElse(n, scope, st)
	case *ast.While:
		return i.executeWhile(n, scope, st)
	case *ast.For:
		return i.executeFor(n, scope, st)
	case *ast.RepeatUntil:
		return i.executeRepeatUntil(n, scope, st)
	case *ast.Parallel:
		return i.executeParallel(n, scope, st)
	case *ast.FunctionDefinition:
		return scope.DeclareFunction(n)
	case ast.Expression:
		_, err := i.evaluateExpression(n, scope, st)
		return err
	default:
		return fmt.Errorf("unsupported statement type: %s", n.NodeType())
	}
}

// runStatements executes list in the current frame, stopping at the first
// error, and prunes the list afterwards when optimizing.
func (i *Interpreter) runStatements(list *ast.StatementList, scope *runtime.Scope, st *execState) error {
	if err := i.executeStatements(list, scope, st); err != nil {
		return err
	}
	if st.optimize {
		i.eliminateDeadCode(list, scope)
	}
	return nil
}

func (i *Interpreter) executeStatements(list *ast.StatementList, scope *runtime.Scope, st *execState) error {
	for _, stmt := range list.Statements() {
		if err := i.executeStatement(stmt, scope, st); err != nil {
			return err
		}
	}
	return nil
}

// withFrame runs fn inside a freshly pushed frame.
func withFrame(scope *runtime.Scope, fn func() error) error {
	scope.PushFrame()
	defer scope.PopFrame()
	return fn()
}

func (i *Interpreter) executeBlock(block *ast.Block, scope *runtime.Scope, st *execState) error {
	return withFrame(scope, func() error {
		return i.runStatements(block.Body, scope, st)
	})
}

func (i *Interpreter) executeDeclaration(decl *ast.Declaration, scope *runtime.Scope, st *execState) error {
	kind, err := runtime.ParseKind(decl.ValueType)
	if err != nil {
		return runtime.Errorf(runtime.AssignmentTypeMismatch, "Cannot declare %s: %v", decl.Name, err)
	}
	if len(decl.Shape) > 0 {
		shape := make([]int, 0, len(decl.Shape))
		for _, dimExpr := range decl.Shape {
			dim, err := i.evaluateValue(dimExpr, scope, st)
			if err != nil {
				return err
			}
			size, ok := smallInt(dim)
			if !ok || size <= 0 {
				return runtime.Errorf(runtime.ArrayIndexInvalid, "Array %s dimension must be a positive int, given %s", decl.Name, runtime.FormatValue(dim))
			}
			shape = append(shape, size)
		}
		return scope.DeclareArray(decl.Name, kind, shape)
	}
	var value runtime.Value
	if decl.Value != nil {
		res, err := i.evaluateSlot(decl.Value, scope, st)
		if err != nil {
			return err
		}
		if res.value == nil {
			return noValue(decl.Value.Get())
		}
		value = res.value
	}
	return scope.Declare(decl.Name, kind, value)
}

func (i *Interpreter) executeAssignment(assign *ast.Assignment, scope *runtime.Scope, st *execState) error {
	res, err := i.evaluateSlot(assign.Value, scope, st)
	if err != nil {
		return err
	}
	if res.value == nil {
		return noValue(assign.Value.Get())
	}
	target := assign.Target
	if len(target.Index) == 0 {
		return scope.Assign(target.Identifier, res.value)
	}
	index, _, err := i.evaluateIndex(target.Index, scope, st)
	if err != nil {
		return err
	}
	return scope.AssignIndex(target.Identifier, index, res.value)
}

func (i *Interpreter) executePrint(stmt *ast.Print, scope *runtime.Scope, st *execState) error {
	res, err := i.evaluateSlot(stmt.Value, scope, st)
	if err != nil {
		return err
	}
	if res.value == nil {
		return noValue(stmt.Value.Get())
	}
	i.emit(runtime.FormatValue(res.value))
	return nil
}

func (i *Interpreter) evaluateCondition(expr ast.Expression, construct string, scope *runtime.Scope, st *execState) (bool, error) {
	val, err := i.evaluateValue(expr, scope, st)
	if err != nil {
		return false, err
	}
	b, ok := val.(runtime.BoolValue)
	if !ok {
		return false, runtime.Errorf(runtime.ConditionNotBoolean, "Given %s condition is not bool", construct)
	}
	return b.Val, nil
}

func (i *Interpreter) executeIf(stmt *ast.ConditionalIf, scope *runtime.Scope, st *execState) error {
	cond, err := i.evaluateCondition(stmt.Condition, "if", scope, st)
	if err != nil || !cond {
		return err
	}
	return withFrame(scope, func() error {
		return i.executeStatement(stmt.Body, scope, st)
	})
}

func (i *Interpreter) executeIfElse(stmt *ast.ConditionalIfElse, scope *runtime.Scope, st *execState) error {
	cond, err := i.evaluateCondition(stmt.Condition, "if-else", scope, st)
	if err != nil {
		return err
	}
	branch := stmt.Else
	if cond {
		branch = stmt.Then
	}
	return withFrame(scope, func() error {
		return i.executeStatement(branch, scope, st)
	})
}

func (i *Interpreter) executeWhile(loop *ast.While, scope *runtime.Scope, st *execState) error {
	cond, err := i.evaluateCondition(loop.Condition, "while", scope, st)
	if err != nil || !cond {
		return err
	}
	return withFrame(scope, func() error {
		for cond {
			if err := i.executeStatement(loop.Body, scope, st); err != nil {
				return err
			}
			if cond, err = i.evaluateCondition(loop.Condition, "while", scope, st); err != nil {
				return err
			}
		}
		return nil
	})
}

func (i *Interpreter) executeRepeatUntil(loop *ast.RepeatUntil, scope *runtime.Scope, st *execState) error {
	return withFrame(scope, func() error {
		for {
			if err := i.executeStatement(loop.Body, scope, st); err != nil {
				return err
			}
			done, err := i.evaluateCondition(loop.Condition, "repeat-until", scope, st)
			if err != nil || done {
				return err
			}
		}
	})
}

func (i *Interpreter) executeFor(loop *ast.For, scope *runtime.Scope, st *execState) error {
	if loop.Init != nil {
		if err := i.executeStatement(loop.Init, scope, st); err != nil {
			return err
		}
	}
	cond, err := i.evaluateCondition(loop.Condition, "for", scope, st)
	if err != nil {
		return err
	}
	if body, ok := loop.Body.(*ast.Block); ok && len(ast.FreeNames(body)) == 0 {
		return i.executeForDataParallel(loop, body, cond, scope, st)
	}
	if !cond {
		return nil
	}
	return withFrame(scope, func() error {
		for cond {
			if err := i.executeStatement(loop.Body, scope, st); err != nil {
				return err
			}
			if err := i.executeStep(loop, scope, st); err != nil {
				return err
			}
			if cond, err = i.evaluateCondition(loop.Condition, "for", scope, st); err != nil {
				return err
			}
		}
		return nil
	})
}

func (i *Interpreter) executeStep(loop *ast.For, scope *runtime.Scope, st *execState) error {
	if loop.Step == nil {
		return nil
	}
	return i.executeStatement(loop.Step, scope, st)
}

// executeForDataParallel runs each iteration's body as a task on its own
// shallow scope copy while the step and condition advance sequentially on
// the original scope. It returns once every iteration has finished.
func (i *Interpreter) executeForDataParallel(loop *ast.For, body *ast.Block, cond bool, scope *runtime.Scope, st *execState) error {
	group := i.executor.NewGroup(func(err error) { i.report(st, err) })
	defer group.Wait()
	for cond {
		iteration := scope.Copy()
		iteration.PushFrame()
		group.Go(func() error {
			return i.executeStatement(body, iteration, st)
		})
		if err := i.executeStep(loop, scope, st); err != nil {
			return err
		}
		var err error
		if cond, err = i.evaluateCondition(loop.Condition, "for", scope, st); err != nil {
			return err
		}
	}
	return nil
}

// executeParallel runs every child statement as its own task and joins them.
// Children share the scope's frames through shallow copies so their frame
// pushes never interleave; failures are reported per task.
func (i *Interpreter) executeParallel(par *ast.Parallel, scope *runtime.Scope, st *execState) error {
	group := i.executor.NewGroup(func(err error) { i.report(st, err) })
	for _, stmt := range par.Body {
		child := scope.Copy()
		group.Go(func() error {
			return i.executeStatement(stmt, child, st)
		})
	}
	group.Wait()
	return nil
}
