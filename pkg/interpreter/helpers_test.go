package interpreter

import (
	"bytes"
	"sort"
	"strings"
	"testing"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
	"github.com/pwrobel5/compilers-lab/pkg/builtins"
	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

type testRun struct {
	scope  *runtime.Scope
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	interp *Interpreter
}

func newTestRun(executor Executor) *testRun {
	if executor == nil {
		executor = NewSerialExecutor()
	}
	r := &testRun{
		scope:  runtime.NewScope(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	r.interp = New(Options{
		Builtins:    builtins.Default(),
		Conversions: builtins.Conversions(),
		Stdout:      r.stdout,
		Stderr:      r.stderr,
		Executor:    executor,
	})
	return r
}

func (r *testRun) exec(program *ast.Program, optimize bool) []error {
	return r.interp.Execute(program, r.scope, optimize)
}

func (r *testRun) lines() []string {
	return splitLines(r.stdout.String())
}

func (r *testRun) sortedLines() []string {
	out := r.lines()
	sort.Strings(out)
	return out
}

func (r *testRun) diagnostics() []string {
	return splitLines(r.stderr.String())
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func runProgram(t *testing.T, optimize bool, stmts ...ast.Statement) (*testRun, []error) {
	t.Helper()
	r := newTestRun(nil)
	errs := r.exec(ast.Prog(stmts...), optimize)
	return r, errs
}
