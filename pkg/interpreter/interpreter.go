package interpreter

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

// Options configures an Interpreter. Zero values select stdout/stderr, an
// unlimited goroutine executor and empty built-in tables.
type Options struct {
	Builtins    map[string]runtime.NativeFunctionValue
	Conversions map[string]runtime.ConversionValue
	Stdout      io.Writer
	Stderr      io.Writer
	Executor    Executor
}

// Interpreter walks program trees against a runtime.Scope.
type Interpreter struct {
	builtins    map[string]runtime.NativeFunctionValue
	conversions map[string]runtime.ConversionValue
	executor    Executor
	logger      *log.Logger

	outMu sync.Mutex
	out   io.Writer
}

func New(opts Options) *Interpreter {
	i := &Interpreter{
		builtins:    opts.Builtins,
		conversions: opts.Conversions,
		executor:    opts.Executor,
		out:         opts.Stdout,
	}
	if i.builtins == nil {
		i.builtins = map[string]runtime.NativeFunctionValue{}
	}
	if i.conversions == nil {
		i.conversions = map[string]runtime.ConversionValue{}
	}
	if i.executor == nil {
		i.executor = NewGoroutineExecutor(0)
	}
	if i.out == nil {
		i.out = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	i.logger = log.New(stderr, "", 0)
	return i
}

// execState travels with one Execute call.
type execState struct {
	optimize bool

	mu   sync.Mutex
	errs []error
}

func (st *execState) errors() []error {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]error(nil), st.errs...)
}

// Execute runs every top-level statement of program against scope. A failing
// statement is reported and execution continues with the next one; the
// reported errors, including those caught inside parallel tasks, are
// returned. With optimize set, binary expressions are memoized and the
// program's statement list is pruned of bindings nobody read.
func (i *Interpreter) Execute(program *ast.Program, scope *runtime.Scope, optimize bool) []error {
	st := &execState{optimize: optimize}
	if program == nil {
		return nil
	}
	for _, stmt := range program.Body.Statements() {
		err := safeInvoke(func() error {
			return i.executeStatement(stmt, scope, st)
		})
		if err != nil {
			i.report(st, err)
		}
	}
	if optimize {
		i.eliminateDeadCode(program.Body, scope)
	}
	return st.errors()
}

// report emits a diagnostic for an error caught at a statement boundary.
func (i *Interpreter) report(st *execState, err error) {
	st.mu.Lock()
	st.errs = append(st.errs, err)
	st.mu.Unlock()
	i.logger.Print(DescribeError(err))
}

func (i *Interpreter) emit(line string) {
	i.outMu.Lock()
	defer i.outMu.Unlock()
	fmt.Fprintln(i.out, line)
}

// DescribeError renders err as a one-line diagnostic.
func DescribeError(err error) string {
	var rerr *runtime.Error
	if errors.As(err, &rerr) {
		return fmt.Sprintf("Error with %s: %s", rerr.Kind, rerr.Message)
	}
	return "Error: " + err.Error()
}
