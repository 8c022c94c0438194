package driver

import (
	"fmt"
	"io"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
	"github.com/pwrobel5/compilers-lab/pkg/builtins"
	"github.com/pwrobel5/compilers-lab/pkg/interpreter"
	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

// Session executes successive programs against one scope, the way an
// interactive session replays its history.
type Session struct {
	Interpreter *interpreter.Interpreter
	Scope       *runtime.Scope
	Optimize    bool
}

func NewSession(cfg Config, stdout, stderr io.Writer) *Session {
	var executor interpreter.Executor
	if cfg.Serial {
		executor = interpreter.NewSerialExecutor()
	} else {
		executor = interpreter.NewGoroutineExecutor(cfg.MaxParallel)
	}
	interp := interpreter.New(interpreter.Options{
		Builtins:    builtins.Default(),
		Conversions: builtins.Conversions(),
		Stdout:      stdout,
		Stderr:      stderr,
		Executor:    executor,
	})
	return &Session{
		Interpreter: interp,
		Scope:       runtime.NewScope(runtime.WithRegistryCapacity(cfg.RegistryCapacity)),
		Optimize:    cfg.Optimize,
	}
}

// Run executes programs in order and returns every reported error.
func (s *Session) Run(programs []*ast.Program) []error {
	var errs []error
	for _, program := range programs {
		errs = append(errs, s.Interpreter.Execute(program, s.Scope, s.Optimize)...)
	}
	return errs
}

// DumpScope writes every visible binding as "name = value", sorted by name.
func (s *Session) DumpScope(w io.Writer) error {
	values := s.Scope.Snapshot()
	for _, name := range s.Scope.Keys() {
		if _, err := fmt.Fprintf(w, "%s = %s\n", name, runtime.FormatValue(values[name])); err != nil {
			return err
		}
	}
	return nil
}
