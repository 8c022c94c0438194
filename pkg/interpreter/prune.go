package interpreter

import (
	"github.com/pwrobel5/compilers-lab/pkg/ast"
	"github.com/pwrobel5/compilers-lab/pkg/runtime"
)

// eliminateDeadCode drops declarations and assignments of names that were
// never read in the innermost frame, and definitions of functions that were
// never called there. It returns the number of statements removed.
func (i *Interpreter) eliminateDeadCode(list *ast.StatementList, scope *runtime.Scope) int {
	names := toSet(scope.UnusedNames())
	funcs := toSet(scope.UnusedFunctions())
	if len(names) == 0 && len(funcs) == 0 {
		return 0
	}
	return list.Retain(func(stmt ast.Statement) bool {
		switch s := stmt.(type) {
		case *ast.Declaration:
			_, dead := names[s.Name]
			return !dead
		case *ast.Assignment:
			_, dead := names[s.Target.Identifier]
			return !dead
		case *ast.FunctionDefinition:
			_, dead := funcs[s.Name]
			return !dead
		}
		return true
	})
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
