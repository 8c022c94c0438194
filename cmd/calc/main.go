package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pwrobel5/compilers-lab/pkg/ast"
	"github.com/pwrobel5/compilers-lab/pkg/driver"
)

const cliToolVersion = "calc 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "run":
		return runPrograms(args[1:], stdout, stderr)
	case "check":
		return checkPrograms(args[1:], stdout, stderr)
	default:
		return runPrograms(args, stdout, stderr)
	}
}

func runPrograms(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "configuration file (default: ./"+driver.ConfigFileName+" when present)")
	revision := fs.String("rev", "", "read FILE from this git revision of the enclosing repository")
	optimize := fs.Bool("optimize", false, "memoize expressions and prune unused declarations")
	serial := fs.Bool("serial", false, "run parallel statements one task at a time")
	maxParallel := fs.Int("max-parallel", 0, "maximum concurrently running tasks per parallel group (0: unlimited)")
	registryCapacity := fs.Int("registry-capacity", 0, "maximum memoized expressions (0: unbounded)")
	dumpScope := fs.Bool("dump-scope", false, "print the global bindings after the run")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "calc run requires exactly one program file")
		return 1
	}
	path := fs.Arg(0)

	cfgFile := *configPath
	if cfgFile == "" {
		cfgFile = driver.FindConfig(".")
	}
	cfg, err := driver.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "optimize":
			cfg.Optimize = *optimize
		case "serial":
			cfg.Serial = *serial
		case "max-parallel":
			cfg.MaxParallel = *maxParallel
		case "registry-capacity":
			cfg.RegistryCapacity = *registryCapacity
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	programs, err := loadPrograms(path, *revision)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	session := driver.NewSession(cfg, stdout, stderr)
	errs := session.Run(programs)
	if *dumpScope {
		if err := session.DumpScope(stdout); err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
	}
	if len(errs) > 0 {
		return 1
	}
	return 0
}

func loadPrograms(path, revision string) ([]*ast.Program, error) {
	if revision == "" {
		return driver.LoadPrograms(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	return driver.LoadRevision(filepath.Dir(abs), revision, abs)
}

func checkPrograms(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	revision := fs.String("rev", "", "read FILE from this git revision of the enclosing repository")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "calc check requires exactly one program file")
		return 1
	}
	programs, err := loadPrograms(fs.Arg(0), *revision)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	for idx, program := range programs {
		fmt.Fprintf(stdout, "program %d: %s\n", idx+1, describeNodes(program))
		free := ast.FreeNames(program).Sorted()
		if len(free) == 0 {
			fmt.Fprintln(stdout, "  free names: none")
			continue
		}
		fmt.Fprintf(stdout, "  free names: %s\n", strings.Join(free, ", "))
	}
	return 0
}

func describeNodes(program *ast.Program) string {
	counts := make(map[ast.NodeType]int)
	total := 0
	ast.Walk(program, func(n ast.Node) bool {
		counts[n.NodeType()]++
		total++
		return true
	})
	kinds := make([]string, 0, len(counts))
	for kind := range counts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", kind, counts[ast.NodeType(kind)]))
	}
	return fmt.Sprintf("%d nodes (%s)", total, strings.Join(parts, " "))
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  calc run [--optimize] [--serial] [--max-parallel N] [--registry-capacity N] [--dump-scope] [--config FILE] [--rev REV] <program.yml>")
	fmt.Fprintln(w, "  calc check [--rev REV] <program.yml>")
	fmt.Fprintln(w, "  calc version")
}
