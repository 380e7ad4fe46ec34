// Command lolcodec compiles the LOLCODE subset this repository implements
// down to a chosen target, optionally linking it into a binary, running it
// on the native VM, or inspecting it interactively. Flag-set-per-subcommand
// dispatch follows the ARM emulator's single-binary, many-flags main.go,
// just split into verbs instead of one flat flag list.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lookbusy1344/arm-emulator/api"
	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/config"
	"github.com/lookbusy1344/arm-emulator/debugger"
	"github.com/lookbusy1344/arm-emulator/encoder"
	"github.com/lookbusy1344/arm-emulator/ir"
	"github.com/lookbusy1344/arm-emulator/loader"
	"github.com/lookbusy1344/arm-emulator/parser"
	"github.com/lookbusy1344/arm-emulator/targets/cvm"
	"github.com/lookbusy1344/arm-emulator/tools"
	"github.com/lookbusy1344/arm-emulator/vm"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 2
	}

	switch args[0] {
	case "compile":
		return cmdCompile(args[1:])
	case "run":
		return cmdRun(args[1:])
	case "debug":
		return cmdDebug(args[1:])
	case "serve":
		return cmdServe(args[1:])
	case "fmt", "lint", "xref":
		return cmdTool(args[0], args[1:])
	case "-version", "--version", "version":
		fmt.Printf("lolcodec %s (%s)\n", Version, Commit)
		return 0
	case "-help", "--help", "help":
		printUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "lolcodec: unknown command %q\n", args[0])
		printUsage()
		return 2
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `usage: lolcodec <command> [flags]

commands:
  compile <source-path> [--cc path] [--target c|asm] [--out path]
      Lower source to the requested target and link it via an external
      toolchain. Diagnostics go to stderr as path:start..end: message.
  run <source-path>
      Compile and execute on the native VM, printing program output.
  debug <source-path>
      Open an interactive inspector over the compiler's phases.
  serve [--addr host:port]
      Run the HTTP+WebSocket compile service.
  fmt|lint|xref <source-path>
      Run the matching source tool.
`)
}

// loadAndLower reads path, parses it, and lowers it to IR, printing
// path:start..end: message diagnostics to stderr on failure. It returns a
// nil module (and a false ok) once diagnostics have already been printed,
// so callers never print the same failure twice.
func loadAndLower(path string, opts codegen.Options) (*parser.Program, *ir.Module, bool) {
	src, err := os.ReadFile(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return nil, nil, false
	}

	tokens := parser.Lex(src)
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s:%s\n", path, e.Error())
		}
		return nil, nil, false
	}

	mod, err := codegen.Lower(prog, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return nil, nil, false
	}

	return prog, mod, true
}

func cmdCompile(args []string) int {
	cfg, _ := config.Load()
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	cc := fs.String("cc", cfg.Compile.CC, "C compiler/linker driver to invoke")
	target := fs.String("target", cfg.Compile.Target, "target to generate: c or asm")
	out := fs.String("out", "", "output path (default: source name with no extension)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "compile: expected exactly one source path")
		return 2
	}
	path := fs.Arg(0)

	opts := codegen.DefaultOptions()
	opts.StackSize = cfg.Compile.StackSize
	opts.HeapSize = cfg.Compile.HeapSize

	_, mod, ok := loadAndLower(path, opts)
	if !ok {
		return 1
	}

	var artifact loader.Artifact
	switch *target {
	case "c":
		src, err := cvm.Generate(mod)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			return 1
		}
		artifact = loader.Artifact{Source: src, Ext: ".c"}
	case "asm":
		src, err := encoder.Generate(mod)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			return 1
		}
		artifact = loader.Artifact{Source: src, Ext: ".s"}
	default:
		fmt.Fprintf(os.Stderr, "compile: unknown target %q (want c or asm)\n", *target)
		return 2
	}

	outPath := *out
	if outPath == "" {
		outPath = strTrimExt(path)
	}

	if err := loader.BuildBinary(artifact, *cc, outPath); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return 1
	}
	return 0
}

func cmdRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "run: expected exactly one source path")
		return 2
	}
	path := fs.Arg(0)

	cfg, _ := config.Load()
	opts := codegen.DefaultOptions()
	opts.StackSize = cfg.Compile.StackSize
	opts.HeapSize = cfg.Compile.HeapSize

	_, mod, ok := loadAndLower(path, opts)
	if !ok {
		return 1
	}

	exec := vm.NewExecutor(mod, os.Stdin, stdoutWriter{})
	exec.MaxSteps = cfg.Compile.MaxSteps
	state, err := exec.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return 1
	}
	if state != vm.StateHalted {
		fmt.Fprintf(os.Stderr, "%s: program did not halt cleanly (%s)\n", path, state)
		return 1
	}
	return 0
}

func cmdDebug(args []string) int {
	fs := flag.NewFlagSet("debug", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "debug: expected exactly one source path")
		return 2
	}
	path := fs.Arg(0)

	src, err := os.ReadFile(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return 1
	}

	dbg, err := debugger.New(path, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return 1
	}

	if err := debugger.RunCLI(dbg); err != nil && !errors.Is(err, os.ErrClosed) {
		fmt.Fprintf(os.Stderr, "debug: %v\n", err)
		return 1
	}
	return 0
}

func cmdServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", "", "listen address (default: from config)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, _ := config.Load()
	listenAddr := cfg.Service.ListenAddr
	if *addr != "" {
		listenAddr = *addr
	}

	srv := api.NewServer(cfg)
	fmt.Fprintf(os.Stderr, "lolcodec: serving on %s\n", listenAddr)
	if err := srv.ListenAndServe(listenAddr); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		return 1
	}
	return 0
}

func cmdTool(name string, args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "%s: expected exactly one source path\n", name)
		return 2
	}
	path := args[0]
	src, err := os.ReadFile(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
		return 1
	}

	switch name {
	case "fmt":
		out, err := tools.Format(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			return 1
		}
		fmt.Print(out)
	case "lint":
		diags, err := tools.Lint(path, src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			return 1
		}
		for _, d := range diags {
			fmt.Println(d)
		}
		if len(diags) > 0 {
			return 1
		}
	case "xref":
		out, err := tools.Xref(src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			return 1
		}
		fmt.Print(out)
	}
	return 0
}

func strTrimExt(path string) string {
	ext := filepath.Ext(path)
	return path[:len(path)-len(ext)]
}

// stdoutWriter adapts os.Stdout to vm.Writer without pulling bufio into the
// executor's dependency surface just for WriteString.
type stdoutWriter struct{}

func (stdoutWriter) WriteString(s string) (int, error) { return os.Stdout.WriteString(s) }
