package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/ir"
	"github.com/lookbusy1344/arm-emulator/parser"
	"github.com/lookbusy1344/arm-emulator/vm"
)

// StepMode controls what the implicit run loop stops on, generalized from
// the ARM emulator's register-stepping debugger to this compiler's single
// flat entry body (there are no callable functions in this language
// subset, so StepOver/StepOut collapse into plain single-stepping; see
// DESIGN.md).
type StepMode int

const (
	StepNone StepMode = iota
	StepSingle
)

// Debugger drives one compiled program's execution one IR statement at a
// time, the way the ARM emulator's Debugger drove one ARM program one
// instruction at a time. It owns every intermediate artifact the pipeline
// produces for the loaded source -- tokens, AST, IR, debug info -- so
// commands can inspect any stage without re-running the front end.
type Debugger struct {
	Path   string
	Source []byte
	Lines  []string

	Tokens []parser.LexedToken
	Prog   *parser.Program
	Module *ir.Module
	Debug  *codegen.DebugInfo

	Exec *vm.Executor

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running  bool
	StepMode StepMode

	LastCommand string
	Output      strings.Builder
}

// outputWriter routes a running program's VISIBLE output into the
// Debugger's own output buffer instead of directly to stdout, so the CLI
// and TUI front ends can interleave it with command output.
type outputWriter struct{ d *Debugger }

func (w *outputWriter) WriteString(s string) (int, error) {
	w.d.Output.WriteString(s)
	return len(s), nil
}

// New lexes, parses, and lowers the source at path (already read into
// src), and returns a Debugger ready to step through it. A front end calls
// RunCLI or RunTUI on the result.
func New(path string, src []byte) (*Debugger, error) {
	tokens := parser.Lex(src)
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		return nil, fmt.Errorf("%s", errs.Error())
	}

	mod, info, err := codegen.LowerWithSymbols(prog, codegen.DefaultOptions())
	if err != nil {
		return nil, err
	}

	d := &Debugger{
		Path:        path,
		Source:      src,
		Lines:       strings.Split(string(src), "\n"),
		Tokens:      tokens,
		Prog:        prog,
		Module:      mod,
		Debug:       info,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
	}
	d.resetExecutor()
	return d, nil
}

func (d *Debugger) resetExecutor() {
	d.Exec = vm.NewExecutor(d.Module, bufio.NewReader(os.Stdin), &outputWriter{d: d})
	d.Running = false
	d.StepMode = StepNone
}

// Printf/Println append to the Debugger's own output buffer, the way the
// teacher's Debugger.Printf/Println fed both the CLI and the TUI from one
// place instead of writing to stdout directly.
func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}

// GetOutput drains and returns everything written to Output since the last
// call.
func (d *Debugger) GetOutput() string {
	s := d.Output.String()
	d.Output.Reset()
	return s
}

// lineForIndex returns the 1-based source line a given entry-body index
// belongs to, by finding the enclosing top-level statement in
// Debug.StatementStarts and converting its span's start byte offset to a
// line number.
func (d *Debugger) lineForIndex(idx int) (int, bool) {
	stmtIdx := -1
	for i, start := range d.Debug.StatementStarts {
		if start <= idx {
			stmtIdx = i
		} else {
			break
		}
	}
	if stmtIdx < 0 {
		return 0, false
	}
	startByte, _ := d.Prog.Statements[stmtIdx].Span()
	return 1 + strings.Count(string(d.Source[:startByte]), "\n"), true
}

// indexForLine returns the entry-body index of the first top-level
// statement whose source starts on line (1-based).
func (d *Debugger) indexForLine(line int) (int, bool) {
	for i, stmt := range d.Prog.Statements {
		startByte, _ := stmt.Span()
		stmtLine := 1 + strings.Count(string(d.Source[:startByte]), "\n")
		if stmtLine == line {
			return d.Debug.StatementStarts[i], true
		}
	}
	return 0, false
}

// ExecuteCommand parses and runs a single command line, the way the
// teacher's Debugger.ExecuteCommand did: blank input repeats the last
// command, everything else is recorded to History before dispatch.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine == "" {
		return nil
	}

	d.History.Add(cmdLine)
	d.LastCommand = cmdLine

	fields := strings.Fields(cmdLine)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	if err := d.handleCommand(name, args); err != nil {
		return err
	}

	if d.Running {
		d.runUntilStop()
	}
	return nil
}

func (d *Debugger) handleCommand(name string, args []string) error {
	switch name {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c", "cont":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)
	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)
	case "watch", "w":
		return d.cmdWatch(args)
	case "rwatch":
		return d.cmdRWatch(args)
	case "awatch":
		return d.cmdAWatch(args)
	case "print", "p":
		return d.cmdPrint(args)
	case "tokens":
		return d.cmdTokens(args)
	case "ast":
		return d.cmdAST(args)
	case "ir":
		return d.cmdIR(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)
	case "set":
		return d.cmdSet(args)
	case "reset":
		return d.cmdReset(args)
	case "help", "h", "?":
		return d.cmdHelp(args)
	default:
		return fmt.Errorf("unknown command: %s (try 'help')", name)
	}
}

// runUntilStop steps the executor until a breakpoint or watchpoint fires,
// the program halts or errors, or StepMode says to stop after one step --
// the generalization of the ARM emulator's ShouldBreak-driven run loop.
func (d *Debugger) runUntilStop() {
	for d.Running {
		if stop, reason := d.checkStop(); stop {
			d.Println(reason)
			d.Running = false
			d.printLocation()
			return
		}

		if err := d.Exec.Step(); err != nil {
			d.Printf("runtime error: %v\n", err)
			d.Running = false
			return
		}

		switch state, runErr := d.Exec.State(); state {
		case vm.StateHalted:
			d.Println("Program halted.")
			d.Running = false
			return
		case vm.StateError:
			d.Printf("error: %v\n", runErr)
			d.Running = false
			return
		}

		if d.StepMode == StepSingle {
			d.Running = false
			d.printLocation()
			return
		}
	}
}

// checkStop reports whether execution should stop before running the
// statement now at the program counter.
func (d *Debugger) checkStop() (bool, string) {
	pc := d.Exec.PC()

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil && bp.Enabled {
		if bp.Condition != "" {
			ok, err := d.Evaluator.EvaluateCondition(bp.Condition, d.Exec.Machine, d.Debug.Symbols)
			if err != nil || !ok {
				return false, ""
			}
		}
		d.Breakpoints.ProcessHit(pc)
		reason := fmt.Sprintf("Breakpoint %d, statement %d", bp.ID, pc)
		if bp.Temporary {
			_ = d.Breakpoints.DeleteBreakpointAt(pc)
		}
		return true, reason
	}

	if wp, ok := d.Watchpoints.CheckWatchpoints(d.Exec.Machine, d.Debug.Symbols); ok {
		return true, fmt.Sprintf("Watchpoint %d: %s is now %v", wp.ID, wp.Expression, wp.LastValue)
	}

	return false, ""
}

func (d *Debugger) printLocation() {
	pc := d.Exec.PC()
	if line, ok := d.lineForIndex(pc); ok {
		d.Printf("=> [%d] line %d: %s\n", pc, line, strings.TrimRight(d.sourceLine(line), "\r"))
		return
	}
	if stmt, ok := d.Exec.StatementAt(pc); ok {
		d.Printf("=> [%d] %s\n", pc, stmt)
	}
}

func (d *Debugger) sourceLine(line int) string {
	if line < 1 || line > len(d.Lines) {
		return ""
	}
	return d.Lines[line-1]
}
