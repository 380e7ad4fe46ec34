package debugger

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lookbusy1344/arm-emulator/vm"
)

// Command handler implementations.

func (d *Debugger) cmdRun(args []string) error {
	d.resetExecutor()
	d.Running = true
	d.StepMode = StepNone
	d.Println("Starting program execution...")
	return nil
}

func (d *Debugger) cmdContinue(args []string) error {
	if state, _ := d.Exec.State(); state != vm.StateRunning {
		return fmt.Errorf("program is not running")
	}
	d.Running = true
	d.StepMode = StepNone
	d.Println("Continuing...")
	return nil
}

func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps a single statement. There are no callable functions in
// this language subset (see DESIGN.md), so "step over" is indistinguishable
// from plain stepping.
func (d *Debugger) cmdNext(args []string) error {
	return d.cmdStep(args)
}

// cmdFinish runs to completion. With no call stack to unwind, "step out"
// degenerates to "continue".
func (d *Debugger) cmdFinish(args []string) error {
	return d.cmdContinue(args)
}

// resolveLocation turns a command argument into an entry-body index: a
// bare integer is a source line number, "@N" is a raw IR index.
func (d *Debugger) resolveLocation(arg string) (int, error) {
	if strings.HasPrefix(arg, "@") {
		idx, err := strconv.Atoi(arg[1:])
		if err != nil {
			return 0, fmt.Errorf("invalid statement index: %s", arg)
		}
		return idx, nil
	}
	line, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid location: %s (want a line number or @index)", arg)
	}
	idx, ok := d.indexForLine(line)
	if !ok {
		return 0, fmt.Errorf("no statement starts on line %d", line)
	}
	return idx, nil
}

func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <line|@index> [if <condition>]")
	}

	idx, err := d.resolveLocation(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(idx, false, condition)
	if condition != "" {
		d.Printf("Breakpoint %d at statement %d (condition: %s)\n", bp.ID, idx, condition)
	} else {
		d.Printf("Breakpoint %d at statement %d\n", bp.ID, idx)
	}
	return nil
}

func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <line|@index>")
	}
	idx, err := d.resolveLocation(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(idx, true, "")
	d.Printf("Temporary breakpoint %d at statement %d\n", bp.ID, idx)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

func (d *Debugger) addWatch(wpType WatchType, label string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s <variable>", label)
	}
	name := args[0]
	if _, ok := d.Debug.Symbols[name]; !ok {
		return fmt.Errorf("undeclared variable %q", name)
	}

	wp := d.Watchpoints.AddWatchpoint(wpType, name)
	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.Exec.Machine, d.Debug.Symbols); err != nil {
		_ = d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}
	d.Printf("Watchpoint %d: %s\n", wp.ID, name)
	return nil
}

func (d *Debugger) cmdWatch(args []string) error  { return d.addWatch(WatchWrite, "watch", args) }
func (d *Debugger) cmdRWatch(args []string) error { return d.addWatch(WatchRead, "rwatch", args) }
func (d *Debugger) cmdAWatch(args []string) error { return d.addWatch(WatchReadWrite, "awatch", args) }

func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}
	expr := strings.Join(args, " ")
	result, err := d.Evaluator.EvaluateExpression(expr, d.Exec.Machine, d.Debug.Symbols)
	if err != nil {
		return err
	}
	d.Printf("$%d = %v\n", d.Evaluator.GetValueNumber(), result)
	return nil
}

func (d *Debugger) cmdTokens(args []string) error {
	for _, lt := range d.Tokens {
		d.Printf("  [%d] %s\n", lt.Index, lt.Token)
	}
	return nil
}

func (d *Debugger) cmdAST(args []string) error {
	for i, stmt := range d.Prog.Statements {
		start, end := stmt.Span()
		d.Printf("  [%d] %T (bytes %d..%d)\n", i, stmt, start, end)
	}
	return nil
}

func (d *Debugger) cmdIR(args []string) error {
	body := d.Module.Entry.Body
	pc := d.Exec.PC()
	for i, stmt := range body {
		marker := "  "
		if i == pc {
			marker = "->"
		}
		bp := " "
		if d.Breakpoints.HasBreakpoint(i) {
			bp = "*"
		}
		d.Printf("%s%s[%4d] %s\n", marker, bp, i, stmt)
	}
	return nil
}

func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <state|vars|breakpoints|watchpoints|stack|heap>")
	}

	switch strings.ToLower(args[0]) {
	case "state", "s":
		return d.showState()
	case "vars", "v":
		return d.showVars()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "stack":
		return d.showStack()
	case "heap":
		return d.showHeap()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

func (d *Debugger) showState() error {
	state, err := d.Exec.State()
	m := d.Exec.Machine
	d.Printf("State:   %s\n", state)
	if err != nil {
		d.Printf("Error:   %v\n", err)
	}
	d.Printf("PC:      %d\n", d.Exec.PC())
	d.Printf("Steps:   %d\n", d.Exec.Steps())
	d.Printf("SP:      %d\n", m.StackPointer)
	d.Printf("BasePtr: %d\n", m.BasePtr)
	d.Printf("Alloc:   %d\n", m.Allocated)
	return nil
}

func (d *Debugger) showVars() error {
	if len(d.Debug.Symbols) == 0 {
		d.Println("No declared variables")
		return nil
	}
	names := make([]string, 0, len(d.Debug.Symbols))
	for name := range d.Debug.Symbols {
		names = append(names, name)
	}
	sort.Strings(names)

	m := d.Exec.Machine
	d.Println("Variables:")
	for _, name := range names {
		sym := d.Debug.Symbols[name]
		idx := m.BasePtr + sym.Offset
		if idx >= 0 && idx < len(m.Stack) {
			d.Printf("  %-12s %-8s slot %-4d = %v\n", name, sym.Type, sym.Offset, m.Stack[idx])
		} else {
			d.Printf("  %-12s %-8s slot %-4d (out of frame)\n", name, sym.Type, sym.Offset)
		}
	}
	return nil
}

func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}
	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}
		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}
		d.Printf("  %d: statement %d %s%s%s (hit %d times)\n",
			bp.ID, bp.Index, status, temp, condition, bp.HitCount)
	}
	return nil
}

func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}
	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}
		d.Printf("  %d: %s %s (hit %d times, last value: %v)\n",
			wp.ID, wp.Expression, status, wp.HitCount, wp.LastValue)
	}
	return nil
}

func (d *Debugger) showStack() error {
	m := d.Exec.Machine
	d.Printf("Stack (sp=%d, base=%d):\n", m.StackPointer, m.BasePtr)
	for i := 0; i < m.StackPointer && i < 64; i++ {
		marker := "  "
		if i == m.BasePtr {
			marker = "->"
		}
		d.Printf("%s [%3d] %v\n", marker, i, m.Stack[i])
	}
	return nil
}

func (d *Debugger) showHeap() error {
	m := d.Exec.Machine
	d.Printf("Heap (allocated=%d):\n", m.Allocated)
	for i := 0; i < m.Allocated && i < 64; i++ {
		d.Printf("  [%3d] %v\n", i, m.Heap[i])
	}
	return nil
}

func (d *Debugger) cmdBacktrace(args []string) error {
	pc := d.Exec.PC()
	d.Println("Call stack:")
	if line, ok := d.lineForIndex(pc); ok {
		d.Printf("  #0  statement %d, line %d, base=%d\n", pc, line, d.Exec.Machine.BasePtr)
	} else {
		d.Printf("  #0  statement %d, base=%d\n", pc, d.Exec.Machine.BasePtr)
	}
	return nil
}

func (d *Debugger) cmdList(args []string) error {
	pc := d.Exec.PC()
	line, ok := d.lineForIndex(pc)
	if !ok {
		d.Println("<no source mapping for current position>")
		return nil
	}

	lo, hi := line-CodeContextLinesBeforeCompact, line+CodeContextLinesAfterCompact
	if lo < 1 {
		lo = 1
	}
	if hi > len(d.Lines) {
		hi = len(d.Lines)
	}
	for l := lo; l <= hi; l++ {
		marker := "  "
		if l == line {
			marker = "=>"
		}
		d.Printf("%s %4d: %s\n", marker, l, d.sourceLine(l))
	}
	return nil
}

func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 || args[1] != "=" {
		return fmt.Errorf("usage: set <variable> = <expression>")
	}

	name := args[0]
	sym, ok := d.Debug.Symbols[name]
	if !ok {
		return fmt.Errorf("undeclared variable %q", name)
	}

	valueExpr := strings.Join(args[2:], " ")
	value, err := d.Evaluator.EvaluateExpression(valueExpr, d.Exec.Machine, d.Debug.Symbols)
	if err != nil {
		return err
	}

	m := d.Exec.Machine
	idx := m.BasePtr + sym.Offset
	if idx < 0 || idx >= len(m.Stack) {
		return fmt.Errorf("variable %q is out of frame", name)
	}
	m.Stack[idx] = value
	d.Printf("%s set to %v\n", name, value)
	return nil
}

func (d *Debugger) cmdReset(args []string) error {
	d.resetExecutor()
	d.Evaluator.Reset()
	d.Println("Execution reset")
	return nil
}

func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("Debugger commands:")
	d.Println()
	d.Println("Execution control:")
	d.Println("  run (r)             - Restart and begin execution")
	d.Println("  continue (c)        - Continue execution")
	d.Println("  step (s, si)        - Execute a single IR statement")
	d.Println("  next (n)            - Same as step (no calls to step over)")
	d.Println("  finish (fin)        - Same as continue (no call stack to unwind)")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <line>    - Break before the statement at a source line")
	d.Println("  tbreak (tb) <line>  - One-shot breakpoint")
	d.Println("  delete (d) [id]     - Delete breakpoint(s)")
	d.Println("  enable/disable <id> - Toggle a breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch/rwatch/awatch <variable> - Stop when a variable's value changes")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>    - Evaluate an expression")
	d.Println("  tokens              - List lexed tokens")
	d.Println("  ast                 - List top-level AST statements")
	d.Println("  ir                  - List the lowered IR, with PC and breakpoints marked")
	d.Println("  info (i) <what>     - state, vars, breakpoints, watchpoints, stack, heap")
	d.Println("  backtrace (bt)      - Show the current frame")
	d.Println("  list (l)            - Show source around the current statement")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <var> = <expr>  - Write a variable's frame slot")
	d.Println()
	d.Println("Control:")
	d.Println("  reset               - Restart execution from the top")
	d.Println("  help (h, ?)         - Show this help")
	return nil
}

func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break": "break <line> [if <condition>]\n  Break before the statement starting at the given source line.",
		"step":  "step\n  Execute a single IR statement.",
		"print": "print <expression>\n  Evaluate and print an expression over variables and literals.",
		"info":  "info <state|vars|breakpoints|watchpoints|stack|heap>\n  Display information about the running program.",
		"watch": "watch <variable>\n  Stop the next time the named variable's value changes.",
	}
	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}
	return fmt.Errorf("no help available for command: %s", cmd)
}
