// Package service hosts the compile-and-run session the HTTP API drives:
// given LOLCODE source it lexes, parses, and lowers it, then exposes the
// same step/breakpoint/watchpoint/expression machinery the CLI debugger
// offers, but behind a mutex and with per-session I/O instead of a
// terminal, so one server process can hold many independent sessions.
package service

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/debugger"
	"github.com/lookbusy1344/arm-emulator/encoder"
	"github.com/lookbusy1344/arm-emulator/ir"
	"github.com/lookbusy1344/arm-emulator/parser"
	"github.com/lookbusy1344/arm-emulator/targets/cvm"
	"github.com/lookbusy1344/arm-emulator/vm"
)

// Compile lexes, parses, and lowers source without creating a session,
// for the one-shot /api/v1/compile endpoint. A session is only worth
// keeping around once this succeeds.
func Compile(path string, source []byte, opts codegen.Options) CompileResult {
	tokens := parser.Lex(source)
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		return CompileResult{Diagnostics: toDiagnostics(source, path, errs)}
	}

	mod, info, err := codegen.LowerWithSymbols(prog, opts)
	if err != nil {
		return CompileResult{Diagnostics: []Diagnostic{{Message: err.Error()}}}
	}

	symbols := make(map[string]int, len(info.Symbols))
	for name, sym := range info.Symbols {
		symbols[name] = sym.Offset
	}

	lines := make([]IRLine, len(mod.Entry.Body))
	for i, stmt := range mod.Entry.Body {
		lines[i] = IRLine{Index: i, Text: stmt.String()}
	}

	result := CompileResult{Success: true, Symbols: symbols, IR: lines}

	if src, err := cvm.Generate(mod); err == nil {
		result.GeneratedC = src
	}
	if src, err := encoder.Generate(mod); err == nil {
		result.GeneratedAsm = src
	}

	return result
}

func toDiagnostics(source []byte, path string, errs parser.ErrorList) []Diagnostic {
	out := make([]Diagnostic, len(errs))
	for i, e := range errs {
		pos := parser.OffsetToPosition(source, path, e.Token.Start)
		out[i] = Diagnostic{
			Start:   e.Token.Start,
			End:     e.Token.End,
			Line:    pos.Line,
			Column:  pos.Column,
			Message: e.Message,
		}
	}
	return out
}

// sessionInput is an unbounded byte queue implementing vm.Reader, fed by
// SendInput and drained by the foreign table's getch/read_string
// primitives -- the service's stand-in for the CLI's os.Stdin, since each
// session needs its own independent stream rather than the process's.
type sessionInput struct {
	mu  sync.Mutex
	buf []byte
}

func (s *sessionInput) write(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, p...)
}

func (s *sessionInput) ReadByte() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.buf) == 0 {
		return 0, io.EOF
	}
	b := s.buf[0]
	s.buf = s.buf[1:]
	return b, nil
}

// outputSink collects a running program's VISIBLE output, the way
// debugger.Debugger buffers it for the CLI and TUI, optionally tee-ing
// each write to an external sink (an api.EventWriter broadcasting to a
// session's WebSocket subscribers).
type outputSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
	tee io.Writer
}

func (o *outputSink) WriteString(s string) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.buf.WriteString(s)
	if o.tee != nil {
		_, _ = o.tee.Write([]byte(s))
	}
	return len(s), nil
}

func (o *outputSink) drain() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.buf.String()
	o.buf.Reset()
	return s
}

// DebuggerService wraps one compiled program behind a mutex so concurrent
// HTTP handlers can drive it safely, exposing the same step/breakpoint/
// watchpoint/expression operations debugger.Debugger offers the CLI.
type DebuggerService struct {
	mu sync.Mutex

	path   string
	source []byte
	opts   codegen.Options

	prog *parser.Program
	mod  *ir.Module
	info *codegen.DebugInfo

	exec  *vm.Executor
	input *sessionInput
	out   *outputSink

	breakpoints *debugger.BreakpointManager
	watchpoints *debugger.WatchpointManager
	evaluator   *debugger.ExpressionEvaluator

	running bool
}

// NewDebuggerService compiles source and returns a service ready to step
// through it. maxSteps bounds Continue the way config.Compile.MaxSteps
// bounds the CLI's run command.
func NewDebuggerService(path string, source []byte, opts codegen.Options, maxSteps int) (*DebuggerService, error) {
	tokens := parser.Lex(source)
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		return nil, fmt.Errorf("%s", errs.Error())
	}

	mod, info, err := codegen.LowerWithSymbols(prog, opts)
	if err != nil {
		return nil, err
	}

	svc := &DebuggerService{
		path:        path,
		source:      source,
		opts:        opts,
		prog:        prog,
		mod:         mod,
		info:        info,
		input:       &sessionInput{},
		out:         &outputSink{},
		breakpoints: debugger.NewBreakpointManager(),
		watchpoints: debugger.NewWatchpointManager(),
		evaluator:   debugger.NewExpressionEvaluator(),
	}
	svc.resetExecutor(maxSteps)
	return svc, nil
}

func (s *DebuggerService) resetExecutor(maxSteps int) {
	s.exec = vm.NewExecutor(s.mod, s.input, s.out)
	if maxSteps > 0 {
		s.exec.MaxSteps = maxSteps
	}
	s.running = false
}

// SetOutputTee routes the program's output to w in addition to the
// service's own buffer, for a caller (the API's session manager) that
// wants to broadcast it live.
func (s *DebuggerService) SetOutputTee(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.tee = w
}

// SendInput appends bytes to the program's input stream, for GIMMEH to
// consume on its next read.
func (s *DebuggerService) SendInput(data []byte) {
	s.input.write(data)
}

// Reset recompiles from the original source, discarding all execution
// state but keeping breakpoints and watchpoints (matching the CLI
// debugger's "reset" command).
func (s *DebuggerService) Reset(maxSteps int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mod, info, err := codegen.LowerWithSymbols(s.prog, s.opts)
	if err != nil {
		return err
	}
	s.mod = mod
	s.info = info
	s.resetExecutor(maxSteps)
	return nil
}

// Step executes exactly one IR statement.
func (s *DebuggerService) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exec.Step()
}

// Continue runs until a breakpoint or watchpoint fires, the program
// halts, or it errors -- the generalization of debugger.Debugger's
// runUntilStop for a caller without a command loop to drive it.
func (s *DebuggerService) Continue() (ExecutionState, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = true
	for s.running {
		if stop, reason := s.checkStopLocked(); stop {
			s.running = false
			return VMStateToExecution(vm.StateRunning), reason, nil
		}

		if s.exec.Steps() >= s.exec.MaxSteps {
			s.running = false
			return StateError, "", fmt.Errorf("exceeded max step count (%d)", s.exec.MaxSteps)
		}

		if err := s.exec.Step(); err != nil {
			s.running = false
			return StateError, "", err
		}

		state, runErr := s.exec.State()
		switch state {
		case vm.StateHalted:
			s.running = false
			return StateHalted, "", nil
		case vm.StateError:
			s.running = false
			return StateError, "", runErr
		}
	}
	return VMStateToExecution(vm.StateRunning), "", nil
}

func (s *DebuggerService) checkStopLocked() (bool, string) {
	pc := s.exec.PC()

	if bp := s.breakpoints.GetBreakpoint(pc); bp != nil && bp.Enabled {
		if bp.Condition != "" {
			ok, err := s.evaluator.EvaluateCondition(bp.Condition, s.exec.Machine, s.info.Symbols)
			if err != nil || !ok {
				return false, ""
			}
		}
		s.breakpoints.ProcessHit(pc)
		reason := fmt.Sprintf("breakpoint %d, statement %d", bp.ID, pc)
		if bp.Temporary {
			_ = s.breakpoints.DeleteBreakpointAt(pc)
		}
		return true, reason
	}

	if wp, ok := s.watchpoints.CheckWatchpoints(s.exec.Machine, s.info.Symbols); ok {
		return true, fmt.Sprintf("watchpoint %d: %s is now %v", wp.ID, wp.Expression, wp.LastValue)
	}

	return false, ""
}

// Stop marks a running Continue loop to stop before its next statement.
func (s *DebuggerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
}

// State reports the executor's current run state and any error.
func (s *DebuggerService) State() (ExecutionState, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.exec.State()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return VMStateToExecution(state), msg
}

// Snapshot gathers the full inspectable state in one call, for the
// status endpoint and for broadcasting after each step.
func (s *DebuggerService) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, errMsg := s.exec.State()
	return SessionSnapshot{
		State:       VMStateToExecution(state),
		PC:          s.exec.PC(),
		Steps:       s.exec.Steps(),
		Error:       errMsg,
		Variables:   s.variablesLocked(),
		Breakpoints: toBreakpointInfos(s.breakpoints.GetAllBreakpoints()),
		Watchpoints: toWatchpointInfos(s.watchpoints.GetAllWatchpoints()),
	}
}

// Variables returns every declared variable's current value.
func (s *DebuggerService) Variables() []VariableInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variablesLocked()
}

func (s *DebuggerService) variablesLocked() []VariableInfo {
	m := s.exec.Machine
	vars := make([]VariableInfo, 0, len(s.info.Symbols))
	for name, sym := range s.info.Symbols {
		idx := m.BasePtr + sym.Offset
		if idx < 0 || idx >= len(m.Stack) {
			continue
		}
		vars = append(vars, VariableInfo{Name: name, Value: m.Stack[idx]})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}

// Stack returns the frame stack up to the current stack pointer.
func (s *DebuggerService) Stack() []StackEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := s.exec.Machine
	entries := make([]StackEntry, m.StackPointer)
	for i := 0; i < m.StackPointer; i++ {
		entries[i] = StackEntry{Index: i, Value: m.Stack[i], IsBasePtr: i == m.BasePtr}
	}
	return entries
}

// IR returns the lowered statement list, marking the current statement
// and any breakpoints.
func (s *DebuggerService) IR() []IRLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	pc := s.exec.PC()
	body := s.mod.Entry.Body
	lines := make([]IRLine, len(body))
	for i, stmt := range body {
		lines[i] = IRLine{
			Index:        i,
			Text:         stmt.String(),
			IsCurrent:    i == pc,
			IsBreakpoint: s.breakpoints.HasBreakpoint(i),
		}
	}
	return lines
}

// Output drains and returns everything the program has written since the
// last call.
func (s *DebuggerService) Output() string {
	return s.out.drain()
}

// AddBreakpoint adds a breakpoint at the given IR statement index.
func (s *DebuggerService) AddBreakpoint(index int, temporary bool, condition string) BreakpointInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toBreakpointInfo(s.breakpoints.AddBreakpoint(index, temporary, condition))
}

// RemoveBreakpoint deletes a breakpoint by ID.
func (s *DebuggerService) RemoveBreakpoint(id int) error {
	return s.breakpoints.DeleteBreakpoint(id)
}

// Breakpoints lists every breakpoint.
func (s *DebuggerService) Breakpoints() []BreakpointInfo {
	return toBreakpointInfos(s.breakpoints.GetAllBreakpoints())
}

func toBreakpointInfo(bp *debugger.Breakpoint) BreakpointInfo {
	return BreakpointInfo{
		ID:        bp.ID,
		Index:     bp.Index,
		Enabled:   bp.Enabled,
		Temporary: bp.Temporary,
		Condition: bp.Condition,
		HitCount:  bp.HitCount,
	}
}

func toBreakpointInfos(bps []*debugger.Breakpoint) []BreakpointInfo {
	out := make([]BreakpointInfo, len(bps))
	for i, bp := range bps {
		out[i] = toBreakpointInfo(bp)
	}
	return out
}

var watchTypeNames = map[debugger.WatchType]string{
	debugger.WatchWrite:     "write",
	debugger.WatchRead:      "read",
	debugger.WatchReadWrite: "readwrite",
}

// AddWatchpoint adds a watchpoint on the named variable and primes its
// starting value, mirroring the CLI's "watch <name>" command.
func (s *DebuggerService) AddWatchpoint(watchType string, variable string) (WatchpointInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wt := debugger.WatchWrite
	for t, name := range watchTypeNames {
		if name == watchType {
			wt = t
			break
		}
	}

	wp := s.watchpoints.AddWatchpoint(wt, variable)
	if err := s.watchpoints.InitializeWatchpoint(wp.ID, s.exec.Machine, s.info.Symbols); err != nil {
		_ = s.watchpoints.DeleteWatchpoint(wp.ID)
		return WatchpointInfo{}, err
	}
	return toWatchpointInfo(wp), nil
}

// RemoveWatchpoint deletes a watchpoint by ID.
func (s *DebuggerService) RemoveWatchpoint(id int) error {
	return s.watchpoints.DeleteWatchpoint(id)
}

// Watchpoints lists every watchpoint.
func (s *DebuggerService) Watchpoints() []WatchpointInfo {
	return toWatchpointInfos(s.watchpoints.GetAllWatchpoints())
}

func toWatchpointInfo(wp *debugger.Watchpoint) WatchpointInfo {
	return WatchpointInfo{
		ID:        wp.ID,
		Type:      watchTypeNames[wp.Type],
		Variable:  wp.Expression,
		Enabled:   wp.Enabled,
		LastValue: wp.LastValue,
		HitCount:  wp.HitCount,
	}
}

func toWatchpointInfos(wps []*debugger.Watchpoint) []WatchpointInfo {
	out := make([]WatchpointInfo, len(wps))
	for i, wp := range wps {
		out[i] = toWatchpointInfo(wp)
	}
	return out
}

// Evaluate evaluates a debugger expression against the current machine
// state (named variables, arithmetic, $N value-history references).
func (s *DebuggerService) Evaluate(expr string) (float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluator.EvaluateExpression(expr, s.exec.Machine, s.info.Symbols)
}
