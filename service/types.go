package service

import "github.com/lookbusy1344/arm-emulator/vm"

// ExecutionState mirrors vm.ExecutionState for API responses, keeping the
// wire format decoupled from the vm package's own enum values.
type ExecutionState string

const (
	StateRunning ExecutionState = "running"
	StateHalted  ExecutionState = "halted"
	StateError   ExecutionState = "error"
)

// VMStateToExecution converts vm.ExecutionState to service.ExecutionState.
func VMStateToExecution(state vm.ExecutionState) ExecutionState {
	switch state {
	case vm.StateRunning:
		return StateRunning
	case vm.StateHalted:
		return StateHalted
	case vm.StateError:
		return StateError
	default:
		return StateError
	}
}

// Diagnostic is a single parse or lowering failure, reported the way the
// CLI prints them (path:start..end: message) but split into fields a
// client can render without parsing a string.
type Diagnostic struct {
	Start   int    `json:"start"`
	End     int    `json:"end"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// VariableInfo is one declared variable's current value.
type VariableInfo struct {
	Name  string  `json:"name"`
	Value float32 `json:"value"`
}

// StackEntry is a single frame-stack cell.
type StackEntry struct {
	Index     int     `json:"index"`
	Value     float32 `json:"value"`
	IsBasePtr bool    `json:"isBasePtr"`
}

// IRLine is one lowered statement, formatted for display.
type IRLine struct {
	Index        int    `json:"index"`
	Text         string `json:"text"`
	IsCurrent    bool   `json:"isCurrent"`
	IsBreakpoint bool   `json:"isBreakpoint"`
}

// BreakpointInfo is a breakpoint keyed by IR statement index rather than
// the ARM emulator's memory address.
type BreakpointInfo struct {
	ID        int    `json:"id"`
	Index     int    `json:"index"`
	Enabled   bool   `json:"enabled"`
	Temporary bool   `json:"temporary"`
	Condition string `json:"condition"`
	HitCount  int    `json:"hitCount"`
}

// WatchpointInfo is a watchpoint keyed by variable name rather than the
// ARM emulator's memory address.
type WatchpointInfo struct {
	ID        int     `json:"id"`
	Type      string  `json:"type"` // "write", "read", "readwrite"
	Variable  string  `json:"variable"`
	Enabled   bool    `json:"enabled"`
	LastValue float32 `json:"lastValue"`
	HitCount  int     `json:"hitCount"`
}

// CompileResult is everything a client needs to render the result of
// loading a source: diagnostics if it failed, or the lowered IR and
// symbol table if it succeeded.
type CompileResult struct {
	Success      bool           `json:"success"`
	Diagnostics  []Diagnostic   `json:"diagnostics,omitempty"`
	Symbols      map[string]int `json:"symbols,omitempty"`
	IR           []IRLine       `json:"ir,omitempty"`
	GeneratedC   string         `json:"generatedC,omitempty"`
	GeneratedAsm string         `json:"generatedAsm,omitempty"`
}

// SessionSnapshot is the full execution state a client polls or receives
// over the event stream after each step.
type SessionSnapshot struct {
	State       ExecutionState   `json:"state"`
	PC          int              `json:"pc"`
	Steps       int              `json:"steps"`
	Error       string           `json:"error,omitempty"`
	Variables   []VariableInfo   `json:"variables"`
	Breakpoints []BreakpointInfo `json:"breakpoints"`
	Watchpoints []WatchpointInfo `json:"watchpoints"`
}
