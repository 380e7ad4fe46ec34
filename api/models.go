package api

import (
	"time"

	"github.com/lookbusy1344/arm-emulator/service"
)

// SessionCreateResponse is the response from creating a session.
type SessionCreateResponse struct {
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CompileRequest is a request to compile (and, on success, load into the
// session) a piece of LOLCODE source.
type CompileRequest struct {
	Source string `json:"source"`
}

// CompileResponse mirrors service.CompileResult over the wire.
type CompileResponse struct {
	Success      bool                  `json:"success"`
	Diagnostics  []service.Diagnostic  `json:"diagnostics,omitempty"`
	Symbols      map[string]int        `json:"symbols,omitempty"`
	IR           []service.IRLine      `json:"ir,omitempty"`
	GeneratedC   string                `json:"generatedC,omitempty"`
	GeneratedAsm string                `json:"generatedAsm,omitempty"`
}

func toCompileResponse(r service.CompileResult) CompileResponse {
	return CompileResponse{
		Success:      r.Success,
		Diagnostics:  r.Diagnostics,
		Symbols:      r.Symbols,
		IR:           r.IR,
		GeneratedC:   r.GeneratedC,
		GeneratedAsm: r.GeneratedAsm,
	}
}

// SessionStatusResponse is the current execution status of a session.
type SessionStatusResponse struct {
	SessionID   string                   `json:"sessionId"`
	State       string                   `json:"state"`
	PC          int                      `json:"pc"`
	Steps       int                      `json:"steps"`
	Error       string                   `json:"error,omitempty"`
	Variables   []service.VariableInfo   `json:"variables"`
	Breakpoints []service.BreakpointInfo `json:"breakpoints"`
	Watchpoints []service.WatchpointInfo `json:"watchpoints"`
}

func toSessionStatusResponse(sessionID string, snap service.SessionSnapshot) SessionStatusResponse {
	return SessionStatusResponse{
		SessionID:   sessionID,
		State:       string(snap.State),
		PC:          snap.PC,
		Steps:       snap.Steps,
		Error:       snap.Error,
		Variables:   snap.Variables,
		Breakpoints: snap.Breakpoints,
		Watchpoints: snap.Watchpoints,
	}
}

// StackResponse is the frame stack up to the current stack pointer.
type StackResponse struct {
	Entries []service.StackEntry `json:"entries"`
}

// IRResponse is the lowered statement list.
type IRResponse struct {
	Lines []service.IRLine `json:"lines"`
}

// BreakpointRequest is a request to add a breakpoint.
type BreakpointRequest struct {
	Index     int    `json:"index"`
	Temporary bool   `json:"temporary,omitempty"`
	Condition string `json:"condition,omitempty"`
}

// BreakpointsResponse is a list of breakpoints.
type BreakpointsResponse struct {
	Breakpoints []service.BreakpointInfo `json:"breakpoints"`
}

// WatchpointRequest is a request to add a watchpoint.
type WatchpointRequest struct {
	Variable string `json:"variable"`
	Type     string `json:"type,omitempty"` // "write" (default), "read", "readwrite"
}

// WatchpointsResponse is a list of watchpoints.
type WatchpointsResponse struct {
	Watchpoints []service.WatchpointInfo `json:"watchpoints"`
}

// EvaluateRequest is a request to evaluate a debugger expression.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse is the result of evaluating an expression.
type EvaluateResponse struct {
	Value float32 `json:"value"`
}

// StdinRequest is a request to send input bytes to a running program.
type StdinRequest struct {
	Data string `json:"data"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// SuccessResponse is a simple success acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Event is a WebSocket event envelope.
type Event struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// StateEvent is a state-change event's payload.
type StateEvent struct {
	State string `json:"state"`
	PC    int    `json:"pc"`
	Steps int    `json:"steps"`
}

// OutputEvent is a console-output event's payload.
type OutputEvent struct {
	Stream  string `json:"stream"` // "stdout"
	Content string `json:"content"`
}

// ExecutionEvent is a run outcome's payload: an error, a halt, or a stop
// at a breakpoint or watchpoint.
type ExecutionEvent struct {
	Event   string `json:"event"` // "error", "halted", "stopped"
	Index   int    `json:"index,omitempty"`
	Message string `json:"message,omitempty"`
}
