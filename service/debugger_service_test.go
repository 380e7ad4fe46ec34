package service

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/arm-emulator/codegen"
)

const helloSrc = `HAI 1.2
I HAS A VAR
R 5
VISIBLE VAR
KTHXBYE
`

const badSrc = `HAI 1.2
I HAS A
KTHXBYE
`

func TestCompile_Success(t *testing.T) {
	result := Compile("hello.lol", []byte(helloSrc), codegen.DefaultOptions())

	if !result.Success {
		t.Fatalf("expected success, got diagnostics: %+v", result.Diagnostics)
	}
	if len(result.IR) == 0 {
		t.Error("expected non-empty IR")
	}
	if _, ok := result.Symbols["VAR"]; !ok {
		t.Errorf("expected symbol VAR in %+v", result.Symbols)
	}
}

func TestCompile_ParseError(t *testing.T) {
	result := Compile("bad.lol", []byte(badSrc), codegen.DefaultOptions())

	if result.Success {
		t.Fatal("expected failure for malformed source")
	}
	if len(result.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic")
	}
}

func newTestService(t *testing.T, src string) *DebuggerService {
	t.Helper()
	svc, err := NewDebuggerService("test.lol", []byte(src), codegen.DefaultOptions(), 1000)
	if err != nil {
		t.Fatalf("NewDebuggerService failed: %v", err)
	}
	return svc
}

func TestNewDebuggerService(t *testing.T) {
	svc := newTestService(t, helloSrc)

	state, _ := svc.State()
	if state != StateRunning {
		t.Errorf("expected fresh service to be running, got %s", state)
	}
	if pc := svc.Snapshot().PC; pc != 0 {
		t.Errorf("expected PC 0, got %d", pc)
	}
}

func TestDebuggerService_Continue(t *testing.T) {
	svc := newTestService(t, helloSrc)

	state, reason, err := svc.Continue()
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	if reason != "" {
		t.Errorf("expected no stop reason, got %q", reason)
	}
	if state != StateHalted {
		t.Errorf("expected halted, got %s", state)
	}

	out := svc.Output()
	if !strings.Contains(out, "5") {
		t.Errorf("expected output to contain variable value, got %q", out)
	}
}

func TestDebuggerService_Step(t *testing.T) {
	svc := newTestService(t, helloSrc)

	if err := svc.Step(); err != nil {
		t.Fatalf("Step failed: %v", err)
	}

	snap := svc.Snapshot()
	if snap.Steps != 1 {
		t.Errorf("expected 1 step taken, got %d", snap.Steps)
	}
}

func TestDebuggerService_Breakpoints(t *testing.T) {
	svc := newTestService(t, helloSrc)

	bp := svc.AddBreakpoint(1, false, "")
	if bp.Index != 1 {
		t.Errorf("expected breakpoint at index 1, got %d", bp.Index)
	}

	state, reason, err := svc.Continue()
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	if state != StateRunning {
		t.Errorf("expected still running after breakpoint stop, got %s", state)
	}
	if reason == "" {
		t.Error("expected a stop reason naming the breakpoint")
	}

	if err := svc.RemoveBreakpoint(bp.ID); err != nil {
		t.Fatalf("RemoveBreakpoint failed: %v", err)
	}
	if len(svc.Breakpoints()) != 0 {
		t.Errorf("expected no breakpoints left, got %d", len(svc.Breakpoints()))
	}
}

func TestDebuggerService_Watchpoints(t *testing.T) {
	svc := newTestService(t, helloSrc)

	wp, err := svc.AddWatchpoint("write", "VAR")
	if err != nil {
		t.Fatalf("AddWatchpoint failed: %v", err)
	}
	if wp.Variable != "VAR" {
		t.Errorf("expected watchpoint on VAR, got %q", wp.Variable)
	}

	if len(svc.Watchpoints()) != 1 {
		t.Errorf("expected 1 watchpoint, got %d", len(svc.Watchpoints()))
	}

	if err := svc.RemoveWatchpoint(wp.ID); err != nil {
		t.Fatalf("RemoveWatchpoint failed: %v", err)
	}
}

func TestDebuggerService_Evaluate(t *testing.T) {
	svc := newTestService(t, helloSrc)

	// The first statement establishes the entry frame; the second pushes
	// VAR's initializer.
	for i := 0; i < 2; i++ {
		if err := svc.Step(); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}

	val, err := svc.Evaluate("VAR")
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if val != 5 {
		t.Errorf("expected VAR == 5, got %v", val)
	}
}

func TestDebuggerService_Reset(t *testing.T) {
	svc := newTestService(t, helloSrc)

	if _, _, err := svc.Continue(); err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	if err := svc.Reset(1000); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	snap := svc.Snapshot()
	if snap.Steps != 0 {
		t.Errorf("expected steps reset to 0, got %d", snap.Steps)
	}
	if snap.PC != 0 {
		t.Errorf("expected PC reset to 0, got %d", snap.PC)
	}
}

func TestDebuggerService_SendInput(t *testing.T) {
	svc := newTestService(t, `HAI 1.2
I HAS A NAME
GIMMEH NAME
VISIBLE NAME
KTHXBYE
`)
	svc.SendInput([]byte("WORLD\n"))

	state, _, err := svc.Continue()
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	if state != StateHalted {
		t.Errorf("expected halted, got %s", state)
	}
	if !strings.Contains(svc.Output(), "WORLD") {
		t.Errorf("expected output to echo input, got %q", svc.Output())
	}
}
