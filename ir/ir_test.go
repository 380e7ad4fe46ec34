package ir_test

import (
	"testing"

	"github.com/lookbusy1344/arm-emulator/ir"
)

func TestStatementStringForms(t *testing.T) {
	cases := []struct {
		name string
		stmt ir.Statement
		want string
	}{
		{"push", ir.PushStmt(3), "Push(3)"},
		{"store", ir.StoreStmt(4), "Store(4)"},
		{"load", ir.LoadStmt(4), "Load(4)"},
		{"call", ir.CallStmt("add"), `Call("add")`},
		{"callforeign", ir.CallForeignStmt("prn"), `CallForeign("prn")`},
		{"endframe", ir.EndStackFrameStmt(2, 1), "EndStackFrame(args=2, locals=1)"},
		{"hook", ir.HookStmt(1), "Hook(1)"},
		{"halt", ir.Statement{Op: ir.Halt}, "Halt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.stmt.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestValidateFramesBalanced(t *testing.T) {
	body := []ir.Statement{
		{Op: ir.EstablishStackFrame},
		{Op: ir.Push, Number: 1},
		ir.EndStackFrameStmt(1, 0),
	}
	if err := ir.ValidateFrames(body, false); err != nil {
		t.Fatalf("expected balanced frames, got error: %v", err)
	}
}

func TestValidateFramesUnmatchedEnd(t *testing.T) {
	body := []ir.Statement{ir.EndStackFrameStmt(0, 0)}
	if err := ir.ValidateFrames(body, false); err == nil {
		t.Fatal("expected error for unmatched EndStackFrame")
	}
}

func TestValidateFramesAbandonedEntry(t *testing.T) {
	body := []ir.Statement{
		{Op: ir.EstablishStackFrame},
		{Op: ir.Halt},
	}
	if err := ir.ValidateFrames(body, true); err != nil {
		t.Fatalf("expected abandoned entry frame to be allowed, got: %v", err)
	}
	if err := ir.ValidateFrames(body, false); err == nil {
		t.Fatal("expected error when abandoned frames are not allowed")
	}
}

func TestFunctionNames(t *testing.T) {
	m := &ir.Module{Functions: []ir.Function{{Name: "double"}, {Name: "square"}}}
	names := m.FunctionNames()
	if !names["double"] || !names["square"] {
		t.Fatalf("expected both function names, got %v", names)
	}
	if names["missing"] {
		t.Fatalf("unexpected function name present")
	}
}
