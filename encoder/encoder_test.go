package encoder_test

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/encoder"
	"github.com/lookbusy1344/arm-emulator/ir"
	"github.com/lookbusy1344/arm-emulator/parser"
)

func lower(t *testing.T, src string) string {
	t.Helper()
	tokens := parser.Lex([]byte(src))
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	mod, err := codegen.Lower(prog, codegen.DefaultOptions())
	if err != nil {
		t.Fatalf("lower error: %v", err)
	}
	out, err := encoder.Generate(mod)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return out
}

func TestGenerateEmitsAssemblyHeaderAndRuntimeCalls(t *testing.T) {
	out := lower(t, "HAI 1.2\nVISIBLE SUM OF 1 AN 2\nKTHXBYE\n")
	if !strings.Contains(out, ".intel_syntax noprefix") {
		t.Fatalf("expected an Intel-syntax directive, got:\n%s", out)
	}
	if !strings.Contains(out, "call runtime_add") {
		t.Fatalf("expected a runtime_add call, got:\n%s", out)
	}
	if !strings.Contains(out, "call foreign_prn") {
		t.Fatalf("expected a foreign_prn call for a NUMBER VISIBLE, got:\n%s", out)
	}
}

func TestGenerateWrapsSmooshLoopInLabeledLoop(t *testing.T) {
	out := lower(t, "HAI 1.2\nVISIBLE SMOOSH \"a\" AN \"b\" MKAY\nKTHXBYE\n")
	if !strings.Contains(out, ".Lwhile1:") {
		t.Fatalf("expected a labeled loop for the SMOOSH byte copy, got:\n%s", out)
	}
	if !strings.Contains(out, "call runtime_allocate") {
		t.Fatalf("expected heap allocation for the concatenated string, got:\n%s", out)
	}
}

func TestGenerateMainReturnsCleanly(t *testing.T) {
	out := lower(t, "HAI 1.2\nKTHXBYE\n")
	if !strings.Contains(out, "main:") {
		t.Fatalf("expected a main label, got:\n%s", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), "ret") {
		t.Fatalf("expected generated assembly to end in ret, got:\n%s", out)
	}
}

func TestGenerateRejectsUnknownForeignName(t *testing.T) {
	mod := &ir.Module{
		Entry: ir.Entry{
			Body: []ir.Statement{ir.CallForeignStmt("not_a_real_foreign_function")},
		},
	}
	if _, err := encoder.Generate(mod); err == nil {
		t.Fatal("expected an error for an unknown foreign function name")
	}
}
