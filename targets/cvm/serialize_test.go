package cvm_test

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/parser"
	"github.com/lookbusy1344/arm-emulator/targets/cvm"
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
	out, err := cvm.Generate(mod)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return out
}

func TestGenerateEmitsMachineNewWithConfiguredSizes(t *testing.T) {
	out := lower(t, "HAI 1.2\nVISIBLE SUM OF 1 AN 2\nKTHXBYE\n")
	if !strings.Contains(out, "machine_new(1024, 4096)") {
		t.Fatalf("expected machine_new call with default sizes, got:\n%s", out)
	}
	if !strings.Contains(out, "machine_add(m);") {
		t.Fatalf("expected a machine_add call, got:\n%s", out)
	}
	if !strings.Contains(out, "foreign_prn(m);") {
		t.Fatalf("expected an foreign_prn call for a NUMBER VISIBLE, got:\n%s", out)
	}
}

func TestGenerateWrapsSmooshLoopInCWhile(t *testing.T) {
	out := lower(t, "HAI 1.2\nVISIBLE SMOOSH \"a\" AN \"b\" MKAY\nKTHXBYE\n")
	if !strings.Contains(out, "while (1) {") {
		t.Fatalf("expected a while loop for the SMOOSH byte copy, got:\n%s", out)
	}
	if !strings.Contains(out, "machine_allocate(m);") {
		t.Fatalf("expected heap allocation for the concatenated string, got:\n%s", out)
	}
}

func TestGenerateEndsWithMachineDropAndReturn(t *testing.T) {
	out := lower(t, "HAI 1.2\nKTHXBYE\n")
	if !strings.Contains(out, "machine_drop(m);") || !strings.HasSuffix(strings.TrimSpace(out), "}") {
		t.Fatalf("expected a well-formed main() ending in machine_drop/return, got:\n%s", out)
	}
}
