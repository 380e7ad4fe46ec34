package codegen_test

import (
	"testing"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/ir"
	"github.com/lookbusy1344/arm-emulator/parser"
)

func lower(t *testing.T, src string) *ir.Module {
	t.Helper()
	tokens := parser.Lex([]byte(src))
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	mod, err := codegen.Lower(prog, codegen.DefaultOptions())
	if err != nil {
		t.Fatalf("Lower returned an error: %v", err)
	}
	return mod
}

func opSequence(body []ir.Statement) []ir.Op {
	ops := make([]ir.Op, len(body))
	for i, s := range body {
		ops[i] = s.Op
	}
	return ops
}

func containsForeignCall(body []ir.Statement, name string) bool {
	for _, s := range body {
		if s.Op == ir.CallForeign && s.Name == name {
			return true
		}
	}
	return false
}

func TestLowerEmptyProgramIsJustHalt(t *testing.T) {
	mod := lower(t, "HAI 1.2\nKTHXBYE\n")
	if len(mod.Entry.Body) != 1 || mod.Entry.Body[0].Op != ir.Halt {
		t.Fatalf("expected [Halt], got %v", opSequence(mod.Entry.Body))
	}
}

func TestLowerDeclAssignVisible(t *testing.T) {
	mod := lower(t, "HAI 1.2\nI HAS A x ITZ NUMBER\nx R SUM OF 1 AN 2\nVISIBLE x\nKTHXBYE\n")
	body := mod.Entry.Body

	if body[0].Op != ir.EstablishStackFrame {
		t.Fatalf("expected a frame to be established, got %v", opSequence(body))
	}
	if body[len(body)-1].Op != ir.Halt {
		t.Fatalf("expected the body to end in Halt, got %v", opSequence(body))
	}
	if err := ir.ValidateFrames(body, true); err != nil {
		t.Fatalf("ValidateFrames: %v", err)
	}

	var sawAdd bool
	for _, s := range body {
		if s.Op == ir.Add {
			sawAdd = true
		}
	}
	if !sawAdd {
		t.Fatalf("expected SUM OF to lower to an Add, got %v", opSequence(body))
	}
	if !containsForeignCall(body, "prn") {
		t.Fatalf("expected a NUMBER-typed VISIBLE to call prn, got %v", opSequence(body))
	}
	if !containsForeignCall(body, "prend") {
		t.Fatalf("expected the trailing newline call, got %v", opSequence(body))
	}
}

func TestLowerStringLiteralWithEscapeAndBang(t *testing.T) {
	mod := lower(t, `HAI 1.2
VISIBLE "hi:)there"!
KTHXBYE
`)
	body := mod.Entry.Body

	var sawAllocate bool
	for _, s := range body {
		if s.Op == ir.Allocate {
			sawAllocate = true
		}
	}
	if !sawAllocate {
		t.Fatalf("expected the string literal to allocate heap storage, got %v", opSequence(body))
	}
	if !containsForeignCall(body, "prs") {
		t.Fatalf("expected a YARN-typed VISIBLE to call prs, got %v", opSequence(body))
	}
	if containsForeignCall(body, "prend") {
		t.Fatalf("trailing ! should suppress the newline call, got %v", opSequence(body))
	}

	// the decoded byte stream should contain a real newline where the
	// source had the colon-escape, not the two raw characters ':' ')'.
	var sawDecodedNewline bool
	for _, s := range body {
		if s.Op == ir.Push && s.Number == float32('\n') {
			sawDecodedNewline = true
		}
	}
	if !sawDecodedNewline {
		t.Fatalf("expected the :) escape to decode to a newline byte push")
	}
}

func TestLowerNumbarArithmeticPrintsViaFloatRoutine(t *testing.T) {
	mod := lower(t, "HAI 1.2\nI HAS A n ITZ NUMBAR\nn R 3.5\nVISIBLE PRODUKT OF n AN 2\nKTHXBYE\n")
	body := mod.Entry.Body

	var sawMultiply bool
	for _, s := range body {
		if s.Op == ir.Multiply {
			sawMultiply = true
		}
	}
	if !sawMultiply {
		t.Fatalf("expected PRODUKT OF to lower to a Multiply, got %v", opSequence(body))
	}
	if !containsForeignCall(body, "prh") {
		t.Fatalf("expected a NUMBAR-typed VISIBLE to call prh, got %v", opSequence(body))
	}
}

func TestLowerUndeclaredVariableIsAnError(t *testing.T) {
	tokens := parser.Lex([]byte("HAI 1.2\nVISIBLE x\nKTHXBYE\n"))
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if _, err := codegen.Lower(prog, codegen.DefaultOptions()); err == nil {
		t.Fatalf("expected Lower to reject a reference to an undeclared variable")
	}
}

func TestLowerSmooshConcatenatesStrings(t *testing.T) {
	mod := lower(t, `HAI 1.2
VISIBLE SMOOSH "a" AN "b" MKAY
KTHXBYE
`)
	body := mod.Entry.Body

	var allocateCount int
	for _, s := range body {
		if s.Op == ir.Allocate {
			allocateCount++
		}
	}
	// one allocation per literal plus one for the concatenated result.
	if allocateCount < 3 {
		t.Fatalf("expected at least 3 allocations (2 literals + 1 result), got %d in %v", allocateCount, opSequence(body))
	}

	var sawLoop bool
	for _, s := range body {
		if s.Op == ir.BeginWhile {
			sawLoop = true
		}
	}
	if !sawLoop {
		t.Fatalf("expected SMOOSH to copy bytes with a runtime loop, got %v", opSequence(body))
	}
}

func TestLowerBiggrAndComparison(t *testing.T) {
	mod := lower(t, "HAI 1.2\nVISIBLE BIGGR OF 3 AN 5\nVISIBLE BOTH SAEM 3 AN 3\nKTHXBYE\n")
	if err := ir.ValidateFrames(mod.Entry.Body, true); err != nil {
		t.Fatalf("ValidateFrames: %v", err)
	}
}
