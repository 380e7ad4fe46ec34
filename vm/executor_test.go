package vm_test

import (
	"bytes"
	"testing"

	"github.com/lookbusy1344/arm-emulator/codegen"
	"github.com/lookbusy1344/arm-emulator/parser"
	"github.com/lookbusy1344/arm-emulator/vm"
)

func run(t *testing.T, src string) string {
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
	var out bytes.Buffer
	in := bytes.NewBufferString("")
	exec := vm.NewExecutor(mod, in, &out)
	state, err := exec.Run()
	if err != nil {
		t.Fatalf("run error: %v", err)
	}
	if state != vm.StateHalted {
		t.Fatalf("expected halted, got %v", state)
	}
	return out.String()
}

func TestExecutorPrintsSumOfTwoNumbers(t *testing.T) {
	got := run(t, "HAI 1.2\nVISIBLE SUM OF 1 AN 2\nKTHXBYE\n")
	if got != "3\n" {
		t.Fatalf("got %q, want %q", got, "3\n")
	}
}

func TestExecutorSmooshConcatenatesWithoutTrailingNewline(t *testing.T) {
	got := run(t, "HAI 1.2\nVISIBLE SMOOSH \"hi\" AN \"there\" MKAY!\nKTHXBYE\n")
	if got != "hithere" {
		t.Fatalf("got %q, want %q", got, "hithere")
	}
}

func TestExecutorPrintsNumbarWithSixDecimals(t *testing.T) {
	got := run(t, "HAI 1.2\nI HAS A N\nN R 3.5\nVISIBLE PRODUKT OF N AN 2.0\nKTHXBYE\n")
	if got != "7.000000\n" {
		t.Fatalf("got %q, want %q", got, "7.000000\n")
	}
}

func TestExecutorEmptyProgramHaltsImmediately(t *testing.T) {
	got := run(t, "HAI 1.2\nKTHXBYE\n")
	if got != "" {
		t.Fatalf("got %q, want empty output", got)
	}
}

func TestExecutorStepsBeyondMaxStepsIsAnError(t *testing.T) {
	tokens := parser.Lex([]byte("HAI 1.2\nVISIBLE 1\nKTHXBYE\n"))
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	mod, err := codegen.Lower(prog, codegen.DefaultOptions())
	if err != nil {
		t.Fatalf("lower error: %v", err)
	}
	var out bytes.Buffer
	exec := vm.NewExecutor(mod, bytes.NewBufferString(""), &out)
	exec.MaxSteps = 0
	state, err := exec.Run()
	if err == nil {
		t.Fatalf("expected an error when the step budget is exhausted")
	}
	if state != vm.StateError {
		t.Fatalf("got state %v, want StateError", state)
	}
}
