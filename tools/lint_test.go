package tools

import (
	"strings"
	"testing"
)

func TestLintFlagsUndeclaredVariable(t *testing.T) {
	issues, err := Lint("prog.lol", []byte("HAI 1.2\nVISIBLE X\nKTHXBYE\n"))
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if len(issues) == 0 || !strings.Contains(issues[0], "UNDECLARED_VAR") {
		t.Fatalf("expected an UNDECLARED_VAR issue, got %v", issues)
	}
}

func TestLintFlagsUnusedVariable(t *testing.T) {
	issues, err := Lint("prog.lol", []byte("HAI 1.2\nI HAS A X ITZ NUMBER\nKTHXBYE\n"))
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	found := false
	for _, i := range issues {
		if strings.Contains(i, "UNUSED_VAR") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an UNUSED_VAR issue, got %v", issues)
	}
}

func TestLintCleanProgramHasNoIssues(t *testing.T) {
	issues, err := Lint("prog.lol", []byte("HAI 1.2\nI HAS A X ITZ NUMBER\nVISIBLE X\nKTHXBYE\n"))
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}
