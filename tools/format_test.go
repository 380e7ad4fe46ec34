package tools

import (
	"strings"
	"testing"
)

func TestFormatEmitsHaiAndKthxbye(t *testing.T) {
	out, err := Format([]byte("HAI 1.2\nKTHXBYE\n"))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.HasPrefix(out, "HAI 1.2\n") {
		t.Errorf("expected output to start with HAI 1.2, got %q", out)
	}
	if !strings.HasSuffix(out, "KTHXBYE\n") {
		t.Errorf("expected output to end with KTHXBYE, got %q", out)
	}
}

func TestFormatRendersVarDeclWithType(t *testing.T) {
	out, err := Format([]byte("HAI 1.2\nI HAS A X ITZ NUMBER\nKTHXBYE\n"))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(out, "I HAS A X ITZ") {
		t.Errorf("expected declaration with type, got %q", out)
	}
}

func TestFormatRendersVisibleExpression(t *testing.T) {
	out, err := Format([]byte("HAI 1.2\nVISIBLE SUM OF 1 AN 2\nKTHXBYE\n"))
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if !strings.Contains(out, "VISIBLE SUM OF 1 AN 2") {
		t.Errorf("expected rendered VISIBLE line, got %q", out)
	}
}

func TestFormatReturnsErrorOnParseFailure(t *testing.T) {
	_, err := Format([]byte("HAI 1.2\nVISIBLE\nKTHXBYE\n"))
	if err == nil {
		t.Fatal("expected a parse error for VISIBLE with no operands")
	}
}
