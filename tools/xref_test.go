package tools

import (
	"strings"
	"testing"
)

func TestXrefReportsDeclarationAndUses(t *testing.T) {
	out, err := Xref([]byte("HAI 1.2\nI HAS A X ITZ NUMBER\nVISIBLE X\nX R SUM OF X AN 1\nKTHXBYE\n"))
	if err != nil {
		t.Fatalf("Xref: %v", err)
	}
	if !strings.Contains(out, "X: declared at") {
		t.Fatalf("expected a declaration line for X, got %q", out)
	}
	if strings.Count(out, "used at") < 2 {
		t.Fatalf("expected at least two uses of X, got %q", out)
	}
}

func TestXrefReturnsErrorOnParseFailure(t *testing.T) {
	_, err := Xref([]byte("HAI 1.2\nVISIBLE\nKTHXBYE\n"))
	if err == nil {
		t.Fatal("expected a parse error for VISIBLE with no operands")
	}
}
