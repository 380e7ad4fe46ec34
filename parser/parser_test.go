package parser_test

import (
	"testing"

	"github.com/lookbusy1344/arm-emulator/parser"
)

func parseSource(t *testing.T, src string) (*parser.Program, parser.ErrorList) {
	t.Helper()
	tokens := parser.Lex([]byte(src))
	return parser.Parse(tokens)
}

func TestParseEmptyProgram(t *testing.T) {
	prog, errs := parseSource(t, "HAI 1.2\nKTHXBYE\n")
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("expected exactly the ProgramEnd statement, got %d", len(prog.Statements))
	}
	if _, ok := prog.Statements[0].(*parser.ProgramEnd); !ok {
		t.Fatalf("expected ProgramEnd, got %T", prog.Statements[0])
	}
}

func TestParseRejectsWrongVersion(t *testing.T) {
	_, errs := parseSource(t, "HAI 1.3\nKTHXBYE\n")
	if len(errs) == 0 {
		t.Fatalf("expected an error for a non-1.2 version literal")
	}
}

func TestParseVarDecl(t *testing.T) {
	prog, errs := parseSource(t, "HAI 1.2\nI HAS A x ITZ NUMBER\nKTHXBYE\n")
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	decl, ok := prog.Statements[0].(*parser.VarDecl)
	if !ok {
		t.Fatalf("expected VarDecl, got %T", prog.Statements[0])
	}
	if decl.Name != "x" || !decl.HasType || decl.Type != parser.TokenNumber {
		t.Fatalf("unexpected decl: %+v", decl)
	}
}

func TestParseDeclarationWithInitializer(t *testing.T) {
	prog, errs := parseSource(t, "HAI 1.2\nI HAS A x\nR 5\nKTHXBYE\n")
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("expected the bare R to merge into the preceding decl, got %d statements", len(prog.Statements))
	}
	decl, ok := prog.Statements[0].(*parser.VarDecl)
	if !ok {
		t.Fatalf("expected VarDecl, got %T", prog.Statements[0])
	}
	if decl.Init == nil {
		t.Fatalf("expected decl to carry an initializer")
	}
	lit, ok := decl.Init.(*parser.Literal)
	if !ok || lit.Kind != parser.LitNumber || lit.Number != 5 {
		t.Fatalf("unexpected initializer: %+v", decl.Init)
	}
}

func TestParseSumOfMissingANReportsOneError(t *testing.T) {
	_, errs := parseSource(t, "HAI 1.2\nSUM OF 1\nKTHXBYE\n")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	if want := "Expected AN keyword for SUM"; errs[0].Message != want {
		t.Fatalf("expected %q, got %q", want, errs[0].Message)
	}
}

func TestParseUnterminatedStringReportsExpectedValidStatement(t *testing.T) {
	_, errs := parseSource(t, "HAI 1.2\n\"unterminated\nKTHXBYE\n")
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	if want := "Expected valid statement"; errs[0].Message != want {
		t.Fatalf("expected %q, got %q", want, errs[0].Message)
	}
}

func TestParseBothSaemVsBothOfDisambiguation(t *testing.T) {
	prog, errs := parseSource(t, "HAI 1.2\nVISIBLE BOTH SAEM 1 AN 1\nVISIBLE BOTH OF WIN AN FAIL\nKTHXBYE\n")
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	v1 := prog.Statements[0].(*parser.Visible)
	if _, ok := v1.Args[0].(*parser.Comparison); !ok {
		t.Fatalf("expected BOTH SAEM to parse as Comparison, got %T", v1.Args[0])
	}
	v2 := prog.Statements[1].(*parser.Visible)
	if _, ok := v2.Args[0].(*parser.BinaryLogical); !ok {
		t.Fatalf("expected BOTH OF to parse as BinaryLogical, got %T", v2.Args[0])
	}
}

func TestParseVisibleMultipleArgsAndBang(t *testing.T) {
	prog, errs := parseSource(t, "HAI 1.2\nVISIBLE \"a\" AN \"b\"!\nKTHXBYE\n")
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	v := prog.Statements[0].(*parser.Visible)
	if len(v.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(v.Args))
	}
	if !v.SuppressNewline {
		t.Fatalf("expected trailing ! to suppress the newline")
	}
}

func TestParseAllOfVariadic(t *testing.T) {
	prog, errs := parseSource(t, "HAI 1.2\nVISIBLE ALL OF WIN AN WIN AN FAIL MKAY\nKTHXBYE\n")
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	v := prog.Statements[0].(*parser.Visible)
	variadic, ok := v.Args[0].(*parser.Variadic)
	if !ok {
		t.Fatalf("expected Variadic, got %T", v.Args[0])
	}
	if len(variadic.Operands) != 3 {
		t.Fatalf("expected 3 operands, got %d", len(variadic.Operands))
	}
}

func TestParseGimmeh(t *testing.T) {
	prog, errs := parseSource(t, "HAI 1.2\nI HAS A x\nGIMMEH x\nKTHXBYE\n")
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	g, ok := prog.Statements[1].(*parser.Gimmeh)
	if !ok || g.Name != "x" {
		t.Fatalf("unexpected statement: %+v", prog.Statements[1])
	}
}

func TestParseKTHXBYEMidProgram(t *testing.T) {
	prog, errs := parseSource(t, "HAI 1.2\nKTHXBYE\nI HAS A x\n")
	if len(errs) == 0 {
		t.Fatalf("expected an error for trailing tokens after KTHXBYE")
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("expected the program to still end cleanly at KTHXBYE, got %d statements", len(prog.Statements))
	}
}

func TestParseCast(t *testing.T) {
	prog, errs := parseSource(t, "HAI 1.2\nI HAS A x ITZ NUMBER\nx IS NOW A YARN\nKTHXBYE\n")
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
	cast, ok := prog.Statements[1].(*parser.VarCast)
	if !ok || cast.Name != "x" || cast.Type != parser.TokenYarn {
		t.Fatalf("unexpected statement: %+v", prog.Statements[1])
	}
}
