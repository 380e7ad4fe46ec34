package tools

import (
	"fmt"

	"github.com/lookbusy1344/arm-emulator/parser"
)

// LintLevel is an issue's severity.
type LintLevel int

const (
	LintError LintLevel = iota
	LintWarning
)

func (l LintLevel) String() string {
	if l == LintError {
		return "error"
	}
	return "warning"
}

// LintIssue is a single static-analysis finding, formatted to match the
// CLI's path:start..end: message diagnostic shape.
type LintIssue struct {
	Level   LintLevel
	Start   int
	End     int
	Message string
	Code    string // UNDECLARED_VAR, UNUSED_VAR
}

func (i LintIssue) String() string {
	return fmt.Sprintf("%d..%d: %s: %s [%s]", i.Start, i.End, i.Level, i.Message, i.Code)
}

// Lint parses src and reports: references to (or assignments/casts/GIMMEH
// into) undeclared variables, and variables declared but never read. It
// returns one string per issue, prefixed with path the way the compiler's
// own diagnostics are.
func Lint(path string, src []byte) ([]string, error) {
	tokens := parser.Lex(src)
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		return nil, fmt.Errorf("parse error: %w", errs)
	}

	l := &linter{declared: make(map[string]bool), used: make(map[string]bool), declSpan: make(map[string][2]int)}
	issues := l.check(prog)

	out := make([]string, len(issues))
	for i, issue := range issues {
		out[i] = fmt.Sprintf("%s:%s", path, issue)
	}
	return out, nil
}

type linter struct {
	declared map[string]bool
	used     map[string]bool
	declSpan map[string][2]int
	issues   []LintIssue
}

func (l *linter) check(prog *parser.Program) []LintIssue {
	for _, stmt := range prog.Statements {
		l.checkStatement(stmt)
	}

	for name, span := range l.declSpan {
		if !l.used[name] {
			l.issues = append(l.issues, LintIssue{
				Level: LintWarning, Start: span[0], End: span[1],
				Message: fmt.Sprintf("variable %q is declared but never used", name), Code: "UNUSED_VAR",
			})
		}
	}
	return l.issues
}

func (l *linter) checkStatement(stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.ProgramEnd:
		// nothing to check
	case *parser.VarDecl:
		start, end := s.Span()
		l.declared[s.Name] = true
		l.declSpan[s.Name] = [2]int{start, end}
		if s.Init != nil {
			l.checkExpr(s.Init)
		}
	case *parser.VarAssign:
		start, end := s.Span()
		l.requireDeclared(s.Name, start, end)
		l.checkExpr(s.Value)
	case *parser.VarCast:
		start, end := s.Span()
		l.requireDeclared(s.Name, start, end)
	case *parser.Gimmeh:
		start, end := s.Span()
		l.requireDeclared(s.Name, start, end)
		l.used[s.Name] = true
	case *parser.Visible:
		for _, a := range s.Args {
			l.checkExpr(a)
		}
	case *parser.ExpressionStatement:
		l.checkExpr(s.Expr)
	}
}

func (l *linter) requireDeclared(name string, start, end int) {
	if !l.declared[name] {
		l.issues = append(l.issues, LintIssue{
			Level: LintError, Start: start, End: end,
			Message: fmt.Sprintf("%q is not declared", name), Code: "UNDECLARED_VAR",
		})
	}
}

func (l *linter) checkExpr(e parser.Expression) {
	switch ex := e.(type) {
	case *parser.VarRef:
		l.used[ex.Name] = true
		if !l.declared[ex.Name] {
			start, end := ex.Span()
			l.issues = append(l.issues, LintIssue{
				Level: LintError, Start: start, End: end,
				Message: fmt.Sprintf("%q is not declared", ex.Name), Code: "UNDECLARED_VAR",
			})
		}
	case *parser.BinaryArith:
		l.checkExpr(ex.Left)
		l.checkExpr(ex.Right)
	case *parser.BinaryLogical:
		l.checkExpr(ex.Left)
		l.checkExpr(ex.Right)
	case *parser.Comparison:
		l.checkExpr(ex.Left)
		l.checkExpr(ex.Right)
	case *parser.UnaryNot:
		l.checkExpr(ex.Operand)
	case *parser.Variadic:
		for _, o := range ex.Operands {
			l.checkExpr(o)
		}
	case *parser.Smoosh:
		for _, o := range ex.Operands {
			l.checkExpr(o)
		}
	case *parser.Cast:
		l.checkExpr(ex.Operand)
	}
}
