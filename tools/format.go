// Package tools holds source-level utilities built on top of the parser's
// AST: a pretty-printer, a static linter, and a declaration/use
// cross-referencer. All three walk parser.Program the same way codegen
// does, just to print or report instead of lowering to IR.
package tools

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/arm-emulator/parser"
)

// Format parses src and re-renders it in a canonical layout: one keyword
// form per line, operands separated by single spaces, and the operator
// keywords upper-cased the way the language's own keywords are written.
func Format(src []byte) (string, error) {
	tokens := parser.Lex(src)
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		return "", fmt.Errorf("parse error: %w", errs)
	}

	var sb strings.Builder
	sb.WriteString("HAI 1.2\n")
	for _, stmt := range prog.Statements {
		formatStatement(&sb, stmt)
	}
	return sb.String(), nil
}

func formatStatement(sb *strings.Builder, stmt parser.Statement) {
	switch s := stmt.(type) {
	case *parser.ProgramEnd:
		sb.WriteString("KTHXBYE\n")
	case *parser.VarDecl:
		sb.WriteString("I HAS A " + s.Name)
		if s.HasType {
			sb.WriteString(" ITZ " + s.Type.String())
		}
		sb.WriteString("\n")
		if s.Init != nil {
			sb.WriteString(s.Name + " R " + formatExpr(s.Init) + "\n")
		}
	case *parser.VarAssign:
		sb.WriteString(s.Name + " R " + formatExpr(s.Value) + "\n")
	case *parser.VarCast:
		sb.WriteString(s.Name + " IS NOW A " + s.Type.String() + "\n")
	case *parser.Visible:
		parts := make([]string, len(s.Args))
		for i, a := range s.Args {
			parts[i] = formatExpr(a)
		}
		line := "VISIBLE " + strings.Join(parts, " ")
		if s.SuppressNewline {
			line += "!"
		}
		sb.WriteString(line + "\n")
	case *parser.Gimmeh:
		sb.WriteString("GIMMEH " + s.Name + "\n")
	case *parser.ExpressionStatement:
		sb.WriteString(formatExpr(s.Expr) + "\n")
	default:
		sb.WriteString(fmt.Sprintf("; unformattable statement %T\n", stmt))
	}
}

func formatExpr(e parser.Expression) string {
	switch ex := e.(type) {
	case *parser.Literal:
		switch ex.Kind {
		case parser.LitNumber:
			return fmt.Sprintf("%d", ex.Number)
		case parser.LitNumbar:
			return fmt.Sprintf("%g", ex.Numbar)
		case parser.LitString:
			return `"` + ex.Str + `"`
		case parser.LitTroof:
			if ex.Troof {
				return "WIN"
			}
			return "FAIL"
		}
	case *parser.VarRef:
		return ex.Name
	case *parser.BinaryArith:
		return ex.Op.String() + " OF " + formatExpr(ex.Left) + " AN " + formatExpr(ex.Right)
	case *parser.BinaryLogical:
		return ex.Op.String() + " OF " + formatExpr(ex.Left) + " AN " + formatExpr(ex.Right)
	case *parser.Comparison:
		if ex.Op == parser.TokenSAEM {
			return "BOTH SAEM " + formatExpr(ex.Left) + " AN " + formatExpr(ex.Right)
		}
		return "DIFFRINT OF " + formatExpr(ex.Left) + " AN " + formatExpr(ex.Right)
	case *parser.UnaryNot:
		return "NOT " + formatExpr(ex.Operand)
	case *parser.Variadic:
		parts := make([]string, len(ex.Operands))
		for i, o := range ex.Operands {
			parts[i] = formatExpr(o)
		}
		return ex.Op.String() + " OF " + strings.Join(parts, " AN ") + " MKAY"
	case *parser.Smoosh:
		parts := make([]string, len(ex.Operands))
		for i, o := range ex.Operands {
			parts[i] = formatExpr(o)
		}
		return "SMOOSH " + strings.Join(parts, " AN ") + " MKAY"
	case *parser.Cast:
		return "MAEK " + formatExpr(ex.Operand) + " A " + ex.Type.String()
	}
	return fmt.Sprintf("<%T>", e)
}
