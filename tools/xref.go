package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lookbusy1344/arm-emulator/parser"
)

// xrefEntry is one variable's declaration site plus every statement that
// subsequently reads or writes it, in source order.
type xrefEntry struct {
	declaredAt int
	refs       []int // byte offsets of each use
}

// Xref parses src and renders a declaration/use report, one variable per
// section, declaration offset first followed by every reference offset in
// source order.
func Xref(src []byte) (string, error) {
	tokens := parser.Lex(src)
	prog, errs := parser.Parse(tokens)
	if len(errs) != 0 {
		return "", fmt.Errorf("parse error: %w", errs)
	}

	entries := make(map[string]*xrefEntry)
	order := func(name string) *xrefEntry {
		e, ok := entries[name]
		if !ok {
			e = &xrefEntry{declaredAt: -1}
			entries[name] = e
		}
		return e
	}

	for _, stmt := range prog.Statements {
		switch s := stmt.(type) {
		case *parser.VarDecl:
			start, _ := s.Span()
			order(s.Name).declaredAt = start
			if s.Init != nil {
				xrefExpr(s.Init, order)
			}
		case *parser.VarAssign:
			start, _ := s.Span()
			order(s.Name).refs = append(order(s.Name).refs, start)
			xrefExpr(s.Value, order)
		case *parser.VarCast:
			start, _ := s.Span()
			order(s.Name).refs = append(order(s.Name).refs, start)
		case *parser.Gimmeh:
			start, _ := s.Span()
			order(s.Name).refs = append(order(s.Name).refs, start)
		case *parser.Visible:
			for _, a := range s.Args {
				xrefExpr(a, order)
			}
		case *parser.ExpressionStatement:
			xrefExpr(s.Expr, order)
		}
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		e := entries[name]
		fmt.Fprintf(&sb, "%s: declared at %d\n", name, e.declaredAt)
		for _, r := range e.refs {
			fmt.Fprintf(&sb, "  used at %d\n", r)
		}
	}
	return sb.String(), nil
}

func xrefExpr(e parser.Expression, order func(string) *xrefEntry) {
	switch ex := e.(type) {
	case *parser.VarRef:
		start, _ := ex.Span()
		order(ex.Name).refs = append(order(ex.Name).refs, start)
	case *parser.BinaryArith:
		xrefExpr(ex.Left, order)
		xrefExpr(ex.Right, order)
	case *parser.BinaryLogical:
		xrefExpr(ex.Left, order)
		xrefExpr(ex.Right, order)
	case *parser.Comparison:
		xrefExpr(ex.Left, order)
		xrefExpr(ex.Right, order)
	case *parser.UnaryNot:
		xrefExpr(ex.Operand, order)
	case *parser.Variadic:
		for _, o := range ex.Operands {
			xrefExpr(o, order)
		}
	case *parser.Smoosh:
		for _, o := range ex.Operands {
			xrefExpr(o, order)
		}
	case *parser.Cast:
		xrefExpr(ex.Operand, order)
	}
}
