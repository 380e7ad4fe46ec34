// Package codegen lowers a parsed LOLCODE program into the stack-oriented
// IR the ir package defines, the way skx/math-compiler's
// compiler.makeinternalform walks a token list into a flat instruction
// list — generalized here to a real AST and a symbol table with
// base-pointer offsets.
package codegen

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/arm-emulator/ir"
	"github.com/lookbusy1344/arm-emulator/parser"
)

// Options configures the entry function's addressable memory and which
// EstablishStackFrame convention the emitted IR assumes.
type Options struct {
	Convention ir.FrameConvention
	StackSize  int
	HeapSize   int
}

// DefaultOptions returns the sizes the CLI and config package fall back to
// when nothing overrides them.
func DefaultOptions() Options {
	return Options{Convention: ir.BaseEqualsTop, StackSize: 1024, HeapSize: 4096}
}

// Generator walks a Program and accumulates the entry function's IR body.
// This language subset has no user-definable functions (see DESIGN.md), so
// there is only ever one body being built.
type Generator struct {
	symtab      *symbolTable
	body        []ir.Statement
	tempCounter int
}

// Lower runs the code generator over prog, which must already be error-free
// (lowering runs only after parsing succeeds). It returns a fatal error on
// the first structural problem it finds (undeclared variable, malformed
// cast target) rather than trying to recover and keep going.
func Lower(prog *parser.Program, opts Options) (*ir.Module, error) {
	g := &Generator{symtab: newSymbolTable()}
	mod, _, err := g.run(prog, opts, false)
	return mod, err
}

// VarSymbol describes where a declared variable lives relative to a frame's
// base pointer and what type it was last declared or cast to. It's the
// external view of the generator's own symbol, for tools that need to
// inspect a running program's frame rather than just generate code for it.
type VarSymbol struct {
	Offset int
	Type   parser.TokenType
}

// DebugInfo is everything a source-level tool needs that plain IR doesn't
// carry: where each variable lives, and where each top-level statement's
// code begins in the entry body.
type DebugInfo struct {
	// Symbols maps every user-declared variable's name to its frame slot.
	// Generator-introduced temporaries are not included.
	Symbols map[string]VarSymbol

	// StatementStarts holds, for each prog.Statements[i], the index into
	// the returned module's entry body where that statement's own code
	// begins (after whatever EstablishStackFrame prologue was prepended).
	// Same length as prog.Statements.
	StatementStarts []int
}

// LowerWithSymbols lowers prog exactly as Lower does, additionally
// returning debug info a tool can use to map source statements to IR
// positions and variable names to frame slots. Generator-introduced
// temporaries (named "$tN", never a valid LOLCODE identifier) are left out
// of DebugInfo.Symbols, since they're not addressable by source name. A
// debugger attached to the resulting module's execution uses this to
// resolve a variable name in a print or watch expression, and to turn a
// requested breakpoint line into the IR index to break before.
func LowerWithSymbols(prog *parser.Program, opts Options) (*ir.Module, *DebugInfo, error) {
	g := &Generator{symtab: newSymbolTable()}
	mod, starts, err := g.run(prog, opts, true)
	if err != nil {
		return nil, nil, err
	}
	symbols := make(map[string]VarSymbol, len(g.symtab.vars))
	for name, sym := range g.symtab.vars {
		if strings.HasPrefix(name, "$t") {
			continue
		}
		symbols[name] = VarSymbol{Offset: sym.offset, Type: sym.typ}
	}
	return mod, &DebugInfo{Symbols: symbols, StatementStarts: starts}, nil
}

func (g *Generator) run(prog *parser.Program, opts Options, trackStarts bool) (*ir.Module, []int, error) {
	var starts []int
	if trackStarts {
		starts = make([]int, 0, len(prog.Statements))
	}
	for _, stmt := range prog.Statements {
		if trackStarts {
			starts = append(starts, len(g.body))
		}
		if err := g.lowerStatement(stmt); err != nil {
			return nil, nil, err
		}
	}

	// A program with nothing but the end marker needs no frame at all --
	// it lowers to exactly [Halt].
	body := g.body
	prefixed := len(body) > 0
	if prefixed {
		body = append([]ir.Statement{{Op: ir.EstablishStackFrame}}, body...)
	}
	body = append(body, ir.Statement{Op: ir.Halt})

	if prefixed && trackStarts {
		for i := range starts {
			starts[i]++
		}
	}

	return &ir.Module{
		Entry: ir.Entry{
			StackSize: opts.StackSize,
			HeapSize:  opts.HeapSize,
			Body:      body,
		},
		Convention: opts.Convention,
	}, starts, nil
}

func (g *Generator) emit(s ir.Statement) { g.body = append(g.body, s) }

func (g *Generator) freshName() string {
	g.tempCounter++
	return fmt.Sprintf("$t%d", g.tempCounter)
}

// claimTop registers a new symbol at whatever slot naturally follows the
// previous one, without emitting anything — used right after some already-
// emitted sequence has left exactly one durable value sitting on the top of
// the frame (a freshly allocated pointer, a computed total, and so on).
func (g *Generator) claimTop(typ parser.TokenType) symbol {
	return g.symtab.declare(g.freshName(), typ)
}

// reserveZero claims a new slot and physically backs it with a zero cell -
// used for loop counters and other scratch values that start empty rather
// than inheriting whatever the last expression left behind.
func (g *Generator) reserveZero() symbol {
	sym := g.symtab.declare(g.freshName(), parser.TokenNumber)
	g.emit(ir.PushStmt(0))
	return sym
}

func (g *Generator) pushOffset(sym symbol) { g.emit(ir.PushStmt(float32(sym.offset))) }

// loadSym reads a frame slot's current value onto the top of the stack.
func (g *Generator) loadSym(sym symbol) {
	g.pushOffset(sym)
	g.emit(ir.Statement{Op: ir.Copy})
}

// storeSym writes the value currently on top of the stack into sym's slot,
// consuming it.
func (g *Generator) storeSym(sym symbol) {
	g.pushOffset(sym)
	g.emit(ir.Statement{Op: ir.Mov})
}

// pushAddrConst pushes a heap address: base's pointer, plus a compile-time
// constant offset, plus the current value of any extra slots (each added in
// turn). Used to address a byte within a length-prefixed string object.
func (g *Generator) pushAddrConst(base symbol, constOffset int, extras ...symbol) {
	g.loadSym(base)
	if constOffset != 0 {
		g.emit(ir.PushStmt(float32(constOffset)))
		g.emit(ir.Statement{Op: ir.Add})
	}
	for _, e := range extras {
		g.loadSym(e)
		g.emit(ir.Statement{Op: ir.Add})
	}
}

func (g *Generator) heapLoadAt(base symbol, constOffset int, extras ...symbol) {
	g.pushAddrConst(base, constOffset, extras...)
	g.emit(ir.Statement{Op: ir.Load, Size: 1})
}

func (g *Generator) heapStoreAt(base symbol, constOffset int, extras []symbol, valueFn func()) {
	valueFn()
	g.pushAddrConst(base, constOffset, extras...)
	g.emit(ir.Statement{Op: ir.Store, Size: 1})
}

// copyBytes copies length bytes from src's data region (src+1..) into dst's
// data region starting at dstOffset (dst+1+dstOffset..), one cell at a
// time, bounded by a runtime counter rather than a compile-time constant —
// the only place this compiler's generated IR uses BeginWhile/EndWhile,
// since SMOOSH operands may be variables whose length isn't known until
// the program runs.
func (g *Generator) copyBytes(src, dst, length, dstOffset symbol) {
	i := g.reserveZero()
	testCond := func() {
		g.loadSym(length)
		g.loadSym(i)
		g.emit(ir.Statement{Op: ir.Subtract})
		g.emit(ir.Statement{Op: ir.Sign})
	}

	testCond()
	g.emit(ir.Statement{Op: ir.BeginWhile})
	g.heapStoreAt(dst, 1, []symbol{dstOffset, i}, func() {
		g.heapLoadAt(src, 1, i)
	})
	g.loadSym(i)
	g.emit(ir.PushStmt(1))
	g.emit(ir.Statement{Op: ir.Add})
	g.storeSym(i)
	testCond()
	g.emit(ir.Statement{Op: ir.EndWhile})
}

func (g *Generator) lowerStatement(s parser.Statement) error {
	switch st := s.(type) {
	case *parser.VarDecl:
		return g.lowerVarDecl(st)
	case *parser.VarAssign:
		return g.lowerVarAssign(st)
	case *parser.VarCast:
		return g.lowerVarCast(st)
	case *parser.Visible:
		return g.lowerVisible(st)
	case *parser.Gimmeh:
		return g.lowerGimmeh(st)
	case *parser.ExpressionStatement:
		return g.lowerExpressionStatement(st)
	case *parser.ProgramEnd:
		return nil
	default:
		return fmt.Errorf("codegen: unsupported statement %T", s)
	}
}

// lowerVarDecl assigns the slot after lowering Init (when present) rather
// than before, so that any scratch slots Init's own lowering needs land
// below the declared variable instead of on top of it.
func (g *Generator) lowerVarDecl(d *parser.VarDecl) error {
	typ := d.Type
	if !d.HasType {
		typ = parser.TokenNoob
	}
	if d.Init != nil {
		if !d.HasType {
			typ = g.inferType(d.Init)
		}
		if err := g.lowerExpr(d.Init); err != nil {
			return err
		}
		g.symtab.declare(d.Name, typ)
		return nil
	}
	g.symtab.declare(d.Name, typ)
	g.emit(ir.PushStmt(0))
	return nil
}

func (g *Generator) lowerVarAssign(a *parser.VarAssign) error {
	sym, ok := g.symtab.lookup(a.Name)
	if !ok {
		return fmt.Errorf("assignment to undeclared variable %q", a.Name)
	}
	if err := g.lowerExpr(a.Value); err != nil {
		return err
	}
	g.storeSym(sym)
	return nil
}

func (g *Generator) lowerVarCast(c *parser.VarCast) error {
	sym, ok := g.symtab.lookup(c.Name)
	if !ok {
		return fmt.Errorf("cast of undeclared variable %q", c.Name)
	}
	g.loadSym(sym)
	if err := g.lowerConversion(sym.typ, c.Type); err != nil {
		return err
	}
	g.storeSym(sym)
	sym.typ = c.Type
	g.symtab.vars[c.Name] = sym
	return nil
}

func (g *Generator) printForeignFor(t parser.TokenType) string {
	switch t {
	case parser.TokenNumber:
		return "prn"
	case parser.TokenNumbar:
		return "prh"
	case parser.TokenYarn:
		return "prs"
	case parser.TokenTroof:
		return "prc"
	default:
		return "prs"
	}
}

func (g *Generator) lowerVisible(v *parser.Visible) error {
	for _, arg := range v.Args {
		t := g.inferType(arg)
		if err := g.lowerExpr(arg); err != nil {
			return err
		}
		g.emit(ir.CallForeignStmt(g.printForeignFor(t)))
	}
	if !v.SuppressNewline {
		g.emit(ir.CallForeignStmt("prend"))
	}
	return nil
}

func (g *Generator) lowerGimmeh(gm *parser.Gimmeh) error {
	sym, ok := g.symtab.lookup(gm.Name)
	if !ok {
		return fmt.Errorf("GIMMEH into undeclared variable %q", gm.Name)
	}
	g.emit(ir.CallForeignStmt("read_string"))
	g.storeSym(sym)
	sym.typ = parser.TokenYarn
	g.symtab.vars[gm.Name] = sym
	return nil
}

func (g *Generator) lowerExpressionStatement(s *parser.ExpressionStatement) error {
	if err := g.lowerExpr(s.Expr); err != nil {
		return err
	}
	// The value is discarded; claimTop just names the slot it already
	// occupies so later declarations don't collide with it.
	g.claimTop(parser.TokenNoob)
	return nil
}

func (g *Generator) lowerExpr(e parser.Expression) error {
	switch n := e.(type) {
	case *parser.Literal:
		return g.lowerLiteral(n)
	case *parser.VarRef:
		return g.lowerVarRef(n)
	case *parser.BinaryArith:
		return g.lowerBinaryArith(n)
	case *parser.BinaryLogical:
		return g.lowerBinaryLogical(n)
	case *parser.UnaryNot:
		return g.lowerUnaryNot(n)
	case *parser.Variadic:
		return g.lowerVariadic(n)
	case *parser.Comparison:
		return g.lowerComparison(n)
	case *parser.Smoosh:
		return g.lowerSmoosh(n)
	case *parser.Cast:
		return g.lowerCast(n)
	default:
		return fmt.Errorf("codegen: unsupported expression %T", e)
	}
}

func (g *Generator) lowerLiteral(lit *parser.Literal) error {
	switch lit.Kind {
	case parser.LitNumber:
		g.emit(ir.PushStmt(float32(lit.Number)))
	case parser.LitNumbar:
		g.emit(ir.PushStmt(lit.Numbar))
	case parser.LitTroof:
		if lit.Troof {
			g.emit(ir.PushStmt(1))
		} else {
			g.emit(ir.PushStmt(0))
		}
	case parser.LitString:
		return g.lowerStringLiteral(lit)
	default:
		return fmt.Errorf("codegen: unsupported literal kind %v", lit.Kind)
	}
	return nil
}

// lowerStringLiteral allocates length+1 heap cells: cell 0 holds the byte
// count, cells 1..length hold the bytes themselves (one byte value per
// cell — see DESIGN.md for why this compiler doesn't pack four bytes per
// float32 cell). The pointer left on the stack always addresses cell 0.
func (g *Generator) lowerStringLiteral(lit *parser.Literal) error {
	bytes := []byte(lit.Str)
	n := len(bytes)

	g.emit(ir.PushStmt(float32(n + 1)))
	g.emit(ir.Statement{Op: ir.Allocate})
	ptr := g.claimTop(parser.TokenYarn)

	g.heapStoreAt(ptr, 0, nil, func() { g.emit(ir.PushStmt(float32(n))) })
	for i, b := range bytes {
		idx := i + 1
		byteVal := b
		g.heapStoreAt(ptr, idx, nil, func() { g.emit(ir.PushStmt(float32(byteVal))) })
	}
	g.loadSym(ptr)
	return nil
}

func (g *Generator) lowerVarRef(v *parser.VarRef) error {
	sym, ok := g.symtab.lookup(v.Name)
	if !ok {
		return fmt.Errorf("reference to undeclared variable %q", v.Name)
	}
	g.loadSym(sym)
	return nil
}

var arithOp = map[parser.TokenType]ir.Op{
	parser.TokenSUM:      ir.Add,
	parser.TokenDIFF:     ir.Subtract,
	parser.TokenPRODUKT:  ir.Multiply,
	parser.TokenQUOSHUNT: ir.Divide,
	parser.TokenMOD:      ir.Modulo,
}

// lowerBinaryArith pushes the left operand then the right, so that a
// two-operand opcode popping top-then-next computes left OP right directly
// (Subtract/Divide/Modulo are not commutative, so this order is load-
// bearing — see DESIGN.md).
func (g *Generator) lowerBinaryArith(b *parser.BinaryArith) error {
	if b.Op == parser.TokenBIGGR || b.Op == parser.TokenSMALLR {
		return g.lowerMaxMin(b.Left, b.Right, b.Op == parser.TokenBIGGR)
	}
	if err := g.lowerExpr(b.Left); err != nil {
		return err
	}
	if err := g.lowerExpr(b.Right); err != nil {
		return err
	}
	op, ok := arithOp[b.Op]
	if !ok {
		return fmt.Errorf("codegen: unsupported arithmetic operator %s", b.Op)
	}
	g.emit(ir.Statement{Op: op})
	return nil
}

// lowerMaxMin has no dedicated IR opcode to reach for, so it computes
// max(a,b) = (a+b+|a-b|)/2 and min(a,b) = (a+b-|a-b|)/2 directly, re-
// lowering each operand as many times as the formula needs it rather than
// stashing it in a temporary slot — operands in this language are pure, so
// re-evaluating one costs code size, not correctness.
func (g *Generator) lowerMaxMin(left, right parser.Expression, isMax bool) error {
	if err := g.lowerExpr(left); err != nil {
		return err
	}
	if err := g.lowerExpr(right); err != nil {
		return err
	}
	g.emit(ir.Statement{Op: ir.Add}) // sum

	if err := g.lowerExpr(left); err != nil {
		return err
	}
	if err := g.lowerExpr(right); err != nil {
		return err
	}
	g.emit(ir.Statement{Op: ir.Subtract}) // |a-b| needs sign(diff) and diff both
	if err := g.lowerExpr(left); err != nil {
		return err
	}
	if err := g.lowerExpr(right); err != nil {
		return err
	}
	g.emit(ir.Statement{Op: ir.Subtract})
	g.emit(ir.Statement{Op: ir.Sign})
	g.emit(ir.Statement{Op: ir.Multiply}) // stack: sum, |diff|

	if isMax {
		g.emit(ir.Statement{Op: ir.Add})
	} else {
		g.emit(ir.Statement{Op: ir.Subtract})
	}
	g.emit(ir.PushStmt(2))
	g.emit(ir.Statement{Op: ir.Divide})
	return nil
}

func (g *Generator) lowerBinaryLogical(b *parser.BinaryLogical) error {
	switch b.Op {
	case parser.TokenBOTH:
		if err := g.lowerExpr(b.Left); err != nil {
			return err
		}
		g.emit(ir.Statement{Op: ir.Sign})
		if err := g.lowerExpr(b.Right); err != nil {
			return err
		}
		g.emit(ir.Statement{Op: ir.Sign})
		g.emit(ir.Statement{Op: ir.Multiply})
	case parser.TokenEITHER:
		if err := g.lowerExpr(b.Left); err != nil {
			return err
		}
		g.emit(ir.Statement{Op: ir.Sign})
		if err := g.lowerExpr(b.Right); err != nil {
			return err
		}
		g.emit(ir.Statement{Op: ir.Sign})
		g.emit(ir.Statement{Op: ir.Add})
		g.emit(ir.Statement{Op: ir.Sign})
	case parser.TokenWON:
		// a XOR b = sign(a)+sign(b) - 2*sign(a)*sign(b); each side is
		// lowered twice since there is no opcode to duplicate a value.
		if err := g.lowerExpr(b.Left); err != nil {
			return err
		}
		g.emit(ir.Statement{Op: ir.Sign})
		if err := g.lowerExpr(b.Right); err != nil {
			return err
		}
		g.emit(ir.Statement{Op: ir.Sign})
		g.emit(ir.Statement{Op: ir.Add})

		if err := g.lowerExpr(b.Left); err != nil {
			return err
		}
		g.emit(ir.Statement{Op: ir.Sign})
		if err := g.lowerExpr(b.Right); err != nil {
			return err
		}
		g.emit(ir.Statement{Op: ir.Sign})
		g.emit(ir.Statement{Op: ir.Multiply})
		g.emit(ir.PushStmt(2))
		g.emit(ir.Statement{Op: ir.Multiply})
		g.emit(ir.Statement{Op: ir.Subtract})
	default:
		return fmt.Errorf("codegen: unsupported logical operator %s", b.Op)
	}
	return nil
}

func (g *Generator) lowerUnaryNot(u *parser.UnaryNot) error {
	g.emit(ir.PushStmt(1))
	if err := g.lowerExpr(u.Operand); err != nil {
		return err
	}
	g.emit(ir.Statement{Op: ir.Sign})
	g.emit(ir.Statement{Op: ir.Subtract})
	return nil
}

// lowerVariadic folds ALL OF/ANY OF left to right unconditionally. It does
// not short-circuit: every operand in this grammar is a pure expression
// (GIMMEH/VISIBLE are statements, unreachable from an expression position),
// so an unconditional fold is observably identical to a short-circuiting
// one and avoids emitting BeginWhile/EndWhile around code whose slot
// allocations would need to exist whether or not the body runs.
func (g *Generator) lowerVariadic(v *parser.Variadic) error {
	if len(v.Operands) == 0 {
		return fmt.Errorf("codegen: variadic expression has no operands")
	}
	if err := g.lowerExpr(v.Operands[0]); err != nil {
		return err
	}
	g.emit(ir.Statement{Op: ir.Sign})
	for _, operand := range v.Operands[1:] {
		if err := g.lowerExpr(operand); err != nil {
			return err
		}
		g.emit(ir.Statement{Op: ir.Sign})
		switch v.Op {
		case parser.TokenALL:
			g.emit(ir.Statement{Op: ir.Multiply})
		case parser.TokenANY:
			g.emit(ir.Statement{Op: ir.Add})
			g.emit(ir.Statement{Op: ir.Sign})
		default:
			return fmt.Errorf("codegen: unsupported variadic operator %s", v.Op)
		}
	}
	return nil
}

// lowerComparison computes sign(|left-right|) — 0 when equal, 1 when
// different — then, for BOTH SAEM, complements it to 1-that.
func (g *Generator) lowerComparison(c *parser.Comparison) error {
	if c.Op == parser.TokenSAEM {
		g.emit(ir.PushStmt(1))
	}
	if err := g.lowerExpr(c.Left); err != nil {
		return err
	}
	if err := g.lowerExpr(c.Right); err != nil {
		return err
	}
	g.emit(ir.Statement{Op: ir.Subtract})
	if err := g.lowerExpr(c.Left); err != nil {
		return err
	}
	if err := g.lowerExpr(c.Right); err != nil {
		return err
	}
	g.emit(ir.Statement{Op: ir.Subtract})
	g.emit(ir.Statement{Op: ir.Sign})
	g.emit(ir.Statement{Op: ir.Multiply})
	g.emit(ir.Statement{Op: ir.Sign})
	if c.Op == parser.TokenSAEM {
		g.emit(ir.Statement{Op: ir.Subtract})
	}
	return nil
}

// lowerToYarn lowers e and converts its result to YARN if it isn't already.
func (g *Generator) lowerToYarn(e parser.Expression) error {
	t := g.inferType(e)
	if err := g.lowerExpr(e); err != nil {
		return err
	}
	return g.lowerConversion(t, parser.TokenYarn)
}

// concat allocates a fresh heap string holding a's bytes followed by b's.
func (g *Generator) concat(a, b symbol) symbol {
	g.heapLoadAt(a, 0)
	lenA := g.claimTop(parser.TokenNumber)
	g.heapLoadAt(b, 0)
	lenB := g.claimTop(parser.TokenNumber)

	g.loadSym(lenA)
	g.loadSym(lenB)
	g.emit(ir.Statement{Op: ir.Add})
	total := g.claimTop(parser.TokenNumber)

	g.loadSym(total)
	g.emit(ir.PushStmt(1))
	g.emit(ir.Statement{Op: ir.Add})
	g.emit(ir.Statement{Op: ir.Allocate})
	dst := g.claimTop(parser.TokenYarn)

	g.heapStoreAt(dst, 0, nil, func() { g.loadSym(total) })

	zero := g.reserveZero()
	g.copyBytes(a, dst, lenA, zero)
	g.copyBytes(b, dst, lenB, lenA)
	return dst
}

// lowerSmoosh folds its operands pairwise through concat, the way a chain
// of binary concatenations would.
func (g *Generator) lowerSmoosh(s *parser.Smoosh) error {
	if len(s.Operands) == 0 {
		return fmt.Errorf("codegen: SMOOSH requires at least one operand")
	}
	if err := g.lowerToYarn(s.Operands[0]); err != nil {
		return err
	}
	acc := g.claimTop(parser.TokenYarn)
	for _, operand := range s.Operands[1:] {
		if err := g.lowerToYarn(operand); err != nil {
			return err
		}
		rhs := g.claimTop(parser.TokenYarn)
		acc = g.concat(acc, rhs)
	}
	g.loadSym(acc)
	return nil
}

func (g *Generator) lowerCast(c *parser.Cast) error {
	from := g.inferType(c.Operand)
	if err := g.lowerExpr(c.Operand); err != nil {
		return err
	}
	return g.lowerConversion(from, c.Type)
}

// lowerConversion emits whatever turns a value of type from into type to.
// TROOF cells already share NUMBER's 0/1 float representation, so a TROOF
// source is treated as NUMBER for the purposes of this table; a TROOF
// target is produced inline via Sign rather than a foreign call.
func (g *Generator) lowerConversion(from, to parser.TokenType) error {
	if from == to {
		return nil
	}
	effectiveFrom := from
	if from == parser.TokenTroof {
		effectiveFrom = parser.TokenNumber
	}
	if to == parser.TokenTroof {
		if from == parser.TokenYarn || from == parser.TokenNoob {
			return fmt.Errorf("codegen: cannot cast %s to TROOF", from)
		}
		g.emit(ir.Statement{Op: ir.Sign})
		return nil
	}
	switch {
	case effectiveFrom == parser.TokenNumber && to == parser.TokenNumbar:
		g.emit(ir.CallForeignStmt("int_to_float"))
	case effectiveFrom == parser.TokenNumbar && to == parser.TokenNumber:
		g.emit(ir.CallForeignStmt("float_to_int"))
	case effectiveFrom == parser.TokenYarn && to == parser.TokenNumber:
		g.emit(ir.CallForeignStmt("string_to_int"))
	case effectiveFrom == parser.TokenYarn && to == parser.TokenNumbar:
		g.emit(ir.CallForeignStmt("string_to_float"))
	case effectiveFrom == parser.TokenNumber && to == parser.TokenYarn:
		g.emit(ir.CallForeignStmt("int_to_string"))
	case effectiveFrom == parser.TokenNumbar && to == parser.TokenYarn:
		g.emit(ir.CallForeignStmt("float_to_string"))
	default:
		return fmt.Errorf("codegen: cannot cast %s to %s", from, to)
	}
	return nil
}

func (g *Generator) inferType(e parser.Expression) parser.TokenType {
	switch n := e.(type) {
	case *parser.Literal:
		switch n.Kind {
		case parser.LitNumber:
			return parser.TokenNumber
		case parser.LitNumbar:
			return parser.TokenNumbar
		case parser.LitString:
			return parser.TokenYarn
		case parser.LitTroof:
			return parser.TokenTroof
		}
	case *parser.VarRef:
		if sym, ok := g.symtab.lookup(n.Name); ok {
			return sym.typ
		}
	case *parser.BinaryArith:
		lt := g.inferType(n.Left)
		rt := g.inferType(n.Right)
		if lt == parser.TokenNumbar || rt == parser.TokenNumbar {
			return parser.TokenNumbar
		}
		return parser.TokenNumber
	case *parser.BinaryLogical, *parser.UnaryNot, *parser.Variadic, *parser.Comparison:
		return parser.TokenTroof
	case *parser.Smoosh:
		return parser.TokenYarn
	case *parser.Cast:
		return n.Type
	}
	return parser.TokenNoob
}
