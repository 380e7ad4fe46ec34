package codegen

import "github.com/lookbusy1344/arm-emulator/parser"

// symbol records where a declared variable (or a generator-introduced
// temporary) lives relative to the frame's base pointer, and the type it
// was declared with.
type symbol struct {
	offset int
	typ    parser.TokenType // TokenNumber/TokenNumbar/TokenTroof/TokenYarn/TokenNoob
}

// symbolTable is a flat, single-scope table: one scope per function with a
// counter for the next local offset. Declarations assign the next offset.
// The top-level entry uses the same discipline; there is no nested scoping
// in this language subset.
//
// Offsets count up from 0 rather than down from -1: this VM's frame base
// is set to the stack pointer's position right after EstablishStackFrame
// pushes the previous base (vm.Machine.EstablishStackFrame), so the first
// local physically lands exactly at base+0, the second at base+1, and so
// on — the ascending-from-base convention matches how a Go slice-backed
// stack actually grows, rather than the descending one a native
// downward-growing call stack would use (see DESIGN.md).
type symbolTable struct {
	vars     map[string]symbol
	nextSlot int // next offset to hand out, counts 0, 1, 2, ...
}

func newSymbolTable() *symbolTable {
	return &symbolTable{vars: make(map[string]symbol)}
}

// declare assigns the next local offset to name, overwriting any earlier
// declaration of the same name (the grammar permits re-declaration; nothing
// in the compiler makes it an error).
func (t *symbolTable) declare(name string, typ parser.TokenType) symbol {
	sym := symbol{offset: t.nextSlot, typ: typ}
	t.nextSlot++
	t.vars[name] = sym
	return sym
}

func (t *symbolTable) lookup(name string) (symbol, bool) {
	s, ok := t.vars[name]
	return s, ok
}

// localCount returns how many local slots (named and temporary) have been
// handed out so far: the locals_size an EndStackFrame closing this frame
// would take. Lowering emits no EndStackFrame, so nothing calls it.
func (t *symbolTable) localCount() int {
	return t.nextSlot
}
