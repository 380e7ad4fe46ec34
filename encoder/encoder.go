// Package encoder serializes an ir.Module into Intel-syntax x86-64
// assembly, the pluggable alternative target to the mandatory C one (if
// resolving Call to integer IDs instead of names becomes necessary, this
// is where that would happen). It is
// grounded directly on skx/math-compiler's compiler.gen* functions, which
// emit `.intel_syntax noprefix` assembly for an almost-identical stack-IR
// by concatenating one hand-written template per opcode; this package does
// the same, against this IR's opcode set and this language's runtime ABI
// instead of skx's fixed arithmetic-only instruction set.
package encoder

import (
	"fmt"
	"strings"

	"github.com/lookbusy1344/arm-emulator/ir"
)

// Generate serializes mod into a complete assembly source file. The
// resulting .s file expects to be handed to a C compiler driver (cc -x
// assembler, the same thing skx/math-compiler's main.go pipes its own
// output into) to be assembled and linked against libc, the build
// package's --cc flag.
func Generate(mod *ir.Module) (string, error) {
	stackSize := mod.Entry.StackSize
	if stackSize <= 0 {
		stackSize = defaultStackSize
	}
	heapSize := mod.Entry.HeapSize
	if heapSize <= 0 {
		heapSize = defaultHeapSize
	}

	var sb strings.Builder
	sb.WriteString(runtimePreamble(stackSize, heapSize))

	gs := &genState{sb: &sb}
	for _, fn := range mod.Functions {
		sb.WriteString(fmt.Sprintf("\nfn_%s:\n", asmName(fn.Name)))
		if err := gs.emitBody(fn.Body); err != nil {
			return "", fmt.Errorf("function %q: %w", fn.Name, err)
		}
		sb.WriteString("    ret\n")
	}

	sb.WriteString("\nmain:\n")
	sb.WriteString("    push rbp\n")
	if err := gs.emitBody(mod.Entry.Body); err != nil {
		return "", fmt.Errorf("entry: %w", err)
	}
	sb.WriteString("    pop rbp\n    xor eax, eax\n    ret\n")

	return sb.String(), nil
}

// asmName sanitizes a LOLCODE identifier into a legal assembly label
// fragment. This grammar's identifiers are already alphanumeric-plus-
// underscore, so this is a defensive pass-through rather than a real
// transliteration (see targets/cvm's cName, which does the same for C).
func asmName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}

// genState carries the label counter across recursive emitBody calls, so
// nested while loops reached through different BeginWhile/EndWhile slices
// still get globally unique labels.
type genState struct {
	sb      *strings.Builder
	labelID int
}

func (g *genState) nextLabel() int {
	g.labelID++
	return g.labelID
}

// emitBody writes one block of assembly per ir.Statement in body, resolving
// BeginWhile/EndWhile pairs into a real loop with jump labels rather than
// the scan-at-runtime approach vm.Executor uses, since the whole body is
// known statically here (the same structural choice targets/cvm makes).
func (g *genState) emitBody(body []ir.Statement) error {
	i := 0
	for i < len(body) {
		stmt := body[i]
		switch stmt.Op {
		case ir.Push:
			g.genPush(stmt.Number)
		case ir.Add:
			g.genBinary("runtime_add")
		case ir.Subtract:
			g.genBinary("runtime_subtract")
		case ir.Multiply:
			g.genBinary("runtime_multiply")
		case ir.Divide:
			g.genDivide()
		case ir.Modulo:
			g.genModulo()
		case ir.Sign:
			g.genSign()
		case ir.Allocate:
			g.genAllocate()
		case ir.Free:
			g.genFree()
		case ir.Store:
			g.genStore()
		case ir.Load:
			g.genLoad()
		case ir.Copy:
			g.genCopy()
		case ir.Mov:
			g.genMov()
		case ir.LoadBasePtr:
			g.genLoadBasePtr()
		case ir.EstablishStackFrame:
			g.genEstablishStackFrame()
		case ir.EndStackFrame:
			g.genEndStackFrame(stmt.ArgSize, stmt.LocalsSize)
		case ir.SetReturnRegister:
			g.genSetReturnRegister()
		case ir.AccessReturnRegister:
			g.genAccessReturnRegister()
		case ir.Call:
			fmt.Fprintf(g.sb, "    call fn_%s\n", asmName(stmt.Name))
		case ir.CallForeign:
			label, ok := foreignLabels[stmt.Name]
			if !ok {
				return &unsupportedOpError{op: "CallForeign:" + stmt.Name}
			}
			fmt.Fprintf(g.sb, "    call %s\n", label)
		case ir.Hook, ir.RefHook:
			g.sb.WriteString("    # debugger hook: no effect on generated code\n")
		case ir.Halt:
			g.sb.WriteString("    mov edi, 0\n    call exit\n")
		case ir.BeginWhile:
			end, err := matchingEndWhile(body, i)
			if err != nil {
				return err
			}
			if err := g.genWhile(body[i+1 : end]); err != nil {
				return err
			}
			i = end + 1
			continue
		case ir.EndWhile:
			return fmt.Errorf("EndWhile at %d has no matching BeginWhile", i)
		default:
			return &unsupportedOpError{op: stmt.Op.String()}
		}
		i++
	}
	return nil
}

// matchingEndWhile mirrors vm.matchingEndWhile and targets/cvm's copy of
// it: it finds the EndWhile that closes the BeginWhile at index start,
// accounting for nesting.
func matchingEndWhile(body []ir.Statement, start int) (int, error) {
	depth := 0
	for i := start; i < len(body); i++ {
		switch body[i].Op {
		case ir.BeginWhile:
			depth++
		case ir.EndWhile:
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("BeginWhile at %d has no matching EndWhile", start)
}
