package cvm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/arm-emulator/ir"
)

// Generate serializes mod into a complete, compilable C translation unit:
// the core/std runtime, one C function per ir.Function, and a main that
// builds the machine and runs the entry body. The caller is expected to
// hand the result to a C compiler (see loader.BuildBinary and the compile
// command's --cc flag).
func Generate(mod *ir.Module) (string, error) {
	var sb strings.Builder

	sb.WriteString("/* generated by the compile tool; do not edit by hand. */\n")
	sb.WriteString(coreRuntime)
	sb.WriteString(stdRuntime)

	for _, fn := range mod.Functions {
		sb.WriteString(fmt.Sprintf("\nstatic void fn_%s(machine *m) {\n", cName(fn.Name)))
		if err := emitBody(&sb, fn.Body); err != nil {
			return "", fmt.Errorf("function %q: %w", fn.Name, err)
		}
		sb.WriteString("}\n")
	}

	stackSize := mod.Entry.StackSize
	if stackSize <= 0 {
		stackSize = 1024
	}
	heapSize := mod.Entry.HeapSize
	if heapSize <= 0 {
		heapSize = 4096
	}

	sb.WriteString("\nint main(void) {\n")
	sb.WriteString(fmt.Sprintf("    machine *m = machine_new(%d, %d);\n", stackSize, heapSize))
	if err := emitBody(&sb, mod.Entry.Body); err != nil {
		return "", fmt.Errorf("entry: %w", err)
	}
	sb.WriteString("    machine_drop(m);\n")
	sb.WriteString("    return 0;\n}\n")

	return sb.String(), nil
}

// cName sanitizes a LOLCODE identifier into a legal C identifier fragment.
// This grammar's identifiers are already alphanumeric-plus-underscore, so
// this is a defensive pass-through rather than a real transliteration.
func cName(name string) string {
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

// emitBody writes one C statement per ir.Statement in body, resolving
// BeginWhile/EndWhile pairs into a C while loop rather than the
// scan-at-runtime approach vm.Executor uses, since the whole body is known
// statically here.
func emitBody(sb *strings.Builder, body []ir.Statement) error {
	i := 0
	for i < len(body) {
		stmt := body[i]
		switch stmt.Op {
		case ir.Push:
			sb.WriteString(fmt.Sprintf("    machine_push(m, %sf);\n", formatFloat(stmt.Number)))
		case ir.Add:
			sb.WriteString("    machine_add(m);\n")
		case ir.Subtract:
			sb.WriteString("    machine_subtract(m);\n")
		case ir.Multiply:
			sb.WriteString("    machine_multiply(m);\n")
		case ir.Divide:
			sb.WriteString("    machine_divide(m);\n")
		case ir.Modulo:
			sb.WriteString("    machine_modulo(m);\n")
		case ir.Sign:
			sb.WriteString("    machine_sign(m);\n")
		case ir.Allocate:
			sb.WriteString("    machine_allocate(m);\n")
		case ir.Free:
			sb.WriteString("    machine_free(m);\n")
		case ir.Store:
			sb.WriteString(fmt.Sprintf("    machine_store(m, %d);\n", stmt.Size))
		case ir.Load:
			sb.WriteString(fmt.Sprintf("    machine_load(m, %d);\n", stmt.Size))
		case ir.Copy:
			sb.WriteString("    machine_copy(m);\n")
		case ir.Mov:
			sb.WriteString("    machine_mov(m);\n")
		case ir.LoadBasePtr:
			sb.WriteString("    machine_load_base_ptr(m);\n")
		case ir.EstablishStackFrame:
			sb.WriteString("    machine_establish_stack_frame(m);\n")
		case ir.EndStackFrame:
			sb.WriteString(fmt.Sprintf("    machine_end_stack_frame(m, %d, %d);\n", stmt.ArgSize, stmt.LocalsSize))
		case ir.SetReturnRegister:
			sb.WriteString("    machine_set_return_register(m);\n")
		case ir.AccessReturnRegister:
			sb.WriteString("    machine_access_return_register(m);\n")
		case ir.Call:
			sb.WriteString(fmt.Sprintf("    fn_%s(m);\n", cName(stmt.Name)))
		case ir.CallForeign:
			fn, ok := foreignDispatch[stmt.Name]
			if !ok {
				return fmt.Errorf("unknown foreign function %q", stmt.Name)
			}
			sb.WriteString(fmt.Sprintf("    %s(m);\n", fn))
		case ir.Hook, ir.RefHook:
			// Debugger/tooling breakpoints: no effect on the compiled program.
		case ir.Halt:
			sb.WriteString("    machine_halt(m);\n")
		case ir.BeginWhile:
			end, err := matchingEndWhile(body, i)
			if err != nil {
				return err
			}
			sb.WriteString("    while (1) {\n")
			sb.WriteString("        if (machine_pop(m) == 0) break;\n")
			if err := emitBody(sb, body[i+1:end]); err != nil {
				return err
			}
			sb.WriteString("    }\n")
			i = end + 1
			continue
		case ir.EndWhile:
			return fmt.Errorf("EndWhile at %d has no matching BeginWhile", i)
		default:
			return fmt.Errorf("unhandled opcode %s", stmt.Op)
		}
		i++
	}
	return nil
}

// matchingEndWhile mirrors vm.matchingEndWhile: it finds the EndWhile that
// closes the BeginWhile at index start, accounting for nesting.
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

// formatFloat renders v the way a C float literal needs: enough digits to
// round-trip a float32, never in exponential form for the small integers
// and string-length counters this compiler actually emits.
func formatFloat(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	return s
}
