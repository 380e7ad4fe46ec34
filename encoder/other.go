package encoder

import "fmt"

// genEstablishStackFrame, genEndStackFrame: the calling-convention frame
// push/pop pair. EndStackFrame's argSize/localsSize are compile-time
// constants here (the codegen package resolves them before the serializer
// ever sees the IR), so they're passed to the runtime subroutine in
// registers rather than threaded through as generated immediates.
func (g *genState) genEstablishStackFrame() {
	g.sb.WriteString("    call runtime_establish_stack_frame\n")
}

func (g *genState) genEndStackFrame(argSize, localsSize int) {
	fmt.Fprintf(g.sb, "    mov edi, %d\n", argSize)
	fmt.Fprintf(g.sb, "    mov esi, %d\n", localsSize)
	g.sb.WriteString("    call runtime_end_stack_frame\n")
}

func (g *genState) genSetReturnRegister() {
	g.sb.WriteString("    call runtime_set_return_register\n")
}

func (g *genState) genAccessReturnRegister() {
	g.sb.WriteString("    call runtime_access_return_register\n")
}
