package encoder

import (
	"fmt"
	"math"
)

// genPush loads the immediate float bits into xmm0 and calls runtime_push.
// The bit pattern is emitted as a 32-bit hex literal moved into a general
// register then reinterpreted via movd, since Intel-syntax GAS has no float
// immediate operand for movss.
func (g *genState) genPush(v float32) {
	fmt.Fprintf(g.sb, "    mov eax, 0x%08X\n", math.Float32bits(v))
	g.sb.WriteString("    movd xmm0, eax\n")
	g.sb.WriteString("    call runtime_push\n")
}

// genBinary calls the named runtime subroutine (runtime_add,
// runtime_subtract, runtime_multiply), which itself pops b then a and
// pushes f(a, b) -- see runtime.go.
func (g *genState) genBinary(subroutine string) {
	fmt.Fprintf(g.sb, "    call %s\n", subroutine)
}

func (g *genState) genDivide() {
	g.sb.WriteString("    call runtime_divide\n")
}

func (g *genState) genModulo() {
	g.sb.WriteString("    call runtime_modulo\n")
}

func (g *genState) genSign() {
	g.sb.WriteString("    call runtime_sign\n")
}
