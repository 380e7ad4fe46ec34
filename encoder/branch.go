package encoder

import (
	"fmt"

	"github.com/lookbusy1344/arm-emulator/ir"
)

// genWhile emits a condition-checked loop for the statements between a
// BeginWhile/EndWhile pair: pop the just-computed condition, break out if
// it's zero, otherwise run body and loop back to check again -- the same
// "while (1) { if (pop() == 0) break; ... }" shape targets/cvm compiles
// BeginWhile/EndWhile into, translated into jump labels instead of a C
// loop construct.
func (g *genState) genWhile(body []ir.Statement) error {
	id := g.nextLabel()
	fmt.Fprintf(g.sb, ".Lwhile%d:\n", id)
	g.sb.WriteString("    call runtime_pop\n")
	g.sb.WriteString("    xorps xmm1, xmm1\n")
	g.sb.WriteString("    ucomiss xmm0, xmm1\n")
	fmt.Fprintf(g.sb, "    je .Lend%d\n", id)
	if err := g.emitBody(body); err != nil {
		return err
	}
	fmt.Fprintf(g.sb, "    jmp .Lwhile%d\n", id)
	fmt.Fprintf(g.sb, ".Lend%d:\n", id)
	return nil
}
