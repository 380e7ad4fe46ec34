package encoder

// genAllocate, genFree: the heap bump allocator (Allocate pops a cell count
// and pushes the base of a freshly reserved region; Free pops a pointer and
// rewinds the allocator to it).
func (g *genState) genAllocate() {
	g.sb.WriteString("    call runtime_allocate\n")
}

func (g *genState) genFree() {
	g.sb.WriteString("    call runtime_free\n")
}

// genStore, genLoad: direct heap reads/writes. Size is metadata this
// compiler never varies (always 1 cell), so it isn't threaded through to
// the generated code, matching targets/cvm's machine_store/machine_load.
func (g *genState) genStore() {
	g.sb.WriteString("    call runtime_store\n")
}

func (g *genState) genLoad() {
	g.sb.WriteString("    call runtime_load\n")
}

// genCopy, genMov: frame-relative variable reads/writes against bp.
func (g *genState) genCopy() {
	g.sb.WriteString("    call runtime_copy\n")
}

func (g *genState) genMov() {
	g.sb.WriteString("    call runtime_mov\n")
}

func (g *genState) genLoadBasePtr() {
	g.sb.WriteString("    call runtime_load_base_ptr\n")
}
