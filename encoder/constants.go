package encoder

// Default machine sizes, mirrored from the vm/codegen packages, used when
// an ir.Module doesn't specify its own.
const (
	defaultStackSize = 1024
	defaultHeapSize  = 4096

	// stringBufSize bounds the scratch buffer the string foreign functions
	// build C strings in before copying them onto the heap; since this is
	// the optional second target, a fixed bound here rather than a
	// growable one is an acceptable trade against the mandatory C target's
	// unbounded heap-backed strings. See DESIGN.md.
	stringBufSize = 4096
)
