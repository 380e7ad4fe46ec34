package encoder

import "fmt"

// unsupportedOpError is returned for an IR opcode the assembly generator
// doesn't know how to render — should never fire for output produced by
// this repo's own codegen package, but guards against a future opcode being
// added to one serializer and not the other.
type unsupportedOpError struct {
	op string
}

func (e *unsupportedOpError) Error() string {
	return fmt.Sprintf("encoder: unsupported opcode %s", e.op)
}
