package vm

import "fmt"

// Machine is the stack-and-heap runtime record: stack, heap, allocated,
// stack size, heap size, stack pointer, base pointer, return register. It
// replaces the ARM emulator's CPU/Memory pair — there are no general-purpose
// registers in this ISA, just the operand stack, a bump-allocated heap, and
// the two pointers the calling convention needs.
type Machine struct {
	Stack []float32
	Heap  []float32

	// Allocated is the bump pointer into Heap: cells [0, Allocated) are in
	// use, [Allocated, len(Heap)) are free. Free walks it back down, so the
	// heap behaves as a second, LIFO-disciplined stack (this language
	// subset never interleaves allocations whose lifetimes overlap and
	// then frees the older one first).
	Allocated int

	StackPointer int // index of the next free stack cell
	BasePtr      int // frame base, per the calling convention

	ReturnRegister float32
}

// NewMachine allocates a Machine with the given addressable sizes.
func NewMachine(stackSize, heapSize int) *Machine {
	return &Machine{
		Stack: make([]float32, stackSize),
		Heap:  make([]float32, heapSize),
	}
}

func (m *Machine) Push(v float32) error {
	if m.StackPointer >= len(m.Stack) {
		return &Panic{Code: PanicNoFreeMemory, Message: "stack overflow"}
	}
	m.Stack[m.StackPointer] = v
	m.StackPointer++
	return nil
}

func (m *Machine) Pop() (float32, error) {
	if m.StackPointer <= 0 {
		return 0, &Panic{Code: PanicStackUnderflow, Message: "stack underflow"}
	}
	m.StackPointer--
	return m.Stack[m.StackPointer], nil
}

// binary pops the top two values (b popped first, a popped second) and
// pushes f(a, b) — the order codegen assumes throughout (see DESIGN.md):
// the operand pushed first becomes the left-hand side.
func (m *Machine) binary(f func(a, b float32) float32) error {
	b, err := m.Pop()
	if err != nil {
		return err
	}
	a, err := m.Pop()
	if err != nil {
		return err
	}
	return m.Push(f(a, b))
}

func (m *Machine) Add() error      { return m.binary(func(a, b float32) float32 { return a + b }) }
func (m *Machine) Subtract() error { return m.binary(func(a, b float32) float32 { return a - b }) }
func (m *Machine) Multiply() error { return m.binary(func(a, b float32) float32 { return a * b }) }

func (m *Machine) Divide() error {
	return m.binary(func(a, b float32) float32 {
		if b == 0 {
			return 0
		}
		return a / b
	})
}

func (m *Machine) Modulo() error {
	return m.binary(func(a, b float32) float32 {
		if b == 0 {
			return 0
		}
		return float32(int64(a) % int64(b))
	})
}

// Sign normalizes the top of the stack to -1, 0, or 1.
func (m *Machine) Sign() error {
	v, err := m.Pop()
	if err != nil {
		return err
	}
	switch {
	case v > 0:
		return m.Push(1)
	case v < 0:
		return m.Push(-1)
	default:
		return m.Push(0)
	}
}

// Allocate pops a cell count and pushes the base index of a freshly
// reserved heap region (machine_allocate, size-in-cells).
func (m *Machine) Allocate() error {
	n, err := m.Pop()
	if err != nil {
		return err
	}
	size := int(n)
	if size < 0 || m.Allocated+size > len(m.Heap) {
		return &Panic{Code: PanicNoFreeMemory, Message: fmt.Sprintf("cannot allocate %d heap cells", size)}
	}
	base := m.Allocated
	m.Allocated += size
	return m.Push(float32(base))
}

// Free pops a pointer and walks the bump allocator back down to it — only
// valid when ptr is the base of the most recent still-live allocation.
func (m *Machine) Free() error {
	v, err := m.Pop()
	if err != nil {
		return err
	}
	ptr := int(v)
	if ptr < 0 || ptr > m.Allocated {
		return fmt.Errorf("free of out-of-range heap pointer %d", ptr)
	}
	m.Allocated = ptr
	return nil
}

// Store pops an address then a value, and writes value into Heap[address].
// size is metadata describing how many of the value's bytes are
// meaningful (see DESIGN.md); this compiler always calls it with size=1.
func (m *Machine) Store(size int) error {
	addr, err := m.Pop()
	if err != nil {
		return err
	}
	v, err := m.Pop()
	if err != nil {
		return err
	}
	idx := int(addr)
	if idx < 0 || idx >= len(m.Heap) {
		return fmt.Errorf("heap store out of range: %d", idx)
	}
	m.Heap[idx] = v
	_ = size
	return nil
}

// Load pops an address and pushes Heap[address].
func (m *Machine) Load(size int) error {
	addr, err := m.Pop()
	if err != nil {
		return err
	}
	idx := int(addr)
	if idx < 0 || idx >= len(m.Heap) {
		return fmt.Errorf("heap load out of range: %d", idx)
	}
	_ = size
	return m.Push(m.Heap[idx])
}

// Copy pops a frame-relative offset and pushes Stack[BasePtr+offset]
// without disturbing it — a non-destructive variable read.
func (m *Machine) Copy() error {
	off, err := m.Pop()
	if err != nil {
		return err
	}
	idx := m.BasePtr + int(off)
	if idx < 0 || idx >= len(m.Stack) {
		return fmt.Errorf("frame read out of range: base=%d offset=%d", m.BasePtr, int(off))
	}
	return m.Push(m.Stack[idx])
}

// Mov pops a frame-relative offset (top) then a value (below), and writes
// value into Stack[BasePtr+offset] in place — a variable write.
func (m *Machine) Mov() error {
	off, err := m.Pop()
	if err != nil {
		return err
	}
	v, err := m.Pop()
	if err != nil {
		return err
	}
	idx := m.BasePtr + int(off)
	if idx < 0 || idx >= len(m.Stack) {
		return fmt.Errorf("frame write out of range: base=%d offset=%d", m.BasePtr, int(off))
	}
	m.Stack[idx] = v
	return nil
}

// LoadBasePtr pushes the current base pointer as a value.
func (m *Machine) LoadBasePtr() error { return m.Push(float32(m.BasePtr)) }

// EstablishStackFrame pushes the previous base pointer and sets base to
// the current top of stack, per the calling convention.
func (m *Machine) EstablishStackFrame() error {
	if err := m.Push(float32(m.BasePtr)); err != nil {
		return err
	}
	m.BasePtr = m.StackPointer
	return nil
}

// EndStackFrame pops locals, restores the base pointer, pops the return
// address, then pops the caller's arguments — the mirror image of Call +
// EstablishStackFrame.
func (m *Machine) EndStackFrame(argSize, localsSize int) error {
	m.StackPointer -= localsSize
	if m.StackPointer < 0 {
		return &Panic{Code: PanicStackUnderflow, Message: "EndStackFrame popped past the start of the stack"}
	}
	prevBase, err := m.Pop()
	if err != nil {
		return err
	}
	m.BasePtr = int(prevBase)
	if _, err := m.Pop(); err != nil { // return address placeholder
		return err
	}
	m.StackPointer -= argSize
	if m.StackPointer < 0 {
		return &Panic{Code: PanicStackUnderflow, Message: "EndStackFrame popped past the start of the stack"}
	}
	return nil
}

func (m *Machine) SetReturnRegister() error {
	v, err := m.Pop()
	if err != nil {
		return err
	}
	m.ReturnRegister = v
	return nil
}

func (m *Machine) AccessReturnRegister() error { return m.Push(m.ReturnRegister) }
